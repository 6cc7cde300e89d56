package repos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		term    string
		unicode bool
		want    string
	}{
		{" O'tkan ", false, "%o'tkan%"},
		{"ШУМ", false, "%ШУМ%"},
		{"ШУМ", true, "%шум%"},
		{"Ўткан", true, "%ўткан%"},
		{"50%_off", false, `%50\%\_off%`},
		{`a\b`, true, `%a\\b%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.term, tt.unicode), "term %q unicode=%v", tt.term, tt.unicode)
	}
}
