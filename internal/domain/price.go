package domain

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatPrice renders whole so'm with space-grouped thousands: "50 000 so'm".
func FormatPrice(n int64) string {
	return strings.ReplaceAll(humanize.Comma(n), ",", " ") + " so'm"
}
