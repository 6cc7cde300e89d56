package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'ʻʼ‘’.,\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reDigit = regexp.MustCompile(`[^0-9]`)
)

// PhoneDigits is how many trailing digits identify a phone number.
const PhoneDigits = 9

// PasswordMaxBytes is bcrypt's input limit.
const PasswordMaxBytes = 72

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > 50 {
		s = string([]rune(s)[:50])
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (book/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Phone keeps the last nine digits so "+998 90 123-45-67" and "901234567"
// name the same account.
func Phone(s string) (string, bool) {
	d := reDigit.ReplaceAllString(s, "")
	if len(d) > PhoneDigits {
		d = d[len(d)-PhoneDigits:]
	}
	return d, len(d) == PhoneDigits
}

// Password enforces at least six characters and at most PasswordMaxBytes bytes.
func Password(s string) bool {
	return utf8.RuneCountInString(s) >= 6 && len(s) <= PasswordMaxBytes
}
