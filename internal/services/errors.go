package services

import (
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/validate"
)

// Error is a failure whose text can be shown to the user as is.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrPhoneTaken   Error = "Bu telefon raqami allaqachon ro'yxatdan o'tgan."
	ErrBadCreds     Error = "Telefon raqami yoki parol xato."
	ErrBadPhone     Error = "Telefon raqami noto'g'ri formatda."
	ErrAutoLogin    Error = "Ro'yxatdan o'tdingiz, ammo avtomatik kirishda xatolik."
	ErrNotFound     Error = "Kitob topilmadi."
	ErrNotOwner     Error = "Siz faqat o'zingizning e'lonlaringizni tahrirlay olasiz."
	ErrUserNotFound Error = "Foydalanuvchi topilmadi."
)

// ValidationError carries per-field form messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return validate.First(e.Fields) }

func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Message returns text safe to show for err, or fallback when err is internal.
func Message(err error, fallback string) string {
	var ue Error
	if errors.As(err, &ue) {
		return ue.Error()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return fallback
}
