package validate

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jms1308/kitobim/internal/domain"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.IsCategory(fl.Field().String())
	})
	_ = val.RegisterValidation("city", func(fl validator.FieldLevel) bool {
		return domain.IsCity(fl.Field().String())
	})
	_ = val.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return domain.Condition(fl.Field().String()).Valid()
	})
	// bcrypt hashes at most PasswordMaxBytes bytes, not runes.
	_ = val.RegisterValidation("bytemax", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return val
}

// ListingForm is the post / edit book form.
type ListingForm struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Author      string `json:"author" validate:"required,min=3,max=200"`
	Condition   string `json:"condition" validate:"condition"`
	Price       int64  `json:"price" validate:"gte=0,lte=100000000"`
	Category    string `json:"category" validate:"category"`
	City        string `json:"city" validate:"city"`
	Description string `json:"description" validate:"required,min=20,max=5000"`
	ImageURL    string `json:"imageUrl" validate:"required,url,max=1000"`
}

// ParsePrice reads a whole so'm amount, tolerating spaces as thousand separators.
func ParsePrice(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func (f *ListingForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.Description = strings.TrimSpace(f.Description)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
}

// Validate returns field name -> message, nil when the form is fine.
func (f ListingForm) Validate() map[string]string {
	return check(f)
}

type SignupForm struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Phone    string `json:"phone" validate:"required,min=9,max=20"`
	Password string `json:"password" validate:"required,min=6,bytemax=72"`
}

func (f *SignupForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Phone = strings.TrimSpace(f.Phone)
}

func (f SignupForm) Validate() map[string]string {
	errs := check(f)
	if _, ok := Phone(f.Phone); !ok && errs["Phone"] == "" {
		if errs == nil {
			errs = map[string]string{}
		}
		errs["Phone"] = messages["Phone.phone"]
	}
	return errs
}

var messages = map[string]string{
	"Title.required":       "Sarlavha kamida 3 belgidan iborat bo'lishi kerak.",
	"Title.min":            "Sarlavha kamida 3 belgidan iborat bo'lishi kerak.",
	"Title.max":            "Sarlavha juda uzun.",
	"Author.required":      "Muallif ismi kamida 3 belgidan iborat bo'lishi kerak.",
	"Author.min":           "Muallif ismi kamida 3 belgidan iborat bo'lishi kerak.",
	"Author.max":           "Muallif ismi juda uzun.",
	"Condition.condition":  "Holatini tanlang.",
	"Price.gte":            "Narx manfiy bo'lishi mumkin emas.",
	"Price.lte":            "Narx juda katta.",
	"Category.category":    "Kategoriyani tanlang.",
	"City.city":            "Shaharni tanlang.",
	"Description.required": "Tavsif kamida 20 belgidan iborat bo'lishi kerak.",
	"Description.min":      "Tavsif kamida 20 belgidan iborat bo'lishi kerak.",
	"Description.max":      "Tavsif juda uzun.",
	"ImageURL.required":    "To'g'ri rasm URL manzilini kiriting.",
	"ImageURL.url":         "To'g'ri rasm URL manzilini kiriting.",
	"ImageURL.max":         "Rasm URL manzili juda uzun.",
	"Username.required":    "Foydalanuvchi nomi kamida 3 belgidan iborat bo'lishi kerak.",
	"Username.min":         "Foydalanuvchi nomi kamida 3 belgidan iborat bo'lishi kerak.",
	"Username.max":         "Foydalanuvchi nomi juda uzun.",
	"Phone.required":       "Telefon raqamini to'g'ri kiriting (+998...).",
	"Phone.min":            "Telefon raqamini to'g'ri kiriting (+998...).",
	"Phone.max":            "Telefon raqamini to'g'ri kiriting (+998...).",
	"Phone.phone":          "Telefon raqami noto'g'ri formatda.",
	"Password.required":    "Parol kamida 6 belgidan iborat bo'lishi kerak.",
	"Password.min":         "Parol kamida 6 belgidan iborat bo'lishi kerak.",
	"Password.bytemax":     "Parol juda uzun.",
}

// FieldMessage is the form text for a failed field/tag pair.
func FieldMessage(field, tag string) string { return messages[field+"."+tag] }

func check(s any) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Noto'g'ri qiymat."
		}
		out[fe.Field()] = msg
	}
	return out
}

// First picks one message for a toast, in form field order.
func First(errs map[string]string) string {
	for _, f := range []string{"", "Title", "Author", "Condition", "Price", "Category", "City", "Description", "ImageURL", "Username", "Phone", "Password"} {
		if m, ok := errs[f]; ok {
			return m
		}
	}
	return ""
}
