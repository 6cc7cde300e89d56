// Package catalog holds the listing filter, its URL query form and pagination.
// Everything here is pure; callers recompute on each request.
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jms1308/kitobim/internal/domain"
)

// URL query parameter names shared by the catalog page and the JSON API.
const (
	ParamQuery    = "q"
	ParamCategory = "category"
	ParamCity     = "city"
	ParamMinPrice = "min_price"
	ParamMaxPrice = "max_price"
	ParamPage     = "page"

	// ParamPrice is accepted by Without and clears both price bounds.
	ParamPrice = "price"

	// all is what the select boxes submit for "no filter".
	all = "all"
)

type Filter struct {
	Query    string
	Category string
	City     string
	MinPrice *int64
	MaxPrice *int64
}

// FromQuery builds a Filter from URL parameters. Bad price values are
// dropped rather than rejected and a reversed range is swapped.
func FromQuery(v url.Values) Filter {
	f := Filter{
		Query:    strings.TrimSpace(v.Get(ParamQuery)),
		Category: choice(v.Get(ParamCategory)),
		City:     choice(v.Get(ParamCity)),
		MinPrice: price(v.Get(ParamMinPrice)),
		MaxPrice: price(v.Get(ParamMaxPrice)),
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
	return f
}

func choice(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, all) {
		return ""
	}
	return s
}

func price(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// Values is the inverse of FromQuery: only active parameters are emitted.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set(ParamQuery, f.Query)
	}
	if f.Category != "" {
		v.Set(ParamCategory, f.Category)
	}
	if f.City != "" {
		v.Set(ParamCity, f.City)
	}
	if f.MinPrice != nil {
		v.Set(ParamMinPrice, strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice != nil {
		v.Set(ParamMaxPrice, strconv.FormatInt(*f.MaxPrice, 10))
	}
	return v
}

func (f Filter) Encode() string { return f.Values().Encode() }

// Without returns a copy with one parameter cleared.
func (f Filter) Without(param string) Filter {
	switch param {
	case ParamQuery:
		f.Query = ""
	case ParamCategory:
		f.Category = ""
	case ParamCity:
		f.City = ""
	case ParamMinPrice:
		f.MinPrice = nil
	case ParamMaxPrice:
		f.MaxPrice = nil
	case ParamPrice:
		f.MinPrice, f.MaxPrice = nil, nil
	}
	return f
}

// ActiveCount counts the search box, category, city and the price range
// (either bound) as one filter each.
func (f Filter) ActiveCount() int {
	n := 0
	for _, on := range []bool{
		f.Query != "",
		f.Category != "",
		f.City != "",
		f.MinPrice != nil || f.MaxPrice != nil,
	} {
		if on {
			n++
		}
	}
	return n
}

func (f Filter) Empty() bool { return f.ActiveCount() == 0 }

// Match reports whether b passes every active predicate. The text query is a
// case-insensitive substring match on title or author.
func (f Filter) Match(b domain.Book) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
			return false
		}
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.City != "" && b.City != f.City {
		return false
	}
	if f.MinPrice != nil && b.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && b.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Apply keeps the input order.
func Apply(books []domain.Book, f Filter) []domain.Book {
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}
