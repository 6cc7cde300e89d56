package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jms1308/kitobim/internal/domain"
)

const DefaultPageSize = 12

type Page struct {
	Items      []domain.Book
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// Paginate slices books into pages of size (DefaultPageSize when <= 0) and
// clamps number into [1, TotalPages]. An empty list still has one page.
func Paginate(books []domain.Book, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(books)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return Page{
		Items:      books[start:end],
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: pages,
	}
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

// Numbers lists every page number, for the pager links.
func (p Page) Numbers() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// PageNumber reads the page parameter; anything unusable means page 1.
func PageNumber(v url.Values) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamPage)))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// URL renders path plus the filter's query string, adding page when > 1.
func URL(path string, f Filter, page int) string {
	v := f.Values()
	if page > 1 {
		v.Set(ParamPage, strconv.Itoa(page))
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
