package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jms1308/kitobim/internal/catalog"
	"github.com/jms1308/kitobim/internal/domain"
	"github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
	"github.com/jms1308/kitobim/internal/validate"
)

type CatalogHandler struct {
	Service *services.CatalogService
}

// badge is one active filter with the link that removes it.
type badge struct {
	Label     string
	RemoveURL string
}

func queryValues(c *fiber.Ctx) url.Values {
	v, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return v
}

// filterFromRequest reads the filter from the query string. A query that
// fails validation is dropped and reported.
func filterFromRequest(c *fiber.Ctx) (catalog.Filter, int, bool) {
	v := queryValues(c)
	f := catalog.FromQuery(v)
	ok := true
	if f.Query != "" {
		q, valid := validate.Q(f.Query)
		if !valid {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": f.Query})
			q, ok = "", false
		}
		f.Query = q
	}
	return f, catalog.PageNumber(v), ok
}

func (h *CatalogHandler) Catalog(c *fiber.Ctx) error {
	f, page, ok := filterFromRequest(c)
	view, err := h.Service.Browse(c.UserContext(), f, page)
	if err != nil {
		log.Error(c, "catalog.browse.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, msgLoadFailed)
	}
	data := fiber.Map{
		"View":   view,
		"F":      view.Filter,
		"Page":   view.Page,
		"Badges": badges(view.Filter),
	}
	if !ok {
		data["Err"] = msgBadSearch
	}
	return render(c, "catalog", data)
}

func badges(f catalog.Filter) []badge {
	out := []badge{}
	link := func(param string) string { return catalog.URL("/catalog", f.Without(param), 1) }
	if f.Query != "" {
		out = append(out, badge{Label: "Qidiruv: " + f.Query, RemoveURL: link(catalog.ParamQuery)})
	}
	if f.Category != "" {
		out = append(out, badge{Label: f.Category, RemoveURL: link(catalog.ParamCategory)})
	}
	if f.City != "" {
		out = append(out, badge{Label: f.City, RemoveURL: link(catalog.ParamCity)})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		label := "Narx:"
		if f.MinPrice != nil {
			label += " " + domain.FormatPrice(*f.MinPrice) + "dan"
		}
		if f.MaxPrice != nil {
			label += " " + domain.FormatPrice(*f.MaxPrice) + "gacha"
		}
		out = append(out, badge{Label: label, RemoveURL: link(catalog.ParamPrice)})
	}
	return out
}
