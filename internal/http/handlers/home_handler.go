package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jms1308/kitobim/internal/domain"
	"github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
	"github.com/jms1308/kitobim/internal/validate"
)

type HomeHandler struct {
	Listings *services.ListingService
}

// Home shows the newest listings, or search results when q is set.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	raw := c.Query("q")
	if strings.TrimSpace(raw) == "" {
		books, err := h.Listings.Recent(c.UserContext(), services.RecentLimit)
		if err != nil {
			log.Error(c, "home.recent.error", err, nil)
			return notFound(c, fiber.StatusInternalServerError, msgLoadFailed)
		}
		return render(c, "home", fiber.Map{"Books": books})
	}

	q, ok := validate.Q(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
		return renderStatus(c, fiber.StatusBadRequest, "home", fiber.Map{
			"Books": []domain.Book{}, "Searching": true, "Err": msgBadSearch,
		})
	}
	books, err := h.Listings.Search(c.UserContext(), q)
	if err != nil {
		log.Error(c, "home.search.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, msgLoadFailed)
	}
	return render(c, "home", fiber.Map{"Q": q, "Books": books, "Searching": true})
}
