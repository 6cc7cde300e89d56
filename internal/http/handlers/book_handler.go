package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
)

type BookHandler struct {
	Listings *services.ListingService
}

func (h *BookHandler) Detail(c *fiber.Ctx) error {
	b, err := h.Listings.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, fiber.StatusNotFound, services.ErrNotFound.Error())
	}
	if err != nil {
		log.Error(c, "book.detail.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, msgLoadFailed)
	}
	owner := false
	if u := currentUser(c); u != nil {
		owner = u.ID == b.SellerID
	}
	return render(c, "book", fiber.Map{"B": b, "IsOwner": owner})
}
