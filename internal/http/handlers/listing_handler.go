package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
	"github.com/jms1308/kitobim/internal/validate"
)

type ListingHandler struct {
	Listings *services.ListingService
}

const msgBadPrice = "Narxni raqamlarda kiriting."

// parseListing reads the post/edit form. The second value holds the errors
// found before the form reaches the service.
func parseListing(c *fiber.Ctx) (validate.ListingForm, map[string]string) {
	f := validate.ListingForm{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Condition:   c.FormValue("condition"),
		Category:    c.FormValue("category"),
		City:        c.FormValue("city"),
		Description: c.FormValue("description"),
		ImageURL:    c.FormValue("imageUrl"),
	}
	price, ok := validate.ParsePrice(c.FormValue("price"))
	if !ok {
		return f, map[string]string{"Price": msgBadPrice}
	}
	f.Price = price
	return f, nil
}

func formPage(c *fiber.Ctx, status int, data fiber.Map, form validate.ListingForm, errs map[string]string) error {
	data["Form"] = form
	if errs != nil {
		data["Errors"] = errs
		data["Err"] = validate.First(errs)
	}
	return renderStatus(c, status, "post_form", data)
}

func (h *ListingHandler) NewForm(c *fiber.Ctx) error {
	return formPage(c, fiber.StatusOK, fiber.Map{"Action": "/post-book"}, validate.ListingForm{Condition: "good"}, nil)
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	data := fiber.Map{"Action": "/post-book"}
	form, errs := parseListing(c)
	if errs != nil {
		return formPage(c, fiber.StatusBadRequest, data, form, errs)
	}
	b, err := h.Listings.Create(c.UserContext(), u.ID, form)
	if err != nil {
		return h.formError(c, data, form, err, "listing.create")
	}
	log.Audit(c, "listing.create", map[string]any{"book_id": b.ID})
	setFlash(c, flashSuccess, "E'loningiz muvaffaqiyatli joylandi.")
	return c.Redirect("/books/" + b.ID)
}

func (h *ListingHandler) EditForm(c *fiber.Ctx) error {
	u := currentUser(c)
	b, err := h.Listings.Editable(c.UserContext(), c.Params("id"), u.ID)
	if err != nil {
		return h.denied(c, err, "listing.edit")
	}
	return formPage(c, fiber.StatusOK, fiber.Map{"Action": "/edit-post/" + b.ID, "Editing": true, "B": b}, services.FormFromBook(b), nil)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	data := fiber.Map{"Action": "/edit-post/" + id, "Editing": true}
	form, errs := parseListing(c)
	if errs != nil {
		return formPage(c, fiber.StatusBadRequest, data, form, errs)
	}
	b, err := h.Listings.Update(c.UserContext(), id, u.ID, form)
	if err != nil {
		return h.formError(c, data, form, err, "listing.update")
	}
	log.Audit(c, "listing.update", map[string]any{"book_id": b.ID})
	setFlash(c, flashSuccess, "Sizning e'loningiz yangilandi.")
	return c.Redirect("/books/" + b.ID)
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	u := currentUser(c)
	id := c.Params("id")
	if err := h.Listings.Delete(c.UserContext(), id, u.ID); err != nil {
		return h.denied(c, err, "listing.delete")
	}
	log.Audit(c, "listing.delete", map[string]any{"book_id": id})
	setFlash(c, flashSuccess, "E'lon o'chirildi.")
	return c.Redirect("/my-posts")
}

func (h *ListingHandler) formError(c *fiber.Ctx, data fiber.Map, form validate.ListingForm, err error, action string) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		log.Security(c, "validation.fail", map[string]any{"form": action})
		return formPage(c, fiber.StatusBadRequest, data, form, ve.Fields)
	}
	return h.denied(c, err, action)
}

// denied maps ownership and lookup failures onto the error page.
func (h *ListingHandler) denied(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrNotOwner):
		log.Security(c, action+".denied", map[string]any{"book_id": c.Params("id")})
		return notFound(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return notFound(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return notFound(c, fiber.StatusBadRequest, err.Error())
	}
	log.Error(c, action+".error", err, nil)
	return notFound(c, fiber.StatusInternalServerError, msgGeneric)
}

func (h *ListingHandler) Mine(c *fiber.Ctx) error {
	u := currentUser(c)
	books, err := h.Listings.BySeller(c.UserContext(), u.ID)
	if err != nil {
		log.Error(c, "listing.mine.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, msgLoadFailed)
	}
	return render(c, "my_posts", fiber.Map{"Books": books})
}

func (h *ListingHandler) Profile(c *fiber.Ctx) error {
	u := currentUser(c)
	p, err := h.Listings.Profile(c.UserContext(), u.ID)
	if err != nil {
		log.Error(c, "profile.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, msgLoadFailed)
	}
	return render(c, "profile", fiber.Map{"Profile": p})
}
