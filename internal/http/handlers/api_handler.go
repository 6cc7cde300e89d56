package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/domain"
	"github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
)

// APIHandler serves /api/v1. Responses are JSON and errors are
// {"error": "<message>"}.
type APIHandler struct {
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Listings *services.ListingService
}

type credentials struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type bookPage struct {
	Items      []domain.Book `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

func apiError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// fail maps service errors onto status codes.
func (h *APIHandler) fail(c *fiber.Ctx, err error, action string) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, services.ErrBadPhone):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrBadCreds):
		log.Security(c, action+".fail", nil)
		return apiError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		return apiError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUserNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrPhoneTaken):
		return apiError(c, fiber.StatusConflict, err.Error())
	}
	log.Error(c, action+".error", err, nil)
	return apiError(c, fiber.StatusInternalServerError, msgGeneric)
}

func (h *APIHandler) Books(c *fiber.Ctx) error {
	f, page, ok := filterFromRequest(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, msgBadSearch)
	}
	view, err := h.Catalog.Browse(c.UserContext(), f, page)
	if err != nil {
		return h.fail(c, err, "api.books")
	}
	p := view.Page
	return c.JSON(bookPage{Items: p.Items, Page: p.Number, PageSize: p.Size, Total: p.Total, TotalPages: p.TotalPages})
}

func (h *APIHandler) Book(c *fiber.Ctx) error {
	b, err := h.Listings.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "api.book")
	}
	return c.JSON(b)
}

func (h *APIHandler) Signup(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return apiError(c, fiber.StatusBadRequest, "So'rov noto'g'ri.")
	}
	u, err := h.Auth.Signup(c.UserContext(), "", in.Username, in.Phone, in.Password)
	if err != nil && !errors.Is(err, services.ErrAutoLogin) {
		return h.fail(c, err, "api.signup")
	}
	log.Audit(c, "api.signup.success", map[string]any{"user_id": u.ID})
	return h.token(c, fiber.StatusCreated, u)
}

func (h *APIHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return apiError(c, fiber.StatusBadRequest, "So'rov noto'g'ri.")
	}
	u, err := h.Auth.Login(c.UserContext(), "", in.Phone, in.Password)
	if err != nil {
		return h.fail(c, err, "api.login")
	}
	log.Audit(c, "api.login.success", map[string]any{"user_id": u.ID})
	return h.token(c, fiber.StatusOK, u)
}

func (h *APIHandler) token(c *fiber.Ctx, status int, u *domain.User) error {
	tok, err := h.Auth.IssueToken(u)
	if err != nil {
		return h.fail(c, err, "api.token")
	}
	return c.Status(status).JSON(tokenResponse{Token: tok, User: u})
}

func (h *APIHandler) Me(c *fiber.Ctx) error {
	u := currentUser(c)
	p, err := h.Listings.Profile(c.UserContext(), u.ID)
	if err != nil {
		return h.fail(c, err, "api.me")
	}
	return c.JSON(p)
}
