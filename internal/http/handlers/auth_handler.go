package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
	"github.com/jms1308/kitobim/internal/validate"
)

type AuthHandler struct {
	Auth          *services.AuthService
	SecureCookies bool
	SessionTTL    time.Duration
}

// rotateSID moves the browser onto sid, bound by a successful login, and
// drops the pre-login session so it is never promoted.
func (h *AuthHandler) rotateSID(c *fiber.Ctx, sid string) {
	if old := c.Cookies(sidCookie); old != "" && old != sid {
		if err := h.Auth.Logout(c.UserContext(), old); err != nil {
			log.Error(c, "auth.session.unbind", err, nil)
		}
	}
	ck := &fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
	}
	if h.SessionTTL > 0 {
		ck.Expires = time.Now().Add(h.SessionTTL)
	}
	c.Cookie(ck)
}

// maskPhone keeps the last four digits for the logs.
func maskPhone(p string) string {
	n, _ := validate.Phone(p)
	if len(n) < 4 {
		return "***"
	}
	return "*****" + n[len(n)-4:]
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	phone := c.FormValue("phone")
	pass := c.FormValue("password")
	next := c.FormValue("next")

	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"phone": maskPhone(phone), "reason": reason})
		return renderStatus(c, fiber.StatusUnauthorized, "login", fiber.Map{
			"Err": services.ErrBadCreds.Error(), "Phone": phone, "Next": next,
		})
	}
	if _, ok := validate.Phone(phone); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}

	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, phone, pass)
	if errors.Is(err, services.ErrBadCreds) {
		return fail("bad_credentials")
	}
	if err != nil {
		log.Error(c, "auth.login.error", err, nil)
		return renderStatus(c, fiber.StatusInternalServerError, "login", fiber.Map{"Err": msgGeneric, "Phone": phone, "Next": next})
	}

	h.rotateSID(c, sid)
	c.Locals(localsUserID, u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"phone": maskPhone(phone)})
	setFlash(c, flashSuccess, "Xush kelibsiz, "+u.Username+"!")
	return c.Redirect(safeNext(next))
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	return render(c, "signup", nil)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	username := c.FormValue("username")
	phone := c.FormValue("phone")
	pass := c.FormValue("password")

	sid := uuid.NewString()
	u, err := h.Auth.Signup(c.UserContext(), sid, username, phone, pass)
	switch {
	case err == nil:
		h.rotateSID(c, sid)
		c.Locals(localsUserID, u.ID)
		log.Audit(c, "auth.signup.success", map[string]any{"phone": maskPhone(phone)})
		setFlash(c, flashSuccess, "Ro'yxatdan muvaffaqiyatli o'tdingiz!")
		return c.Redirect("/")
	case errors.Is(err, services.ErrAutoLogin):
		log.Error(c, "auth.signup.autologin_fail", err, map[string]any{"user_id": u.ID})
		setFlash(c, flashError, err.Error())
		return c.Redirect("/login")
	}

	data := fiber.Map{"Username": username, "Phone": phone}
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		data["Errors"] = ve.Fields
		data["Err"] = ve.Error()
		log.Security(c, "validation.fail", map[string]any{"form": "signup"})
		return renderStatus(c, fiber.StatusBadRequest, "signup", data)
	case errors.Is(err, services.ErrBadPhone):
		data["Err"] = err.Error()
		return renderStatus(c, fiber.StatusBadRequest, "signup", data)
	case errors.Is(err, services.ErrPhoneTaken):
		data["Err"] = err.Error()
		log.Security(c, "auth.signup.duplicate", map[string]any{"phone": maskPhone(phone)})
		return renderStatus(c, fiber.StatusConflict, "signup", data)
	}
	log.Error(c, "auth.signup.error", err, nil)
	data["Err"] = msgGeneric
	return renderStatus(c, fiber.StatusInternalServerError, "signup", data)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(sidCookie)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		log.Error(c, "auth.logout.error", err, nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	setFlash(c, flashSuccess, "Tizimdan chiqdingiz.")
	return c.Redirect("/")
}
