package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jms1308/kitobim/internal/auth"
	"github.com/jms1308/kitobim/internal/domain"
	applog "github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/services"
)

const (
	sidCookie     = "sid"
	localsSession = "session"
	localsUser    = "user"
	localsUserID  = "userID"
)

// AttachSession resolves the sid cookie once per page request and stores
// the result for templates and guards. The API authenticates by token.
func AttachSession(authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isAPI(c) && !isStatic(c) {
			resolve(c, authSvc)
		}
		return c.Next()
	}
}

func resolve(c *fiber.Ctx, authSvc *services.AuthService) services.Session {
	s := authSvc.Resolve(c.UserContext(), c.Cookies(sidCookie))
	c.Locals(localsSession, s)
	if s.Authenticated() {
		c.Locals(localsUser, s.User)
		c.Locals(localsUserID, s.User.ID)
	}
	return s
}

func sessionOf(c *fiber.Ctx) services.Session {
	s, _ := c.Locals(localsSession).(services.Session)
	return s
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localsUser).(*domain.User)
	return u
}

// RequireUser lets authenticated sessions through and sends anonymous ones to
// the login page. A session nobody resolved yet is resolved here first.
func RequireUser(authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := sessionOf(c)
		if s.Status == services.StatusPending {
			s = resolve(c, authSvc)
		}
		if s.Status == services.StatusAnonymous || !s.Authenticated() {
			setFlash(c, flashError, msgLoginFirst)
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		return c.Next()
	}
}

// RequireToken guards the JSON API with a bearer token.
func RequireToken(authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok, ok := auth.FromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apiError(c, fiber.StatusUnauthorized, "Avtorizatsiya talab qilinadi.")
		}
		u, err := authSvc.ParseToken(c.UserContext(), tok)
		if err != nil {
			applog.Security(c, "api.token.invalid", nil)
			return apiError(c, fiber.StatusUnauthorized, "Avtorizatsiya talab qilinadi.")
		}
		c.Locals(localsUser, u)
		c.Locals(localsUserID, u.ID)
		return c.Next()
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
