package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jms1308/kitobim/web"
)

const (
	flashCookie = "flash"

	flashSuccess = "success"
	flashError   = "error"
)

type flash struct {
	Kind    string
	Message string
}

// setFlash leaves a one-shot toast for the next rendered page.
func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

func popFlash(c *fiber.Ctx) *flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{Name: flashCookie, Value: "", Path: "/", Expires: time.Now().Add(-time.Hour)})
	s, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(s, "|")
	if !ok || msg == "" {
		return nil
	}
	return &flash{Kind: kind, Message: msg}
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
	}
	// the csrf middleware only fills Locals on requests it handled
	tok, _ := c.Locals("csrf").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	if _, ok := data["Flash"]; !ok {
		if f := popFlash(c); f != nil {
			data["Flash"] = f
		}
	}
	data["Path"] = c.Path()
	return c.Render(tmpl, data, web.Layout)
}

func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

// notFound renders the friendly error page with msg.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return renderStatus(c, status, "notfound", fiber.Map{"Message": msg})
}

// Friendly messages shown instead of internal errors.
const (
	msgGeneric     = "Nimadir xato ketdi. Qaytadan urinib ko'ring."
	msgLoadFailed  = "Ma'lumotlarni yuklab bo'lmadi. Qaytadan urinib ko'ring."
	msgPageMissing = "Sahifa topilmadi."
	msgCSRF        = "Xavfsizlik tekshiruvi muvaffaqiyatsiz. Sahifani yangilab, qaytadan urinib ko'ring."
	msgTooMany     = "Juda ko'p urinish. Birozdan so'ng qaytadan urinib ko'ring."
	msgLoginFirst  = "Iltimos, avval tizimga kiring."
	msgBadSearch   = "Qidiruv uchun to'g'ri so'z kiriting."
)
