package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jms1308/kitobim/internal/config"
	applog "github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/web"
)

// Request limits per client IP.
const (
	GlobalLimit = 120
	LoginLimit  = 5
	APILimit    = 60
)

func isAPI(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") }

func isStatic(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/static/") }

// ErrorHandler logs the failure and shows a friendly page, or JSON on the API.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	msg := msgGeneric
	if code == fiber.StatusNotFound {
		msg = msgPageMissing
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}, web.Layout); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp assembles middleware and routes around d.
func NewApp(d *Deps, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: `{"ts":"${time}","kind":"access","req_id":"${locals:requestid}","status":${status},"method":"${method}","path":"${path}","latency":"${latency}","ip":"${ip}"}` + "\n",
		TimeFormat: time.RFC3339,
	}))
	app.Use(helmet.New(helmet.Config{
		// listing images are remote URLs
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static(), MaxAge: 3600}))
	app.Use(limiter.New(limiter.Config{
		Max:        GlobalLimit,
		Expiration: time.Minute,
		Next:       isStatic,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString(msgTooMany)
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SecureCookies,
		CookieHTTPOnly: true,
		ContextKey:     "csrf",
		Next:           isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			return notFound(c, fiber.StatusForbidden, msgCSRF)
		},
	}))
	app.Use(AttachSession(d.Auth))

	Register(app, d)

	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return apiError(c, fiber.StatusNotFound, msgPageMissing)
		}
		return notFound(c, fiber.StatusNotFound, msgPageMissing)
	})
	return app
}

// Register mounts every page and API route.
func Register(app fiber.Router, d *Deps) {
	requireUser := RequireUser(d.Auth)

	app.Get("/", d.HomeHandler.Home)
	app.Get("/catalog", d.CatalogHandler.Catalog)
	app.Get("/books/:id", d.BookHandler.Detail)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	app.Get("/post-book", requireUser, d.ListingHandler.NewForm)
	app.Post("/post-book", requireUser, d.ListingHandler.Create)
	app.Get("/edit-post/:id", requireUser, d.ListingHandler.EditForm)
	app.Post("/edit-post/:id", requireUser, d.ListingHandler.Update)
	app.Post("/books/:id/delete", requireUser, d.ListingHandler.Delete)
	app.Get("/my-posts", requireUser, d.ListingHandler.Mine)
	app.Get("/profile", requireUser, d.ListingHandler.Profile)

	loginLimiter := limiter.New(limiter.Config{
		Max:        LoginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if isAPI(c) {
				return apiError(c, fiber.StatusTooManyRequests, msgTooMany)
			}
			return renderStatus(c, fiber.StatusTooManyRequests, "login", fiber.Map{"Err": msgTooMany})
		},
	})
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", loginLimiter, d.AuthHandler.Login)
	app.Get("/signup", d.AuthHandler.SignupForm)
	app.Post("/signup", loginLimiter, d.AuthHandler.Signup)
	app.Post("/logout", d.AuthHandler.Logout)

	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        APILimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return apiError(c, fiber.StatusTooManyRequests, msgTooMany)
		},
	}))
	api.Get("/books", d.APIHandler.Books)
	api.Get("/books/:id", d.APIHandler.Book)
	api.Post("/auth/signup", loginLimiter, d.APIHandler.Signup)
	api.Post("/auth/login", loginLimiter, d.APIHandler.Login)
	api.Get("/me", RequireToken(d.Auth), d.APIHandler.Me)
}
