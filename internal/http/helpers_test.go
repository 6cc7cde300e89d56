package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"github.com/jms1308/kitobim/internal/config"
	"github.com/jms1308/kitobim/internal/http/handlers"
	"github.com/jms1308/kitobim/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		DBDriver:   config.DriverSQLite,
		DBDSN:      ":memory:",
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		SessionTTL: time.Hour,
	}
}

// newTestApp wires the real app over a seeded in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps, *sqlx.DB) {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repos.SeedIfEmpty(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	d := handlers.NewDeps(db, cfg)
	return handlers.NewApp(d, cfg), d, db
}

// client is a tiny cookie jar around app.Test.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	c.t.Helper()
	return c.do(httptest.NewRequest("GET", path, nil))
}

// post submits a form with the csrf token, fetching one first when needed.
func (c *client) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	if c.cookies["csrf_"] == nil {
		c.get("/login")
	}
	ck := c.cookies["csrf_"]
	if ck == nil {
		c.t.Fatal("csrf token missing")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", ck.Value)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(phone, password string) *http.Response {
	c.t.Helper()
	return c.post("/login", url.Values{"phone": {phone}, "password": {password}})
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected %d, got %d", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode)
	}
}
