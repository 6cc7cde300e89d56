package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestEntriesCarryRequestContext(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("userID", "user-1")
		Security(c, "access.denied", map[string]any{"book_id": "1"})
		Error(c, "boom", errors.New("db down"), nil)
		return c.SendStatus(fiber.StatusForbidden)
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/x", nil)); err != nil {
		t.Fatal(err)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(lines), buf.String())
	}
	var sec map[string]any
	if err := json.Unmarshal(lines[0], &sec); err != nil {
		t.Fatal(err)
	}
	if sec["action"] != "access.denied" || sec["kind"] != "security" || sec["level"] != "warn" {
		t.Fatalf("unexpected entry %v", sec)
	}
	if sec["user_id"] != "user-1" || sec["path"] != "/x" {
		t.Fatalf("request context missing: %v", sec)
	}
	var e map[string]any
	if err := json.Unmarshal(lines[1], &e); err != nil {
		t.Fatal(err)
	}
	if e["err"] != "db down" || e["level"] != "error" {
		t.Fatalf("unexpected error entry %v", e)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("", "error"); err != nil {
		t.Fatal(err)
	}
	SetOutput(&buf)
	defer func() {
		_ = Init("", "info")
	}()

	Info(nil, "quiet", nil)
	if buf.Len() != 0 {
		t.Fatalf("info entry written at error level: %s", buf.String())
	}
	if err := Init("", "loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
