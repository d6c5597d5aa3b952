package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// newAdminApp stubs the identity context so the allow-list check can be
// exercised without a real token.
func newAdminApp(email string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if email != "" {
			c.Locals("email", email)
		}
		return c.Next()
	})
	app.Get("/admin-only", AdminOnlyMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestAdminOnlyMissingContext(t *testing.T) {
	app := newAdminApp("")
	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAdminOnlyDeniesNonAdmin(t *testing.T) {
	app := newAdminApp("player@example.com")
	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestAdminOnlyAllowsDefaultAdmin(t *testing.T) {
	app := newAdminApp("owner@esportsarena.in")
	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAdminEmailsEnvOverride(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Boss@Example.com , second@example.com ,")

	emails := AdminEmails()
	if len(emails) != 2 {
		t.Fatalf("got %d emails, want 2: %v", len(emails), emails)
	}
	if emails[0] != "boss@example.com" || emails[1] != "second@example.com" {
		t.Errorf("emails = %v, want lowercased trimmed pair", emails)
	}

	app := newAdminApp("boss@example.com")
	resp, err := app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("override admin status = %d, want 200", resp.StatusCode)
	}

	// The default list is replaced, not extended
	app = newAdminApp("owner@esportsarena.in")
	resp, err = app.Test(httptest.NewRequest("GET", "/admin-only", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("default admin under override status = %d, want 403", resp.StatusCode)
	}
}
