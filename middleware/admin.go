// middleware/admin.go — admin allow-list
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Fixed operator accounts. ADMIN_EMAILS overrides at boot when set.
var defaultAdminEmails = []string{
	"owner@esportsarena.in",
	"ops@esportsarena.in",
}

// AdminEmails returns the active allow-list, lowercased.
func AdminEmails() []string {
	if env := os.Getenv("ADMIN_EMAILS"); env != "" {
		var out []string
		for _, e := range strings.Split(env, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				out = append(out, e)
			}
		}
		return out
	}
	return defaultAdminEmails
}

// AdminOnlyMiddleware requires the identity token's email to be on the
// allow-list. Must run after UserContextMiddleware.
func AdminOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals("email").(string)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing identity context",
			})
		}
		for _, admin := range AdminEmails() {
			if email == admin {
				return c.Next()
			}
		}
		log.Printf("🚫 [ADMIN] %s denied on %s", email, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
		})
	}
}
