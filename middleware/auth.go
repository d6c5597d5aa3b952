// middleware/auth.go — identity token verification
package middleware

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserContextMiddleware verifies the caller's identity token (Bearer JWT
// issued by the identity provider) and attaches uid/email to the context.
func UserContextMiddleware() fiber.Handler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("❌ JWT_SECRET is not set — cannot verify identity tokens")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing identity token",
			})
		}

		raw := strings.TrimPrefix(authHeader, "Bearer ")
		if raw == authHeader {
			// no "Bearer " prefix — try raw value
			raw = authHeader
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Printf("❌ [AUTH] invalid identity token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid identity token",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid identity token claims",
			})
		}

		uid, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "identity token missing subject",
			})
		}

		c.Locals("uid", uid)
		c.Locals("email", strings.ToLower(email))
		return c.Next()
	}
}
