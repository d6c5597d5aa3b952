// middleware/appcheck.go — app-integrity attestation
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// AttestationVerifier checks an app-integrity token against the identity
// provider's attestation service.
type AttestationVerifier interface {
	VerifyAppToken(token string) error
}

// AppCheckMiddleware rejects requests that do not carry a valid
// app-integrity token. Coin-mutating endpoints sit behind this so the
// balance can never be touched by an untrusted client build.
func AppCheckMiddleware(verifier AttestationVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Firebase-AppCheck")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing app integrity token",
			})
		}

		if err := verifier.VerifyAppToken(token); err != nil {
			log.Printf("❌ [APPCHECK] rejected request to %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid app integrity token",
			})
		}

		return c.Next()
	}
}
