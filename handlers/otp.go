package handlers

import (
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

// SetupOTPRoutes registers the public email-verification endpoints.
// These run before an account exists, so no identity token is required.
func SetupOTPRoutes(app *fiber.App, otpService *services.OTPService) {
	app.Post("/api/send-otp", otpService.SendOTP)
	app.Post("/api/verify-otp", otpService.VerifyOTP)
	app.Post("/api/check-email", otpService.CheckEmail)
}
