package handlers

import (
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	// 🔐 Authenticated routes
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Get("/profile", profileService.GetProfile)
	secured.Put("/profile", profileService.UpdateProfile)
	secured.Post("/feedback", profileService.SubmitFeedback)

	// 🔒 Admin console
	admin := secured.Group("/admin", middleware.AdminOnlyMiddleware())
	admin.Get("/feedback", profileService.ListFeedback)
}
