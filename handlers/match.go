package handlers

import (
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, attestation *services.AttestationClient) {
	// 🔐 Authenticated routes
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Get("/matches", matchService.ListMatches)
	secured.Get("/matches/:id", matchService.GetMatch)
	secured.Post("/matches/:id/join", matchService.JoinMatch)

	// Settlement mutates the winner's balance — app-check + admin gated.
	secured.Post("/settleMatch",
		middleware.AppCheckMiddleware(attestation),
		middleware.AdminOnlyMiddleware(),
		matchService.SettleMatch)

	// 🔒 Admin console: match CRUD
	admin := secured.Group("/admin", middleware.AdminOnlyMiddleware())
	admin.Get("/matches", matchService.ListMatches)
	admin.Post("/matches", matchService.CreateMatch)
	admin.Put("/matches/:id", matchService.UpdateMatch)
	admin.Delete("/matches/:id", matchService.DeleteMatch)
}
