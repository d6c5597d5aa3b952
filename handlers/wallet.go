package handlers

import (
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService, referralService *services.ReferralService, attestation *services.AttestationClient) {
	// 🔐 Authenticated routes
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Get("/wallet", walletService.GetWallet)
	secured.Post("/topup", walletService.CreateTopup)
	secured.Post("/withdraw", walletService.CreateWithdraw)
	secured.Get("/requests", walletService.ListMyRequests)

	// Referral payout mutates two balances — app-check gated.
	secured.Post("/redeemReferralCode",
		middleware.AppCheckMiddleware(attestation),
		referralService.RedeemCode)

	// 🔒 Admin console: request queues
	admin := secured.Group("/admin", middleware.AdminOnlyMiddleware())
	admin.Get("/topups", walletService.ListTopups)
	admin.Post("/topups/:id/approve", walletService.ApproveTopup)
	admin.Post("/topups/:id/reject", walletService.RejectTopup)
	admin.Get("/withdrawals", walletService.ListWithdrawals)
	admin.Post("/withdrawals/:id/approve", walletService.ApproveWithdraw)
	admin.Post("/withdrawals/:id/reject", walletService.RejectWithdraw)
}
