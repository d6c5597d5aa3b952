package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"esports-arena/handlers"
	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/utils"
	"esports-arena/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB, enough for match banners
	})

	// CORS configuration for the dashboard SPA
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Firebase-AppCheck",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Match{},
		&models.MatchPlayer{},
		&models.TopupRequest{},
		&models.WithdrawRequest{},
		&models.CoinLedger{},
		&models.EmailOTP{},
		&models.Feedback{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	mailer := utils.NewMailerFromEnv()
	if !mailer.Configured() {
		log.Println("⚠️  SMTP not configured, OTP delivery will fail until SMTP_HOST is set")
	}

	otpService := services.NewOTPService(db, mailer)
	profileService := services.NewProfileService(db)
	walletService := services.NewWalletService(db)
	matchService := services.NewMatchService(db)
	referralService := services.NewReferralService(db)

	// --- CONFIGURE identity provider + payout rail clients ---
	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	arenaServiceToken := os.Getenv("ARENA_SERVICE_TOKEN")
	if arenaServiceToken == "" {
		log.Fatal("ARENA_SERVICE_TOKEN environment variable not set")
	}
	payoutServiceURL := os.Getenv("PAYOUT_SERVICE_URL")
	if payoutServiceURL == "" {
		log.Fatal("PAYOUT_SERVICE_URL environment variable not set")
	}
	// --- END CONFIG ---

	attestation := services.NewAttestationClient(identityServiceURL, arenaServiceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identitySyncWorker := workers.NewIdentitySyncWorker(db, identityServiceURL, arenaServiceToken)
	identitySyncWorker.Start(ctx)

	payoutWorker := workers.NewPayoutWorker(db, payoutServiceURL, arenaServiceToken)
	payoutWorker.Start(ctx)

	otpService.StartCleanupScheduler()

	// ✅ Setup routes
	handlers.SetupOTPRoutes(app, otpService)
	handlers.SetupProfileRoutes(app, profileService)
	handlers.SetupWalletRoutes(app, walletService, referralService, attestation)
	handlers.SetupMatchRoutes(app, matchService, attestation)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Identity Sync Worker running")
	log.Println("✅ Payout Worker running")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
