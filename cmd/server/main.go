package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "captable/internal/adapters/web"
	"captable/internal/ai"
	"captable/internal/app"
	"captable/internal/core"
	"captable/internal/db"
	"captable/pkg/logging"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger := logging.Setup()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	userService := core.NewUserService(pool)
	companyService := core.NewCompanyService(pool)
	shareholderService := core.NewShareholderService(pool)
	shareClassService := core.NewShareClassService(pool)
	issuanceService := core.NewIssuanceService(pool)
	snapshotService := core.NewSnapshotService(shareholderService, shareClassService, issuanceService)
	raiseService := core.NewRaiseService(pool)
	adminService := core.NewAdminService(pool)

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		logger.Warn("OPENAI_API_KEY is not set; scenario assistant disabled")
	}

	var notifyService core.NotifyService
	if brevoKey := os.Getenv("BREVO_API_KEY"); brevoKey != "" {
		mailer := core.NewBrevoMailer(brevoKey,
			envOr("NOTIFY_SENDER_NAME", "Cap Table"),
			envOr("NOTIFY_SENDER_EMAIL", "noreply@example.com"))
		notifyService = core.NewNotifyService(mailer)
	} else {
		logger.Warn("BREVO_API_KEY is not set; shareholder notifications disabled")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	svc := app.NewApplicationService(
		userService,
		companyService,
		shareholderService,
		shareClassService,
		issuanceService,
		snapshotService,
		raiseService,
		adminService,
		notifyService,
		agent,
		logger,
	)

	port := envOr("SERVER_PORT", "8080")
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret, logger)

	logger.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
