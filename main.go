package main

import (
	"log"

	api "outreach-backend/cmd/api"
	outreachdomain "outreach-backend/internal/outreach/domain"
	outreachRepo "outreach-backend/internal/outreach/repository"
	outreachUsecase "outreach-backend/internal/outreach/usecase"
	"outreach-backend/pkg/ai"
	"outreach-backend/pkg/config"
	"outreach-backend/pkg/database"
	"outreach-backend/pkg/gmail"
	"outreach-backend/pkg/imapclient"
	"outreach-backend/pkg/relay"
	"outreach-backend/pkg/sse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&outreachdomain.EmailRecord{},
		&outreachdomain.ThreadMessage{},
		&outreachdomain.Job{},
		&outreachdomain.Applicant{},
		&outreachdomain.ReviewerDevice{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	emailRecordRepo := outreachRepo.NewEmailRecordRepository(db)
	threadRepo := outreachRepo.NewThreadRepository(db)
	ingestRepo := outreachRepo.NewIngestRepository(db)
	deviceRepo := outreachRepo.NewDeviceRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize draft generation. The runtime drafter settings let the
	// settings API repoint Ollama without a restart.
	api.InitDrafterRuntime(cfg.OllamaBaseURL, cfg.OllamaModel)
	drafter, err := ai.NewDraftServiceWithDynamicConfig(ai.DynamicConfig{
		Provider:         ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GetOllamaBaseURL: api.DrafterOllamaBaseURL,
		GetOllamaModel:   api.DrafterOllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize draft service:", err)
	}
	log.Printf("Draft service initialized with provider: %s", cfg.AIProvider)

	// Initialize mail transport
	var transport outreachUsecase.MailTransport
	switch cfg.MailTransport {
	case "gmail":
		transport = gmail.NewService(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailAccessToken, cfg.GmailRefreshToken)
		log.Println("Mail transport: gmail")
	default:
		var replies relay.ReplyFetcher
		if cfg.IMAPAddr != "" {
			replies = imapclient.NewService(cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword)
		}
		transport = relay.NewService(cfg.RelayBaseURL, replies)
		log.Println("Mail transport: relay")
	}

	// Initialize use case (dependency injection)
	outreachUsecaseInstance := outreachUsecase.NewOutreachUsecase(emailRecordRepo, threadRepo, drafter, transport, cfg)

	// Initialize HTTP handler
	handler := api.NewHandler(outreachUsecaseInstance, ingestRepo, deviceRepo, sseManager, cfg)
	defer handler.Stop()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
