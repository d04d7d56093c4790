package api

import (
	"log"

	"outreach-backend/internal/ingest"
	"outreach-backend/internal/notify"
	outreachDelivery "outreach-backend/internal/outreach/delivery"
	"outreach-backend/internal/outreach/domain"
	outreachRepo "outreach-backend/internal/outreach/repository"
	outreachUsecasePkg "outreach-backend/internal/outreach/usecase"
	"outreach-backend/pkg/chroma"
	"outreach-backend/pkg/config"
	"outreach-backend/pkg/fcm"
	"outreach-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	outreachUsecase outreachUsecasePkg.OutreachUsecase
	outreachHandler *outreachDelivery.OutreachHandler
	ingestHandler   *ingest.Handler
	sseManager      *sse.Manager
	poller          *outreachUsecasePkg.QueuePoller
	config          *config.Config
}

func NewHandler(outreachUc outreachUsecasePkg.OutreachUsecase, ingestRepo outreachRepo.IngestRepository, deviceRepo outreachRepo.DeviceRepository, sseManager *sse.Manager, cfg *config.Config) *Handler {
	// Initialize Chroma client for semantic search over sent emails
	if cfg.ChromaAPIKey != "" {
		chromaClient, err := chroma.NewChromaClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Chroma client: %v. Semantic search will not be available.", err)
		} else {
			outreachUc.SetVectorSearchService(chromaClient)
			log.Println("Chroma client initialized successfully")
		}
	} else {
		log.Println("Warning: CHROMA_API_KEY not set. Semantic search will not be available.")
	}

	// Initialize FCM reviewer notifications (optional)
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("Warning: Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			outreachUc.SetNotifier(notify.NewService(fcmClient, deviceRepo))
			log.Println("Reviewer push notifications enabled")
		}
	}

	outreachUc.SetEventPublisher(sseManager)

	// The poller keeps the review surface's pending view current and
	// pushes each reconciled list out over SSE
	poller := outreachUsecasePkg.NewQueuePoller(
		outreachUc.ListPending,
		outreachUc.InFlight,
		cfg.PollInterval,
		func(records []*domain.EmailRecord) {
			sseManager.Broadcast("pending_update", gin.H{
				"pending_emails": records,
				"count":          len(records),
			})
		},
	)
	poller.Start()
	log.Println("Approval queue poller started")

	// Résumé/job ingestion boundary
	extractor := ingest.NewExtractorClient(cfg.ExtractorBaseURL)
	ingestService := ingest.NewService(ingestRepo, extractor, cfg.UploadDir)
	ingestHandler := ingest.NewHandler(ingestService)

	outreachHandler := outreachDelivery.NewOutreachHandler(outreachUc, deviceRepo)

	return &Handler{
		outreachUsecase: outreachUc,
		outreachHandler: outreachHandler,
		ingestHandler:   ingestHandler,
		sseManager:      sseManager,
		poller:          poller,
		config:          cfg,
	}
}

// Stop shuts down the background poller. Safe to call more than once.
func (h *Handler) Stop() {
	h.poller.Stop()
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.outreachHandler, h.ingestHandler, h.sseManager)

	return r.Run(addr)
}
