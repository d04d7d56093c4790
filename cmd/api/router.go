package api

import (
	"net/http"

	"outreach-backend/internal/ingest"
	outreachDelivery "outreach-backend/internal/outreach/delivery"
	"outreach-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, outreachHandler *outreachDelivery.OutreachHandler, ingestHandler *ingest.Handler, sseManager *sse.Manager) {
	// Root health endpoints
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Recruiter Agent API is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Résumé upload and analysis (root-level, matches the extractor contract)
	r.POST("/upload/", ingestHandler.Upload)
	r.POST("/analyse", ingestHandler.Analyse)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint for the review surface
		api.GET("/events", func(c *gin.Context) {
			sseManager.ServeHTTP(c)
		})

		// Email lifecycle routes
		email := api.Group("/email")
		{
			email.POST("/generate", outreachHandler.GenerateEmail)
			email.POST("/improve", outreachHandler.ImproveEmail)
			email.POST("/improve/stream", outreachHandler.ImproveEmailStream)
			email.POST("/pending", outreachHandler.SubmitPending)
			email.GET("/pending", outreachHandler.GetPending)
			email.POST("/approve", outreachHandler.Approve)
			email.POST("/send", outreachHandler.SendEmail)
			email.GET("/thread/:id", outreachHandler.GetThread)
			email.GET("/sent", outreachHandler.GetSent)
		}

		// Semantic search over sent emails
		search := api.Group("/search")
		{
			search.POST("/semantic", outreachHandler.SemanticSearch)
		}

		// Reviewer device registration for push notifications
		devices := api.Group("/devices")
		{
			devices.POST("", outreachHandler.RegisterDevice)
			devices.DELETE("/:token", outreachHandler.UnregisterDevice)
		}

		// Résumé hand-off to the extractor pipeline
		api.POST("/process-resume", ingestHandler.ProcessResume)

		// Runtime drafter endpoint configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ollama", GetDrafterSettings)
			settings.PUT("/ollama", UpdateDrafterSettings)
			settings.POST("/ollama/test", TestDrafterConnection)
		}
	}
}
