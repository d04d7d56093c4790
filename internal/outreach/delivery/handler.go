package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/dto"
	"outreach-backend/internal/outreach/repository"
	"outreach-backend/internal/outreach/usecase"

	"github.com/gin-gonic/gin"
)

// OutreachHandler handles email lifecycle HTTP requests
type OutreachHandler struct {
	outreachUsecase usecase.OutreachUsecase
	deviceRepo      repository.DeviceRepository
}

// NewOutreachHandler creates a new OutreachHandler
func NewOutreachHandler(outreachUsecase usecase.OutreachUsecase, deviceRepo repository.DeviceRepository) *OutreachHandler {
	return &OutreachHandler{
		outreachUsecase: outreachUsecase,
		deviceRepo:      deviceRepo,
	}
}

// statusForError maps lifecycle errors to HTTP statuses. Anything not in
// the taxonomy is a server-side failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyResolved),
		errors.Is(err, domain.ErrAlreadySent),
		errors.Is(err, domain.ErrActionInFlight),
		errors.Is(err, domain.ErrContentFrozen),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

// GenerateEmail drafts a personalized outreach email
// POST /api/email/generate
func (h *OutreachHandler) GenerateEmail(c *gin.Context) {
	var req dto.GenerateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, subject, err := h.outreachUsecase.GenerateEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateEmailResponse{
		EmailContent: content,
		Subject:      subject,
		GeneratedAt:  time.Now().Format(time.RFC3339),
	})
}

// ImproveEmail revises a draft per the reviewer's instruction
// POST /api/email/improve
func (h *OutreachHandler) ImproveEmail(c *gin.Context) {
	var req dto.ImproveEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	improved, err := h.outreachUsecase.ImproveEmail(c.Request.Context(), req.EmailContent, req.ImprovementRequest, req.Context)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImproveEmailResponse{
		ImprovedContent:    improved,
		ImprovementRequest: req.ImprovementRequest,
		ImprovedAt:         time.Now().Format(time.RFC3339),
	})
}

// SubmitPending places a drafted email into the approval queue
// POST /api/email/pending
func (h *OutreachHandler) SubmitPending(c *gin.Context) {
	var req dto.PendingEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := &domain.EmailRecord{
		ID:       req.ID,
		To:       req.To,
		Subject:  req.Subject,
		Content:  req.Content,
		Metadata: domain.JSONMap(req.Metadata),
	}

	id, err := h.outreachUsecase.SubmitForApproval(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"status": domain.StatusPendingApproval,
	})
}

// GetPending lists emails awaiting approval
// GET /api/email/pending
func (h *OutreachHandler) GetPending(c *gin.Context) {
	records, err := h.outreachUsecase.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if records == nil {
		records = []*domain.EmailRecord{}
	}

	c.JSON(http.StatusOK, dto.PendingEmailsResponse{PendingEmails: records})
}

// Approve resolves a pending email; approval dispatches it
// POST /api/email/approve
func (h *OutreachHandler) Approve(c *gin.Context) {
	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.outreachUsecase.Approve(c.Request.Context(), req.ID, *req.Approved)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// SendEmail dispatches an email directly
// POST /api/email/send
func (h *OutreachHandler) SendEmail(c *gin.Context) {
	var req dto.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.outreachUsecase.Send(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.SendEmailResponse{
		ID:     record.ID,
		Status: record.Status,
	}
	if record.SentAt != nil {
		resp.SentAt = record.SentAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// GetThread returns the conversation attached to a sent email
// GET /api/email/thread/:id
func (h *OutreachHandler) GetThread(c *gin.Context) {
	id := c.Param("id")

	messages, err := h.outreachUsecase.Thread(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if messages == nil {
		messages = []*domain.ThreadMessage{}
	}

	c.JSON(http.StatusOK, dto.ThreadResponse{
		EmailID:  id,
		Messages: messages,
	})
}

// GetSent lists dispatched emails
// GET /api/email/sent
func (h *OutreachHandler) GetSent(c *gin.Context) {
	records, err := h.outreachUsecase.ListSent()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if records == nil {
		records = []*domain.EmailRecord{}
	}

	c.JSON(http.StatusOK, dto.SentEmailsResponse{SentEmails: records})
}

// SemanticSearch finds sent emails closest to a free-text query
// POST /api/search/semantic
func (h *OutreachHandler) SemanticSearch(c *gin.Context) {
	var req dto.SemanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	}

	records, err := h.outreachUsecase.SemanticSearch(c.Request.Context(), req.Query, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if records == nil {
		records = []*domain.EmailRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": records,
	})
}

// RegisterDevice registers a reviewer device token for push notifications
// POST /api/devices
func (h *OutreachHandler) RegisterDevice(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.deviceRepo.Register(req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device registered successfully"})
}

// UnregisterDevice removes a reviewer device token
// DELETE /api/devices/:token
func (h *OutreachHandler) UnregisterDevice(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := h.deviceRepo.Unregister(token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device removed successfully"})
}
