package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"outreach-backend/internal/outreach/dto"

	"github.com/gin-gonic/gin"
)

// streamEvent is one line of the improve event stream. Exactly one of the
// optional fields is set, depending on Type.
type streamEvent struct {
	Type    string `json:"type"` // status | chunk | complete | error
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeStreamEvent(c *gin.Context, event streamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

// ImproveEmailStream is the streaming variant of ImproveEmail: the revision
// arrives as incremental chunk events instead of a single response body.
// POST /api/email/improve/stream
func (h *OutreachHandler) ImproveEmailStream(c *gin.Context) {
	var req dto.ImproveEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	writeStreamEvent(c, streamEvent{Type: "status", Message: "Improving email..."})

	var full strings.Builder
	err := h.outreachUsecase.ImproveEmailStream(c.Request.Context(), req.EmailContent, req.ImprovementRequest, req.Context, func(chunk string) error {
		full.WriteString(chunk)
		writeStreamEvent(c, streamEvent{Type: "chunk", Content: chunk})
		return nil
	})
	if err != nil {
		writeStreamEvent(c, streamEvent{Type: "error", Error: err.Error()})
		return
	}

	// The complete event repeats the assembled content so consumers that
	// missed a chunk can still finalize.
	writeStreamEvent(c, streamEvent{Type: "complete", Content: full.String()})
}
