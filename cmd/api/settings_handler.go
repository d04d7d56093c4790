package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// drafterRuntime holds the Ollama endpoint the drafting provider reads on
// every call. Reviewers can repoint it at another host and the next
// generate/improve picks it up without a restart.
type drafterRuntime struct {
	mu      sync.RWMutex
	baseURL string
	model   string
}

var drafter drafterRuntime

// InitDrafterRuntime seeds the runtime endpoint from static config
func InitDrafterRuntime(baseURL, model string) {
	drafter.update(baseURL, model)
}

// DrafterOllamaBaseURL returns the Ollama base URL the drafter should use
func DrafterOllamaBaseURL() string {
	baseURL, _ := drafter.snapshot()
	return baseURL
}

// DrafterOllamaModel returns the Ollama model the drafter should use
func DrafterOllamaModel() string {
	_, model := drafter.snapshot()
	return model
}

func (d *drafterRuntime) snapshot() (string, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.baseURL, d.model
}

// update overwrites the endpoint; an empty model keeps the current one
func (d *drafterRuntime) update(baseURL, model string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseURL = baseURL
	if model != "" {
		d.model = model
	}
}

// GetDrafterSettings handles GET /api/settings/ollama
func GetDrafterSettings(c *gin.Context) {
	baseURL, model := drafter.snapshot()
	c.JSON(http.StatusOK, gin.H{
		"ollama_base_url": baseURL,
		"ollama_model":    model,
	})
}

// UpdateDrafterSettings handles PUT /api/settings/ollama
func UpdateDrafterSettings(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url" binding:"required"`
		OllamaModel   string `json:"ollama_model,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	drafter.update(req.OllamaBaseURL, req.OllamaModel)

	baseURL, model := drafter.snapshot()
	c.JSON(http.StatusOK, gin.H{
		"message":         "Ollama settings updated successfully",
		"ollama_base_url": baseURL,
		"ollama_model":    model,
	})
}

// TestDrafterConnection handles POST /api/settings/ollama/test. It probes
// the candidate endpoint's /api/tags listing before a reviewer commits the
// drafter to it.
func TestDrafterConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OllamaBaseURL == "" {
		req.OllamaBaseURL = DrafterOllamaBaseURL()
	}

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), "GET", req.OllamaBaseURL+"/api/tags", nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"connected": false, "error": err.Error()})
		return
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected":   false,
			"status_code": resp.StatusCode,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":       true,
		"ollama_base_url": req.OllamaBaseURL,
	})
}
