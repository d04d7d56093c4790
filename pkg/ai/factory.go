package ai

import (
	"context"
	"fmt"

	"outreach-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// geminiDraftService adapts the plain Gemini completion client to
// DraftService by building the shared prompts here.
type geminiDraftService struct {
	svc *gemini.GeminiService
}

func newGeminiDraftService(apiKey string) *geminiDraftService {
	return &geminiDraftService{svc: gemini.NewGeminiService(apiKey)}
}

func (g *geminiDraftService) GenerateEmail(ctx context.Context, req DraftRequest) (string, error) {
	return g.svc.Complete(ctx, generatePrompt(req))
}

func (g *geminiDraftService) ImproveEmail(ctx context.Context, content, instruction, contextInfo string) (string, error) {
	return g.svc.Complete(ctx, improvePrompt(content, instruction, contextInfo))
}

// DynamicConfig is like Config but reads the Ollama endpoint through
// getters, so runtime settings updates take effect without a restart.
type DynamicConfig struct {
	Provider         ProviderType
	GeminiAPIKey     string
	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewDraftServiceWithDynamicConfig creates a DraftService whose Ollama
// endpoint follows the runtime settings API.
func NewDraftServiceWithDynamicConfig(cfg DynamicConfig) (DraftService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return newGeminiDraftService(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel), nil

	default:
		ollama := NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)
		if cfg.GeminiAPIKey != "" {
			return NewFallbackService(newGeminiDraftService(cfg.GeminiAPIKey), ollama), nil
		}
		return ollama, nil
	}
}

// NewDraftService creates a DraftService based on the config.
// This is the factory function - switch AI provider by changing config.Provider
func NewDraftService(cfg Config) (DraftService, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return newGeminiDraftService(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// Auto: route between providers with fallback when both are
		// available, otherwise use whichever is configured
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.GeminiAPIKey != "" {
			return NewFallbackService(newGeminiDraftService(cfg.GeminiAPIKey), ollama), nil
		}
		return ollama, nil
	}
}
