package ai

import (
	"context"
	"log"
	"net"
	"strings"
)

// FallbackService implements smart AI provider routing with fallback
// - Drafting and revision: Gemini first (better quality), fallback to Ollama
// - Streaming revision: Ollama (native streaming), fallback to a single
//   Gemini chunk when Ollama is unreachable
type FallbackService struct {
	gemini DraftService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini DraftService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors
	if _, ok := err.(net.Error); ok {
		return true
	}

	// Check for common connection error messages
	errStr := err.Error()
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// shouldFallback reports whether the primary provider's error warrants
// retrying on the secondary
func shouldFallback(err error) bool {
	return isConnectionError(err) || isQuotaError(err)
}

// GenerateEmail implements DraftService
func (f *FallbackService) GenerateEmail(ctx context.Context, req DraftRequest) (string, error) {
	content, err := f.gemini.GenerateEmail(ctx, req)
	if err == nil {
		return content, nil
	}
	if !shouldFallback(err) {
		return "", err
	}

	log.Printf("[AIFallback] Gemini generate failed (%v), trying Ollama", err)
	return f.ollama.GenerateEmail(ctx, req)
}

// ImproveEmail implements DraftService
func (f *FallbackService) ImproveEmail(ctx context.Context, content, instruction, contextInfo string) (string, error) {
	improved, err := f.gemini.ImproveEmail(ctx, content, instruction, contextInfo)
	if err == nil {
		return improved, nil
	}
	if !shouldFallback(err) {
		return "", err
	}

	log.Printf("[AIFallback] Gemini improve failed (%v), trying Ollama", err)
	return f.ollama.ImproveEmail(ctx, content, instruction, contextInfo)
}

// ImproveEmailStream implements StreamingDraftService
func (f *FallbackService) ImproveEmailStream(ctx context.Context, content, instruction, contextInfo string, onChunk func(chunk string) error) error {
	delivered := false
	err := f.ollama.ImproveEmailStream(ctx, content, instruction, contextInfo, func(chunk string) error {
		delivered = true
		return onChunk(chunk)
	})
	if err == nil {
		return nil
	}
	// Once any chunk reached the consumer, replaying the full revision from
	// the other provider would append it after the partial output. Surface
	// the error instead so the client restarts the call.
	if delivered || !isConnectionError(err) {
		return err
	}

	log.Printf("[AIFallback] Ollama stream failed (%v), trying Gemini", err)
	improved, err := f.gemini.ImproveEmail(ctx, content, instruction, contextInfo)
	if err != nil {
		return err
	}
	return onChunk(improved)
}
