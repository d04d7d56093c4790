package ai

import (
	"context"
)

// DraftRequest carries the candidate and job facts an outreach email is
// personalized from (shared type)
type DraftRequest struct {
	CandidateName   string
	CandidateEmail  string
	CurrentCompany  string
	CurrentPosition string
	Skills          []string
	JobTitle        string
	JobCompany      string
	JobRequirements []string
	JobBenefits     []string
}

// DraftService is the interface for AI email drafting and revision.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type DraftService interface {
	GenerateEmail(ctx context.Context, req DraftRequest) (string, error)
	ImproveEmail(ctx context.Context, content, instruction, contextInfo string) (string, error)
}

// StreamingDraftService is implemented by providers that can deliver a
// revision as incremental content chunks. onChunk is invoked once per delta;
// returning an error from it aborts the stream.
type StreamingDraftService interface {
	ImproveEmailStream(ctx context.Context, content, instruction, contextInfo string, onChunk func(chunk string) error) error
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
