package usecase

import (
	"context"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/dto"
)

// OutreachUsecase defines the interface for the email lifecycle manager
type OutreachUsecase interface {
	GenerateEmail(ctx context.Context, req dto.GenerateEmailRequest) (content, subject string, err error)
	ImproveEmail(ctx context.Context, content, instruction string, contextInfo map[string]interface{}) (string, error)
	// ImproveEmailStream delivers the revision as incremental chunks when
	// the configured provider supports it, otherwise as a single chunk.
	ImproveEmailStream(ctx context.Context, content, instruction string, contextInfo map[string]interface{}, onChunk func(chunk string) error) error
	SubmitForApproval(ctx context.Context, record *outreachdomain.EmailRecord) (string, error)
	ListPending() ([]*outreachdomain.EmailRecord, error)
	// Approve resolves a pending record exactly once. Approval dispatches
	// the email; rejection retires the record from the active queue.
	Approve(ctx context.Context, id string, approved bool) (*outreachdomain.EmailRecord, error)
	// Send dispatches an email directly (bypassing the approval queue when
	// the record was never submitted) or after approval. Idempotent: a
	// record already sent is never dispatched twice.
	Send(ctx context.Context, req dto.SendEmailRequest) (*outreachdomain.EmailRecord, error)
	// Thread returns the conversation attached to a sent email, pulling
	// newly arrived replies from the mail transport first.
	Thread(ctx context.Context, id string) ([]*outreachdomain.ThreadMessage, error)
	ListSent() ([]*outreachdomain.EmailRecord, error)
	SemanticSearch(ctx context.Context, query string, limit int) ([]*outreachdomain.EmailRecord, error)
	// InFlight reports whether a mutation for the record id is currently
	// outstanding. Used by the queue poller's reconciliation.
	InFlight(id string) bool

	SetVectorSearchService(svc VectorSearchService)
	SetNotifier(n ReviewerNotifier)
	SetEventPublisher(p EventPublisher)
}

// MailTransport sends finished outreach emails and recovers replies.
// Implementations: Gmail API binding and the HTTP relay binding.
type MailTransport interface {
	// Send delivers the message and returns a provider message id
	Send(ctx context.Context, senderName, senderEmail, to, subject, body string) (string, error)
	// FetchReplies returns messages received from the given address since
	// the given time, oldest first
	FetchReplies(ctx context.Context, from string, since time.Time) ([]*outreachdomain.ThreadMessage, error)
}

// VectorSearchService interface for outreach email embeddings
type VectorSearchService interface {
	UpsertEmailEmbedding(ctx context.Context, emailID, subject, body string) error
	SemanticSearch(ctx context.Context, query string, limit int) ([]string, []float64, error)
}

// ReviewerNotifier pushes a heads-up to reviewer devices when a record
// enters the approval queue. Best-effort; failures are logged, not returned.
type ReviewerNotifier interface {
	NotifyPending(ctx context.Context, record *outreachdomain.EmailRecord)
}

// EventPublisher broadcasts lifecycle events to connected review UIs
type EventPublisher interface {
	Broadcast(event string, payload interface{})
}
