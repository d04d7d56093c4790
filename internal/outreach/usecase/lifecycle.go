package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/dto"
	"outreach-backend/internal/outreach/repository"
	"outreach-backend/pkg/ai"
	"outreach-backend/pkg/config"
)

// outreachUsecase implements OutreachUsecase. It owns the email lifecycle:
// records move forward through draft -> pending_approval -> approved/rejected
// -> sent, every external call is bounded by the configured timeout, and a
// failed call never leaves a record in a half-transitioned state.
type outreachUsecase struct {
	emailRepo  repository.EmailRecordRepository
	threadRepo repository.ThreadRepository
	drafter    ai.DraftService
	transport  MailTransport
	cfg        *config.Config

	vectorSearch VectorSearchService
	notifier     ReviewerNotifier
	events       EventPublisher

	// inflight serializes mutations per record id; a second action on the
	// same id while one is outstanding is rejected locally
	mu       sync.Mutex
	inflight map[string]bool
}

// NewOutreachUsecase creates a new instance of outreachUsecase
func NewOutreachUsecase(
	emailRepo repository.EmailRecordRepository,
	threadRepo repository.ThreadRepository,
	drafter ai.DraftService,
	transport MailTransport,
	cfg *config.Config,
) OutreachUsecase {
	return &outreachUsecase{
		emailRepo:  emailRepo,
		threadRepo: threadRepo,
		drafter:    drafter,
		transport:  transport,
		cfg:        cfg,
		inflight:   make(map[string]bool),
	}
}

func (u *outreachUsecase) SetVectorSearchService(svc VectorSearchService) {
	u.vectorSearch = svc
}

func (u *outreachUsecase) SetNotifier(n ReviewerNotifier) {
	u.notifier = n
}

func (u *outreachUsecase) SetEventPublisher(p EventPublisher) {
	u.events = p
}

// beginAction claims the per-record mutation slot
func (u *outreachUsecase) beginAction(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inflight[id] {
		return outreachdomain.ErrActionInFlight
	}
	u.inflight[id] = true
	return nil
}

// endAction releases the per-record mutation slot
func (u *outreachUsecase) endAction(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inflight, id)
}

// InFlight reports whether a mutation for the record id is outstanding
func (u *outreachUsecase) InFlight(id string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inflight[id]
}

// callCtx bounds an external call with the configured request timeout
func (u *outreachUsecase) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, u.cfg.RequestTimeout)
}

func (u *outreachUsecase) broadcast(event string, payload interface{}) {
	if u.events != nil {
		u.events.Broadcast(event, payload)
	}
}

// GenerateEmail drafts a personalized outreach email from candidate and job
// facts. The subject falls back to a templated line when the drafter returns
// body text only.
func (u *outreachUsecase) GenerateEmail(ctx context.Context, req dto.GenerateEmailRequest) (string, string, error) {
	if strings.TrimSpace(req.CandidateName) == "" {
		return "", "", fmt.Errorf("%w: candidate name is required", outreachdomain.ErrValidation)
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		return "", "", fmt.Errorf("%w: job title is required", outreachdomain.ErrValidation)
	}

	callCtx, cancel := u.callCtx(ctx)
	defer cancel()

	content, err := u.drafter.GenerateEmail(callCtx, ai.DraftRequest{
		CandidateName:   req.CandidateName,
		CandidateEmail:  req.CandidateEmail,
		CurrentCompany:  req.CurrentCompany,
		CurrentPosition: req.CurrentPosition,
		Skills:          req.Skills,
		JobTitle:        req.JobTitle,
		JobCompany:      req.JobCompany,
		JobRequirements: req.JobRequirements,
		JobBenefits:     req.JobBenefits,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate email: %w", err)
	}

	subject := fmt.Sprintf("Exciting %s Opportunity at %s - %s", req.JobTitle, req.JobCompany, req.CandidateName)
	return content, subject, nil
}

// formatContext flattens the opaque candidate/job context payload into the
// prompt context string
func formatContext(contextInfo map[string]interface{}) string {
	if len(contextInfo) == 0 {
		return ""
	}

	var b strings.Builder
	if candidate, ok := contextInfo["candidate_info"].(map[string]interface{}); ok {
		name, _ := candidate["name"].(string)
		company, _ := candidate["currentCompany"].(string)
		if name == "" {
			name = "Unknown"
		}
		if company == "" {
			company = "Unknown Company"
		}
		fmt.Fprintf(&b, "Candidate: %s at %s\n", name, company)

		if rawSkills, ok := candidate["skills"].([]interface{}); ok {
			skills := make([]string, 0, len(rawSkills))
			for _, s := range rawSkills {
				if str, ok := s.(string); ok {
					skills = append(skills, str)
				}
			}
			fmt.Fprintf(&b, "Skills: %s\n", strings.Join(skills, ", "))
		}
	}
	if job, ok := contextInfo["job_info"].(map[string]interface{}); ok {
		title, _ := job["title"].(string)
		company, _ := job["company"].(string)
		if title == "" {
			title = "Unknown"
		}
		if company == "" {
			company = "Unknown Company"
		}
		fmt.Fprintf(&b, "Job: %s at %s\n", title, company)
	}
	return b.String()
}

// ImproveEmail revises existing content according to an instruction. Status
// of any owning record is untouched; the caller decides what to do with the
// revised text.
func (u *outreachUsecase) ImproveEmail(ctx context.Context, content, instruction string, contextInfo map[string]interface{}) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: email content cannot be empty", outreachdomain.ErrValidation)
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("%w: improvement request cannot be empty", outreachdomain.ErrValidation)
	}

	callCtx, cancel := u.callCtx(ctx)
	defer cancel()

	improved, err := u.drafter.ImproveEmail(callCtx, content, instruction, formatContext(contextInfo))
	if err != nil {
		return "", fmt.Errorf("failed to improve email: %w", err)
	}
	return improved, nil
}

// ImproveEmailStream is the streaming variant of ImproveEmail. Providers
// without native streaming deliver the whole revision as one chunk.
func (u *outreachUsecase) ImproveEmailStream(ctx context.Context, content, instruction string, contextInfo map[string]interface{}, onChunk func(chunk string) error) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: email content cannot be empty", outreachdomain.ErrValidation)
	}
	if strings.TrimSpace(instruction) == "" {
		return fmt.Errorf("%w: improvement request cannot be empty", outreachdomain.ErrValidation)
	}

	callCtx, cancel := u.callCtx(ctx)
	defer cancel()

	contextStr := formatContext(contextInfo)

	if streamer, ok := u.drafter.(ai.StreamingDraftService); ok {
		return streamer.ImproveEmailStream(callCtx, content, instruction, contextStr, onChunk)
	}

	improved, err := u.drafter.ImproveEmail(callCtx, content, instruction, contextStr)
	if err != nil {
		return err
	}
	return onChunk(improved)
}

// SubmitForApproval places a drafted email into the approval queue
func (u *outreachUsecase) SubmitForApproval(ctx context.Context, record *outreachdomain.EmailRecord) (string, error) {
	if strings.TrimSpace(record.To) == "" {
		return "", fmt.Errorf("%w: recipient address is required", outreachdomain.ErrValidation)
	}
	if strings.TrimSpace(record.Content) == "" {
		return "", fmt.Errorf("%w: email content is required", outreachdomain.ErrValidation)
	}

	if record.ID != "" {
		existing, err := u.emailRepo.GetByID(record.ID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			if !existing.Editable() {
				return "", fmt.Errorf("%w: email is %s", outreachdomain.ErrContentFrozen, existing.Status)
			}
			if !existing.CanTransition(outreachdomain.StatusPendingApproval) {
				return "", fmt.Errorf("%w: cannot submit a %s email for approval", outreachdomain.ErrInvalidTransition, existing.Status)
			}
			existing.To = record.To
			existing.Subject = record.Subject
			existing.Content = record.Content
			existing.Metadata = record.Metadata
			existing.Status = outreachdomain.StatusPendingApproval
			if err := u.emailRepo.Update(existing); err != nil {
				return "", err
			}
			u.afterSubmit(ctx, existing)
			return existing.ID, nil
		}
	}

	record.Status = outreachdomain.StatusPendingApproval
	if err := u.emailRepo.Create(record); err != nil {
		return "", err
	}
	u.afterSubmit(ctx, record)
	return record.ID, nil
}

func (u *outreachUsecase) afterSubmit(ctx context.Context, record *outreachdomain.EmailRecord) {
	if u.notifier != nil {
		u.notifier.NotifyPending(ctx, record)
	}
	u.broadcast("pending_created", record)
}

// ListPending returns the active approval queue
func (u *outreachUsecase) ListPending() ([]*outreachdomain.EmailRecord, error) {
	return u.emailRepo.ListPending(u.cfg.PendingMaxAge)
}

// Approve resolves a pending record exactly once. Approving dispatches the
// email immediately; the per-id in-flight flag held across both steps keeps
// a duplicate approval from double-dispatching.
func (u *outreachUsecase) Approve(ctx context.Context, id string, approved bool) (*outreachdomain.EmailRecord, error) {
	if err := u.beginAction(id); err != nil {
		return nil, err
	}
	defer u.endAction(id)

	record, err := u.emailRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, outreachdomain.ErrRecordNotFound
	}
	if record.Status != outreachdomain.StatusPendingApproval {
		return record, outreachdomain.ErrAlreadyResolved
	}

	if !approved {
		record.Status = outreachdomain.StatusRejected
		if err := u.emailRepo.Update(record); err != nil {
			return nil, err
		}
		log.Printf("[Lifecycle] Email %s rejected", id)
		u.broadcast("email_rejected", record)
		return record, nil
	}

	record.Status = outreachdomain.StatusApproved
	if err := u.emailRepo.Update(record); err != nil {
		return nil, err
	}
	log.Printf("[Lifecycle] Email %s approved, dispatching", id)

	if err := u.dispatch(ctx, record); err != nil {
		// The record stays approved; the reviewer can retry the send.
		return record, err
	}
	return record, nil
}

// Send dispatches an email. With an unknown or absent id this is the direct
// compose-and-send path; with a known id it sends a draft or an approved
// record.
func (u *outreachUsecase) Send(ctx context.Context, req dto.SendEmailRequest) (*outreachdomain.EmailRecord, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, fmt.Errorf("%w: recipient address is required", outreachdomain.ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: email content is required", outreachdomain.ErrValidation)
	}

	var record *outreachdomain.EmailRecord
	if req.ID != "" {
		existing, err := u.emailRepo.GetByID(req.ID)
		if err != nil {
			return nil, err
		}
		record = existing
	}

	if record == nil {
		record = &outreachdomain.EmailRecord{
			ID:       req.ID,
			To:       req.To,
			Subject:  req.Subject,
			Content:  req.Content,
			Metadata: outreachdomain.JSONMap(req.Metadata),
			Status:   outreachdomain.StatusDraft,
		}
		if err := u.emailRepo.Create(record); err != nil {
			return nil, err
		}
	}

	if err := u.beginAction(record.ID); err != nil {
		return record, err
	}
	defer u.endAction(record.ID)

	if record.Status == outreachdomain.StatusSent {
		return record, outreachdomain.ErrAlreadySent
	}
	if !record.CanTransition(outreachdomain.StatusSent) {
		return record, fmt.Errorf("%w: cannot send a %s email", outreachdomain.ErrInvalidTransition, record.Status)
	}

	if err := u.dispatch(ctx, record); err != nil {
		return record, err
	}
	return record, nil
}

// dispatch performs the actual delivery and the sent-state bookkeeping.
// Callers must hold the record's in-flight flag. On transport failure the
// record's status is left exactly as it was.
func (u *outreachUsecase) dispatch(ctx context.Context, record *outreachdomain.EmailRecord) error {
	callCtx, cancel := u.callCtx(ctx)
	defer cancel()

	messageID, err := u.transport.Send(callCtx, u.cfg.SenderName, u.cfg.SenderEmail, record.To, record.Subject, record.Content)
	if err != nil {
		log.Printf("[Lifecycle] Send failed for %s: %v", record.ID, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	now := time.Now()
	record.Status = outreachdomain.StatusSent
	record.SentAt = &now
	if err := u.emailRepo.Update(record); err != nil {
		// Delivery succeeded but the status write failed; the in-flight
		// guard has prevented a concurrent duplicate and the caller may
		// retry the update path.
		return err
	}

	initial := &outreachdomain.ThreadMessage{
		EmailID:   record.ID,
		Sender:    u.cfg.SenderEmail,
		Recipient: record.To,
		Timestamp: now,
		Content:   record.Content,
		Direction: outreachdomain.DirectionSent,
	}
	if err := u.threadRepo.Append(initial); err != nil {
		log.Printf("[Lifecycle] Failed to record initial thread message for %s: %v", record.ID, err)
	}

	if u.vectorSearch != nil {
		if err := u.vectorSearch.UpsertEmailEmbedding(ctx, record.ID, record.Subject, record.Content); err != nil {
			log.Printf("[Lifecycle] Failed to embed email %s: %v", record.ID, err)
		}
	}

	log.Printf("[Lifecycle] Email %s sent to %s (message id %s)", record.ID, record.To, messageID)
	u.broadcast("email_sent", record)
	return nil
}

// Thread returns the conversation for a sent email, appending any newly
// arrived replies first. A failed reply fetch degrades to the stored thread.
func (u *outreachUsecase) Thread(ctx context.Context, id string) ([]*outreachdomain.ThreadMessage, error) {
	record, err := u.emailRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, outreachdomain.ErrRecordNotFound
	}

	if record.Status == outreachdomain.StatusSent {
		u.pullReplies(ctx, record)
	}

	return u.threadRepo.GetByEmailID(id)
}

func (u *outreachUsecase) pullReplies(ctx context.Context, record *outreachdomain.EmailRecord) {
	since, err := u.threadRepo.LastMessageTime(record.ID)
	if err != nil {
		log.Printf("[Lifecycle] Failed to read thread cursor for %s: %v", record.ID, err)
		return
	}

	callCtx, cancel := u.callCtx(ctx)
	defer cancel()

	replies, err := u.transport.FetchReplies(callCtx, record.To, since)
	if err != nil {
		log.Printf("[Lifecycle] Failed to fetch replies for %s: %v", record.ID, err)
		return
	}

	for _, reply := range replies {
		reply.EmailID = record.ID
		reply.Direction = outreachdomain.DirectionReceived
	}
	if len(replies) > 0 {
		if err := u.threadRepo.AppendAll(replies); err != nil {
			log.Printf("[Lifecycle] Failed to append replies for %s: %v", record.ID, err)
			return
		}
		u.broadcast("thread_updated", map[string]interface{}{
			"email_id":     record.ID,
			"new_messages": len(replies),
		})
	}
}

// ListSent returns all sent records
func (u *outreachUsecase) ListSent() ([]*outreachdomain.EmailRecord, error) {
	return u.emailRepo.ListSent()
}

// SemanticSearch finds sent outreach emails closest to the query
func (u *outreachUsecase) SemanticSearch(ctx context.Context, query string, limit int) ([]*outreachdomain.EmailRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*outreachdomain.EmailRecord{}, nil
	}
	if u.vectorSearch == nil {
		return nil, fmt.Errorf("semantic search not available")
	}
	if limit <= 0 {
		limit = 10
	}

	callCtx, cancel := u.callCtx(ctx)
	defer cancel()

	ids, _, err := u.vectorSearch.SemanticSearch(callCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}

	records := make([]*outreachdomain.EmailRecord, 0, len(ids))
	for _, id := range ids {
		record, err := u.emailRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, record)
		}
	}
	return records, nil
}
