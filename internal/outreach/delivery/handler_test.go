package delivery

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/dto"
	"outreach-backend/internal/outreach/usecase"

	"github.com/gin-gonic/gin"
)

// stubUsecase returns canned data per method; set the matching err field to
// exercise the error mapping.
type stubUsecase struct {
	generateContent string
	generateSubject string
	generateErr     error

	improved   string
	improveErr error

	submitID  string
	submitErr error

	pending    []*domain.EmailRecord
	pendingErr error

	approveRecord *domain.EmailRecord
	approveErr    error

	sendRecord *domain.EmailRecord
	sendErr    error

	thread    []*domain.ThreadMessage
	threadErr error

	sent []*domain.EmailRecord

	streamChunks []string
	streamErr    error
}

func (s *stubUsecase) GenerateEmail(ctx context.Context, req dto.GenerateEmailRequest) (string, string, error) {
	return s.generateContent, s.generateSubject, s.generateErr
}

func (s *stubUsecase) ImproveEmail(ctx context.Context, content, instruction string, contextInfo map[string]interface{}) (string, error) {
	return s.improved, s.improveErr
}

func (s *stubUsecase) ImproveEmailStream(ctx context.Context, content, instruction string, contextInfo map[string]interface{}, onChunk func(string) error) error {
	if s.streamErr != nil {
		return s.streamErr
	}
	for _, chunk := range s.streamChunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubUsecase) SubmitForApproval(ctx context.Context, record *domain.EmailRecord) (string, error) {
	return s.submitID, s.submitErr
}

func (s *stubUsecase) ListPending() ([]*domain.EmailRecord, error) {
	return s.pending, s.pendingErr
}

func (s *stubUsecase) Approve(ctx context.Context, id string, approved bool) (*domain.EmailRecord, error) {
	return s.approveRecord, s.approveErr
}

func (s *stubUsecase) Send(ctx context.Context, req dto.SendEmailRequest) (*domain.EmailRecord, error) {
	return s.sendRecord, s.sendErr
}

func (s *stubUsecase) Thread(ctx context.Context, id string) ([]*domain.ThreadMessage, error) {
	return s.thread, s.threadErr
}

func (s *stubUsecase) ListSent() ([]*domain.EmailRecord, error) {
	return s.sent, nil
}

func (s *stubUsecase) SemanticSearch(ctx context.Context, query string, limit int) ([]*domain.EmailRecord, error) {
	return nil, nil
}

func (s *stubUsecase) InFlight(id string) bool { return false }

func (s *stubUsecase) SetVectorSearchService(svc usecase.VectorSearchService) {}
func (s *stubUsecase) SetNotifier(n usecase.ReviewerNotifier)                 {}
func (s *stubUsecase) SetEventPublisher(p usecase.EventPublisher)             {}

type stubDeviceRepo struct {
	tokens []string
}

func (r *stubDeviceRepo) Register(token string) error {
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *stubDeviceRepo) Unregister(token string) error { return nil }

func (r *stubDeviceRepo) ListTokens() ([]string, error) { return r.tokens, nil }

func newTestRouter(uc usecase.OutreachUsecase, deviceRepo *stubDeviceRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if deviceRepo == nil {
		deviceRepo = &stubDeviceRepo{}
	}
	h := NewOutreachHandler(uc, deviceRepo)

	r := gin.New()
	r.POST("/api/email/generate", h.GenerateEmail)
	r.POST("/api/email/improve", h.ImproveEmail)
	r.POST("/api/email/improve/stream", h.ImproveEmailStream)
	r.POST("/api/email/pending", h.SubmitPending)
	r.GET("/api/email/pending", h.GetPending)
	r.POST("/api/email/approve", h.Approve)
	r.POST("/api/email/send", h.SendEmail)
	r.GET("/api/email/thread/:id", h.GetThread)
	r.GET("/api/email/sent", h.GetSent)
	r.POST("/api/devices", h.RegisterDevice)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEmailEndpoint(t *testing.T) {
	r := newTestRouter(&stubUsecase{generateContent: "Hello", generateSubject: "Subject"}, nil)

	w := doJSON(t, r, "POST", "/api/email/generate", `{
		"candidate_name": "Jane Doe",
		"candidate_email": "jane@example.com",
		"job_title": "Engineer",
		"job_company": "Acme"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.GenerateEmailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.EmailContent != "Hello" || resp.Subject != "Subject" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestGenerateEmailRejectsMissingFields(t *testing.T) {
	r := newTestRouter(&stubUsecase{}, nil)

	w := doJSON(t, r, "POST", "/api/email/generate", `{"candidate_name": "Jane Doe"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"not found", domain.ErrRecordNotFound, http.StatusNotFound},
		{"already resolved", domain.ErrAlreadyResolved, http.StatusConflict},
		{"already sent", domain.ErrAlreadySent, http.StatusConflict},
		{"in flight", domain.ErrActionInFlight, http.StatusConflict},
		{"transport failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubUsecase{approveErr: tc.err}, nil)
			w := doJSON(t, r, "POST", "/api/email/approve", `{"id": "x", "approved": true}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] == "" {
				t.Fatal("error body missing")
			}
		})
	}
}

func TestApproveRequiresApprovedField(t *testing.T) {
	r := newTestRouter(&stubUsecase{}, nil)

	// "approved" is a required pointer so an explicit false must bind while
	// a missing field must not.
	w := doJSON(t, r, "POST", "/api/email/approve", `{"id": "x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing approved", w.Code)
	}

	rejected := &domain.EmailRecord{ID: "x", Status: domain.StatusRejected}
	r = newTestRouter(&stubUsecase{approveRecord: rejected}, nil)
	w = doJSON(t, r, "POST", "/api/email/approve", `{"id": "x", "approved": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGetPendingReturnsEmptyArray(t *testing.T) {
	r := newTestRouter(&stubUsecase{}, nil)

	w := doJSON(t, r, "GET", "/api/email/pending", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"pending_emails":[]`) {
		t.Fatalf("body = %s, want empty array not null", w.Body.String())
	}
}

func TestSendEndpoint(t *testing.T) {
	now := time.Now()
	sent := &domain.EmailRecord{ID: "e1", Status: domain.StatusSent, SentAt: &now}
	r := newTestRouter(&stubUsecase{sendRecord: sent}, nil)

	w := doJSON(t, r, "POST", "/api/email/send", `{"to": "a@b.com", "subject": "S", "content": "C"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.SendEmailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "e1" || resp.Status != domain.StatusSent || resp.SentAt == "" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestThreadEndpoint(t *testing.T) {
	msgs := []*domain.ThreadMessage{
		{EmailID: "e1", Sender: "recruiter@company.com", Direction: domain.DirectionSent, Content: "C"},
	}
	r := newTestRouter(&stubUsecase{thread: msgs}, nil)

	w := doJSON(t, r, "GET", "/api/email/thread/e1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp dto.ThreadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.EmailID != "e1" || len(resp.Messages) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestRegisterDeviceEndpoint(t *testing.T) {
	deviceRepo := &stubDeviceRepo{}
	r := newTestRouter(&stubUsecase{}, deviceRepo)

	w := doJSON(t, r, "POST", "/api/devices", `{"token": "abc123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(deviceRepo.tokens) != 1 || deviceRepo.tokens[0] != "abc123" {
		t.Fatalf("tokens = %v", deviceRepo.tokens)
	}
}

func parseStream(t *testing.T, body string) []streamEvent {
	t.Helper()
	var events []streamEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad stream line %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestImproveEmailStreamEndpoint(t *testing.T) {
	r := newTestRouter(&stubUsecase{streamChunks: []string{"Hello ", "world"}}, nil)

	w := doJSON(t, r, "POST", "/api/email/improve/stream", `{
		"email_content": "hi",
		"improvement_request": "longer"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	events := parseStream(t, w.Body.String())
	if len(events) != 4 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if events[0].Type != "status" {
		t.Fatalf("first event = %+v, want status", events[0])
	}
	if events[1].Type != "chunk" || events[2].Type != "chunk" {
		t.Fatalf("middle events = %+v, want chunks", events[1:3])
	}
	last := events[len(events)-1]
	if last.Type != "complete" || last.Content != "Hello world" {
		t.Fatalf("final event = %+v", last)
	}
}

func TestImproveEmailStreamEmitsErrorEvent(t *testing.T) {
	r := newTestRouter(&stubUsecase{streamErr: errors.New("provider unavailable")}, nil)

	w := doJSON(t, r, "POST", "/api/email/improve/stream", `{
		"email_content": "hi",
		"improvement_request": "longer"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, stream errors arrive in-band", w.Code)
	}

	events := parseStream(t, w.Body.String())
	last := events[len(events)-1]
	if last.Type != "error" || last.Error == "" {
		t.Fatalf("final event = %+v, want error", last)
	}
}
