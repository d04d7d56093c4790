package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"
)

// ReplyFetcher recovers candidate replies for the relay binding, which has
// no thread API of its own. The IMAP client implements this.
type ReplyFetcher interface {
	FetchReplies(ctx context.Context, from string, since time.Time) ([]*outreachdomain.ThreadMessage, error)
}

// Service is the HTTP relay binding of the outreach mail transport: delivery
// goes through an external send service, replies come back over IMAP.
type Service struct {
	baseURL string
	replies ReplyFetcher
}

// NewService creates a new relay transport. replies may be nil; threads then
// hold only the outbound message.
func NewService(baseURL string, replies ReplyFetcher) *Service {
	if baseURL == "" {
		baseURL = "http://localhost:8001"
	}
	return &Service{
		baseURL: baseURL,
		replies: replies,
	}
}

// Send delivers an outreach email through the relay and returns its message id
func (s *Service) Send(ctx context.Context, senderName, senderEmail, to, subject, body string) (string, error) {
	url := s.baseURL + "/send-email/"

	payload := map[string]string{
		"to":      to,
		"subject": subject,
		"message": body,
		"sender":  senderEmail,
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relay error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.MessageID, nil
}

// FetchReplies returns messages received from the given address since the
// given time
func (s *Service) FetchReplies(ctx context.Context, from string, since time.Time) ([]*outreachdomain.ThreadMessage, error) {
	if s.replies == nil {
		return nil, nil
	}
	return s.replies.FetchReplies(ctx, from, since)
}
