package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service is the Gmail binding of the outreach mail transport. It delivers
// finished emails through the sender's Gmail account and recovers candidate
// replies from the same mailbox.
type Service struct {
	clientID     string
	clientSecret string
	accessToken  string
	refreshToken string
}

func NewService(clientID, clientSecret, accessToken, refreshToken string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// gmailService creates a Gmail API client from the configured tokens
func (s *Service) gmailService(ctx context.Context) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if s.refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	client := oauth2.NewClient(ctx, config.TokenSource(ctx, token))

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// Send delivers an outreach email and returns the Gmail message id
func (s *Service) Send(ctx context.Context, senderName, senderEmail, to, subject, body string) (string, error) {
	srv, err := s.gmailService(ctx)
	if err != nil {
		return "", err
	}

	user := "me"

	var emailMsg bytes.Buffer

	// Headers
	if senderName != "" && senderEmail != "" {
		encodedName := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(senderName)))
		emailMsg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodedName, senderEmail))
	}
	emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	emailMsg.WriteString("MIME-Version: 1.0\r\n")
	emailMsg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	emailMsg.WriteString(body)
	emailMsg.WriteString("\r\n")

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(emailMsg.Bytes()),
	}

	sent, err := srv.Users.Messages.Send(user, msg).Do()
	if err != nil {
		return "", fmt.Errorf("unable to send message: %v", err)
	}

	return sent.Id, nil
}

// FetchReplies returns messages received from the given address since the
// given time, oldest first
func (s *Service) FetchReplies(ctx context.Context, from string, since time.Time) ([]*outreachdomain.ThreadMessage, error) {
	srv, err := s.gmailService(ctx)
	if err != nil {
		return nil, err
	}

	user := "me"

	q := fmt.Sprintf("from:%s", from)
	if !since.IsZero() {
		// Gmail's after: filter has day granularity; exact cutoff is
		// re-applied per message below.
		q += fmt.Sprintf(" after:%d", since.Unix())
	}

	resp, err := srv.Users.Messages.List(user).Q(q).MaxResults(50).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list replies: %v", err)
	}

	var replies []*outreachdomain.ThreadMessage
	for i := len(resp.Messages) - 1; i >= 0; i-- {
		msg, err := srv.Users.Messages.Get(user, resp.Messages[i].Id).Format("full").Do()
		if err != nil {
			return nil, fmt.Errorf("unable to fetch reply %s: %v", resp.Messages[i].Id, err)
		}

		received := time.UnixMilli(msg.InternalDate)
		if !since.IsZero() && !received.After(since) {
			continue
		}

		recipient := ""
		for _, header := range msg.Payload.Headers {
			if header.Name == "To" {
				recipient = header.Value
				break
			}
		}

		replies = append(replies, &outreachdomain.ThreadMessage{
			Sender:    from,
			Recipient: recipient,
			Timestamp: received,
			Content:   extractBody(msg.Payload),
			Direction: outreachdomain.DirectionReceived,
		})
	}

	return replies, nil
}

// extractBody pulls the plain-text body out of a Gmail message payload
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data)
		}
	}

	for _, part := range payload.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}
	return ""
}
