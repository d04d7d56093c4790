package imapclient

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Service recovers candidate replies from the sender's mailbox over IMAP.
// Used by the relay transport, which can deliver mail but cannot read it.
type Service struct {
	addr     string
	username string
	password string
}

func NewService(addr, username, password string) *Service {
	return &Service{
		addr:     addr,
		username: username,
		password: password,
	}
}

// FetchReplies returns messages received from the given address since the
// given time, oldest first
func (s *Service) FetchReplies(ctx context.Context, from string, since time.Time) ([]*outreachdomain.ThreadMessage, error) {
	if s.addr == "" {
		return nil, nil
	}

	c, err := client.DialTLS(s.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.username, s.password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("From", from)
	if !since.IsZero() {
		// SINCE has day granularity; the exact cutoff is re-applied per
		// message below.
		criteria.Since = since.Truncate(24 * time.Hour)
	}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, section.FetchItem()}

	messages := make(chan *imap.Message, len(seqNums))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var replies []*outreachdomain.ThreadMessage
	for msg := range messages {
		received := msg.InternalDate
		if !since.IsZero() && !received.After(since) {
			continue
		}

		recipient := ""
		if msg.Envelope != nil && len(msg.Envelope.To) > 0 {
			recipient = msg.Envelope.To[0].Address()
		}

		replies = append(replies, &outreachdomain.ThreadMessage{
			Sender:    from,
			Recipient: recipient,
			Timestamp: received,
			Content:   readBody(msg.GetBody(section)),
			Direction: outreachdomain.DirectionReceived,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}

	sort.Slice(replies, func(i, j int) bool {
		return replies[i].Timestamp.Before(replies[j].Timestamp)
	})
	return replies, nil
}

// readBody extracts the first inline text part of a message
func readBody(r io.Reader) string {
	if r == nil {
		return ""
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		log.Printf("[IMAP] Failed to parse message: %v", err)
		return ""
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[IMAP] Failed to read message part: %v", err)
			break
		}

		if _, ok := part.Header.(*mail.InlineHeader); ok {
			body, err := io.ReadAll(part.Body)
			if err != nil {
				log.Printf("[IMAP] Failed to read message body: %v", err)
				break
			}
			return string(body)
		}
	}
	return ""
}
