package notify

import (
	"context"
	"fmt"
	"log"

	"outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/repository"
	"outreach-backend/pkg/fcm"
)

// Service pushes a notification to every registered reviewer device
// when an email enters the approval queue.
type Service struct {
	fcmClient  *fcm.Client
	deviceRepo repository.DeviceRepository
}

func NewService(fcmClient *fcm.Client, deviceRepo repository.DeviceRepository) *Service {
	return &Service{
		fcmClient:  fcmClient,
		deviceRepo: deviceRepo,
	}
}

func (s *Service) NotifyPending(ctx context.Context, record *domain.EmailRecord) {
	if s.fcmClient == nil || s.deviceRepo == nil {
		return
	}

	tokens, err := s.deviceRepo.ListTokens()
	if err != nil {
		log.Printf("[Notify] Error listing reviewer device tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	subject := record.Subject
	if len(subject) > 100 {
		subject = subject[:97] + "..."
	}
	body := subject
	if body == "" {
		body = "(no subject)"
	}

	failedTokens, err := s.fcmClient.SendToDevices(ctx, tokens, fcm.NotificationData{
		Title: fmt.Sprintf("Approval needed: email to %s", record.To),
		Body:  body,
		Data: map[string]string{
			"type":    "pending_approval",
			"emailId": record.ID,
		},
	})
	if err != nil {
		log.Printf("[Notify] Error sending push notifications: %v", err)
		return
	}

	log.Printf("[Notify] Notified %d reviewer devices for email %s", len(tokens)-len(failedTokens), record.ID)

	// Stale tokens come back as failures; unregister them so the next
	// pending email does not retry dead devices.
	for _, token := range failedTokens {
		if err := s.deviceRepo.Unregister(token); err != nil {
			log.Printf("[Notify] Error removing stale token: %v", err)
		}
	}
}
