package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Email lifecycle statuses. Transitions only move forward along the
// lifecycle graph: draft -> pending_approval -> approved/rejected -> sent.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusSent            = "sent"
)

var (
	// ErrValidation marks local input errors rejected before any network
	// call is made.
	ErrValidation = errors.New("validation failed")
	// ErrRecordNotFound is returned when an email record does not exist.
	ErrRecordNotFound = errors.New("email record not found")
	// ErrAlreadyResolved is returned when approving or rejecting a record
	// that has already left pending_approval.
	ErrAlreadyResolved = errors.New("email record already resolved")
	// ErrAlreadySent is returned when sending a record that is already sent.
	ErrAlreadySent = errors.New("email record already sent")
	// ErrActionInFlight is returned when another action on the same record
	// is still outstanding.
	ErrActionInFlight = errors.New("another action for this email is in flight")
	// ErrContentFrozen is returned when editing content of a sent or
	// rejected record.
	ErrContentFrozen = errors.New("email content can no longer be edited")
	// ErrInvalidTransition is returned for any other disallowed status move.
	ErrInvalidTransition = errors.New("invalid email status transition")
)

// JSONMap is a custom type to handle an opaque JSON object in GORM.
// Outreach metadata (candidate and job facts) is carried through unchanged;
// the lifecycle never inspects it.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// EmailRecord is the unit of work of the outreach workflow: one drafted
// recruitment email moving through review towards delivery.
type EmailRecord struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	To        string     `json:"to" gorm:"not null"`
	Subject   string     `json:"subject"`
	Content   string     `json:"content" gorm:"type:text"`
	Metadata  JSONMap    `json:"metadata,omitempty" gorm:"type:text"`
	Status    string     `json:"status" gorm:"index;not null;default:draft"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`

	ThreadMessages []*ThreadMessage `json:"thread_messages,omitempty" gorm:"-"`
}

// Terminal reports whether the record can accept no further transition.
func (r *EmailRecord) Terminal() bool {
	return r.Status == StatusRejected || r.Status == StatusSent
}

// Editable reports whether subject and content may still change.
// Both are frozen once the record is sent or rejected.
func (r *EmailRecord) Editable() bool {
	switch r.Status {
	case StatusDraft, StatusPendingApproval, StatusApproved:
		return true
	}
	return false
}

// CanTransition reports whether moving the record to the target status is a
// valid forward step of the lifecycle graph.
func (r *EmailRecord) CanTransition(to string) bool {
	switch to {
	case StatusPendingApproval:
		return r.Status == StatusDraft
	case StatusApproved, StatusRejected:
		return r.Status == StatusPendingApproval
	case StatusSent:
		// Direct send from draft is the single-user trusted flow;
		// send from approved is the reviewed flow.
		return r.Status == StatusDraft || r.Status == StatusApproved
	}
	return false
}
