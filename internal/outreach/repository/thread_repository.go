package repository

import (
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThreadRepository defines the interface for conversation thread storage.
// Threads are append-only; ordering is by message timestamp.
type ThreadRepository interface {
	// Append stores one thread message for an email
	Append(msg *outreachdomain.ThreadMessage) error
	// AppendAll stores multiple thread messages for an email
	AppendAll(msgs []*outreachdomain.ThreadMessage) error
	// GetByEmailID returns all thread messages for an email, oldest first
	GetByEmailID(emailID string) ([]*outreachdomain.ThreadMessage, error)
	// LastMessageTime returns the timestamp of the newest message in the
	// thread, or the zero time when the thread is empty
	LastMessageTime(emailID string) (time.Time, error)
}

// threadRepository implements ThreadRepository interface
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new instance of threadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{
		db: db,
	}
}

// Append stores one thread message for an email
func (r *threadRepository) Append(msg *outreachdomain.ThreadMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.CreatedAt = time.Now()

	return r.db.Create(msg).Error
}

// AppendAll stores multiple thread messages for an email
func (r *threadRepository) AppendAll(msgs []*outreachdomain.ThreadMessage) error {
	for _, msg := range msgs {
		if err := r.Append(msg); err != nil {
			return err
		}
	}
	return nil
}

// GetByEmailID returns all thread messages for an email, oldest first
func (r *threadRepository) GetByEmailID(emailID string) ([]*outreachdomain.ThreadMessage, error) {
	var msgs []*outreachdomain.ThreadMessage
	err := r.db.Where("email_id = ?", emailID).Order("timestamp ASC").Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// LastMessageTime returns the timestamp of the newest message in the thread
func (r *threadRepository) LastMessageTime(emailID string) (time.Time, error) {
	var msg outreachdomain.ThreadMessage
	err := r.db.Where("email_id = ?", emailID).Order("timestamp DESC").First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return msg.Timestamp, nil
}
