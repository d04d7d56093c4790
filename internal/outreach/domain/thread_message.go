package domain

import "time"

// Thread message directions
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// ThreadMessage is one entry of the conversation attached to a sent email.
// The thread is append-only and ordered by Timestamp.
type ThreadMessage struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	EmailID   string    `json:"email_id" gorm:"index;not null"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content" gorm:"type:text"`
	Direction string    `json:"direction"` // "sent" or "received"
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ThreadMessage) TableName() string {
	return "thread_messages"
}
