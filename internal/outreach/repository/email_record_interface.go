package repository

import (
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"
)

// EmailRecordRepository defines the persistence interface of the approval
// store. GetByID returns (nil, nil) when the record does not exist.
type EmailRecordRepository interface {
	Create(record *outreachdomain.EmailRecord) error
	GetByID(id string) (*outreachdomain.EmailRecord, error)
	Update(record *outreachdomain.EmailRecord) error
	// ListPending returns all records awaiting approval, oldest first.
	// Pending records older than maxAge are purged before listing; a zero
	// maxAge disables the purge.
	ListPending(maxAge time.Duration) ([]*outreachdomain.EmailRecord, error)
	ListByStatus(status string) ([]*outreachdomain.EmailRecord, error)
	ListSent() ([]*outreachdomain.EmailRecord, error)
}
