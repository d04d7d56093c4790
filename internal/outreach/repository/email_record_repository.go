package repository

import (
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// emailRecordRepository implements EmailRecordRepository interface
type emailRecordRepository struct {
	db *gorm.DB
}

// NewEmailRecordRepository creates a new instance of emailRecordRepository
func NewEmailRecordRepository(db *gorm.DB) EmailRecordRepository {
	return &emailRecordRepository{
		db: db,
	}
}

// Create inserts a new email record, assigning an ID if absent
func (r *emailRecordRepository) Create(record *outreachdomain.EmailRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Status == "" {
		record.Status = outreachdomain.StatusDraft
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if record.Metadata == nil {
		record.Metadata = outreachdomain.JSONMap{}
	}

	return r.db.Create(record).Error
}

// GetByID gets an email record by ID
func (r *emailRecordRepository) GetByID(id string) (*outreachdomain.EmailRecord, error) {
	var record outreachdomain.EmailRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Update persists a mutated email record
func (r *emailRecordRepository) Update(record *outreachdomain.EmailRecord) error {
	record.UpdatedAt = time.Now()

	if record.Metadata == nil {
		record.Metadata = outreachdomain.JSONMap{}
	}

	return r.db.Save(record).Error
}

// ListPending returns the active approval queue, oldest first.
// Stale pending records are purged first so abandoned submissions do not
// accumulate in the reviewer's queue.
func (r *emailRecordRepository) ListPending(maxAge time.Duration) ([]*outreachdomain.EmailRecord, error) {
	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge)
		err := r.db.Where("status = ? AND created_at < ?", outreachdomain.StatusPendingApproval, cutoff).
			Delete(&outreachdomain.EmailRecord{}).Error
		if err != nil {
			return nil, err
		}
	}

	return r.ListByStatus(outreachdomain.StatusPendingApproval)
}

// ListByStatus returns all records with the given status, oldest first
func (r *emailRecordRepository) ListByStatus(status string) ([]*outreachdomain.EmailRecord, error) {
	var records []*outreachdomain.EmailRecord
	err := r.db.Where("status = ?", status).Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListSent returns all sent records, newest first
func (r *emailRecordRepository) ListSent() ([]*outreachdomain.EmailRecord, error) {
	var records []*outreachdomain.EmailRecord
	err := r.db.Where("status = ?", outreachdomain.StatusSent).Order("sent_at DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
