package repository

import (
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceRepository defines the interface for reviewer push-notification
// device tokens.
type DeviceRepository interface {
	Register(token string) error
	Unregister(token string) error
	ListTokens() ([]string, error)
}

// deviceRepository implements DeviceRepository interface
type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new instance of deviceRepository
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{
		db: db,
	}
}

// Register stores a device token, ignoring duplicates
func (r *deviceRepository) Register(token string) error {
	var existing outreachdomain.ReviewerDevice
	err := r.db.Where("token = ?", token).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	device := outreachdomain.ReviewerDevice{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: time.Now(),
	}
	return r.db.Create(&device).Error
}

// Unregister removes a device token
func (r *deviceRepository) Unregister(token string) error {
	return r.db.Where("token = ?", token).Delete(&outreachdomain.ReviewerDevice{}).Error
}

// ListTokens returns all registered device tokens
func (r *deviceRepository) ListTokens() ([]string, error) {
	var devices []*outreachdomain.ReviewerDevice
	if err := r.db.Find(&devices).Error; err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}
	return tokens, nil
}
