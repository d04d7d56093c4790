package repository

import (
	"time"

	outreachdomain "outreach-backend/internal/outreach/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngestRepository defines the interface for applicant and job records
// created by the résumé/job-URL ingestion boundary.
type IngestRepository interface {
	CreateJob(job *outreachdomain.Job) error
	UpdateJob(job *outreachdomain.Job) error
	CreateApplicant(applicant *outreachdomain.Applicant) error
	UpdateApplicant(applicant *outreachdomain.Applicant) error
	// GetApplicantByFilename looks an applicant up by stored résumé
	// filename. Returns (nil, nil) when not found.
	GetApplicantByFilename(filename string) (*outreachdomain.Applicant, error)
	GetJobByID(id string) (*outreachdomain.Job, error)
}

// ingestRepository implements IngestRepository interface
type ingestRepository struct {
	db *gorm.DB
}

// NewIngestRepository creates a new instance of ingestRepository
func NewIngestRepository(db *gorm.DB) IngestRepository {
	return &ingestRepository{
		db: db,
	}
}

func (r *ingestRepository) CreateJob(job *outreachdomain.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.ProcessingStatus == "" {
		job.ProcessingStatus = outreachdomain.ProcessingNotStarted
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	return r.db.Create(job).Error
}

func (r *ingestRepository) UpdateJob(job *outreachdomain.Job) error {
	job.UpdatedAt = time.Now()
	return r.db.Save(job).Error
}

func (r *ingestRepository) CreateApplicant(applicant *outreachdomain.Applicant) error {
	if applicant.ID == "" {
		applicant.ID = uuid.New().String()
	}
	if applicant.ProcessingStatus == "" {
		applicant.ProcessingStatus = outreachdomain.ProcessingNotStarted
	}
	now := time.Now()
	applicant.CreatedAt = now
	applicant.UpdatedAt = now
	return r.db.Create(applicant).Error
}

func (r *ingestRepository) UpdateApplicant(applicant *outreachdomain.Applicant) error {
	applicant.UpdatedAt = time.Now()
	return r.db.Save(applicant).Error
}

func (r *ingestRepository) GetApplicantByFilename(filename string) (*outreachdomain.Applicant, error) {
	var applicant outreachdomain.Applicant
	err := r.db.Where("resume_filename = ?", filename).First(&applicant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &applicant, nil
}

func (r *ingestRepository) GetJobByID(id string) (*outreachdomain.Job, error) {
	var job outreachdomain.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}
