package domain

import "time"

// Processing statuses shared by résumé and job-description extraction.
const (
	ProcessingNotStarted = "not_started"
	ProcessingInProgress = "processing"
	ProcessingCompleted  = "completed"
	ProcessingFailed     = "failed"
)

// Job is a job posting ingested from a URL. The description text is filled
// in by the external extractor service.
type Job struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	JobURL               string    `json:"job_url" gorm:"type:text;not null"`
	Title                string    `json:"title"`
	Company              string    `json:"company"`
	ProcessingStatus     string    `json:"processing_status" gorm:"not null;default:not_started"`
	ExtractedDescription string    `json:"extracted_description,omitempty" gorm:"type:text"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Applicant is a candidate whose résumé was uploaded against a job posting.
type Applicant struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	ResumeFilename   string    `json:"resume_filename" gorm:"type:text;not null"`
	ExtractedResume  string    `json:"extracted_resume,omitempty" gorm:"type:text"`
	JobID            string    `json:"job_id" gorm:"index;not null"`
	ProcessingStatus string    `json:"processing_status" gorm:"not null;default:not_started"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ReviewerDevice is a registered push-notification target for the approval
// queue. Kept deliberately anonymous: the review surface has no accounts.
type ReviewerDevice struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Token     string    `json:"token" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}
