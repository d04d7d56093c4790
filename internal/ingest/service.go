package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"outreach-backend/internal/outreach/domain"
	"outreach-backend/internal/outreach/repository"
)

// UploadResult reports a stored résumé. Warning is set when the upload
// itself succeeded but downstream extraction did not.
type UploadResult struct {
	Filename    string `json:"filename"`
	ApplicantID string `json:"applicant_id"`
	JobID       string `json:"job_id"`
	Warning     string `json:"warning,omitempty"`
}

// Service owns the résumé/job ingestion boundary: it stores uploaded PDFs,
// records applicant and job rows, and drives the external extractor.
type Service struct {
	repo      repository.IngestRepository
	extractor *ExtractorClient
	uploadDir string
}

func NewService(repo repository.IngestRepository, extractor *ExtractorClient, uploadDir string) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		uploadDir: uploadDir,
	}
}

// IsPDF reports whether the uploaded file claims to be a PDF. Only the
// extension and declared content type are checked; the extractor does the
// real parsing.
func IsPDF(header *multipart.FileHeader) bool {
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return false
	}
	contentType := header.Header.Get("Content-Type")
	return contentType == "" || contentType == "application/pdf"
}

// sanitizeFilename strips any path components and characters that would be
// unsafe on disk, then prefixes a timestamp so repeated uploads of the same
// résumé never collide.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	return fmt.Sprintf("%d_%s", time.Now().Unix(), base)
}

// HandleUpload stores a résumé PDF against a job posting URL and kicks off
// extraction. Extraction failure does not fail the upload: the applicant row
// is marked failed and the result carries a warning instead.
func (s *Service) HandleUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader, jobLink string) (*UploadResult, error) {
	filename := sanitizeFilename(header.Filename)

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	job := &domain.Job{
		JobURL: jobLink,
	}
	if err := s.repo.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to record job: %w", err)
	}

	applicant := &domain.Applicant{
		ResumeFilename: filename,
		JobID:          job.ID,
	}
	if err := s.repo.CreateApplicant(applicant); err != nil {
		return nil, fmt.Errorf("failed to record applicant: %w", err)
	}

	result := &UploadResult{
		Filename:    filename,
		ApplicantID: applicant.ID,
		JobID:       job.ID,
	}

	// Extraction is best-effort: the résumé is already stored, so a
	// flaky extractor only degrades the response.
	if err := s.runExtraction(ctx, applicant, job); err != nil {
		log.Printf("[Ingest] Extraction failed for %s: %v", filename, err)
		result.Warning = fmt.Sprintf("resume stored but extraction failed: %v", err)
	}

	return result, nil
}

// runExtraction walks the applicant and job rows through the
// not_started -> processing -> completed/failed lifecycle.
func (s *Service) runExtraction(ctx context.Context, applicant *domain.Applicant, job *domain.Job) error {
	applicant.ProcessingStatus = domain.ProcessingInProgress
	if err := s.repo.UpdateApplicant(applicant); err != nil {
		return err
	}
	job.ProcessingStatus = domain.ProcessingInProgress
	if err := s.repo.UpdateJob(job); err != nil {
		return err
	}

	extraction, err := s.extractor.Analyse(ctx, applicant.ResumeFilename)
	if err != nil {
		applicant.ProcessingStatus = domain.ProcessingFailed
		if updateErr := s.repo.UpdateApplicant(applicant); updateErr != nil {
			log.Printf("[Ingest] Error marking applicant failed: %v", updateErr)
		}
		job.ProcessingStatus = domain.ProcessingFailed
		if updateErr := s.repo.UpdateJob(job); updateErr != nil {
			log.Printf("[Ingest] Error marking job failed: %v", updateErr)
		}
		return err
	}

	s.applyExtraction(applicant, job, extraction)

	if err := s.repo.UpdateApplicant(applicant); err != nil {
		return err
	}
	return s.repo.UpdateJob(job)
}

func (s *Service) applyExtraction(applicant *domain.Applicant, job *domain.Job, extraction *ExtractionResult) {
	applicant.FirstName = extraction.ApplicantDetails.FirstName
	applicant.LastName = extraction.ApplicantDetails.LastName
	applicant.Email = extraction.ApplicantDetails.Email
	applicant.ExtractedResume = extraction.ApplicantDetails.ExtractedResume
	applicant.ProcessingStatus = domain.ProcessingCompleted

	job.Title = extraction.JobDetails.Title
	job.Company = extraction.JobDetails.Company
	job.ExtractedDescription = extraction.JobDetails.Description
	job.ProcessingStatus = domain.ProcessingCompleted
}

// Analyse re-runs extraction for an already uploaded résumé and persists
// the result.
func (s *Service) Analyse(ctx context.Context, filename string) (*ExtractionResult, error) {
	applicant, err := s.repo.GetApplicantByFilename(filename)
	if err != nil {
		return nil, err
	}
	if applicant == nil {
		return nil, fmt.Errorf("%w: no applicant found for filename %s", domain.ErrRecordNotFound, filename)
	}

	extraction, err := s.extractor.Analyse(ctx, filename)
	if err != nil {
		applicant.ProcessingStatus = domain.ProcessingFailed
		if updateErr := s.repo.UpdateApplicant(applicant); updateErr != nil {
			log.Printf("[Ingest] Error marking applicant failed: %v", updateErr)
		}
		return nil, err
	}

	job, err := s.repo.GetJobByID(applicant.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		job = &domain.Job{ID: applicant.JobID}
	}

	s.applyExtraction(applicant, job, extraction)
	if err := s.repo.UpdateApplicant(applicant); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateJob(job); err != nil {
		return nil, err
	}

	return extraction, nil
}

// ProcessResume forwards a résumé reference to the extractor's background
// pipeline. Best-effort: only delivery is confirmed.
func (s *Service) ProcessResume(ctx context.Context, url, filename string) error {
	return s.extractor.ProcessResume(ctx, url, filename)
}
