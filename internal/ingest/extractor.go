package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ApplicantDetails is the structured résumé payload returned by the
// extractor service. Unknown fields come back as empty strings.
type ApplicantDetails struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	ExtractedResume string `json:"extracted_resume_text"`
}

// JobDetails is the structured job-posting payload returned by the
// extractor service.
type JobDetails struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// ExtractionResult bundles both halves of an /analyse response.
type ExtractionResult struct {
	ApplicantDetails ApplicantDetails `json:"applicant_details"`
	JobDetails       JobDetails       `json:"job_details"`
}

// ExtractorClient talks to the external résumé/job extraction service.
type ExtractorClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewExtractorClient(baseURL string) *ExtractorClient {
	return &ExtractorClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // PDF parsing and LLM extraction are slow
		},
	}
}

// Analyse asks the extractor to parse a previously uploaded résumé and its
// associated job posting.
func (c *ExtractorClient) Analyse(ctx context.Context, filename string) (*ExtractionResult, error) {
	var result ExtractionResult
	if err := c.post(ctx, "/analyse", map[string]string{"filename": filename}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessResume hands a résumé off to the extractor's background pipeline.
// Only delivery is confirmed; extraction happens asynchronously on the
// extractor side.
func (c *ExtractorClient) ProcessResume(ctx context.Context, url, filename string) error {
	return c.post(ctx, "/process-resume", map[string]string{
		"url":      url,
		"filename": filename,
	}, nil)
}

func (c *ExtractorClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode extractor response: %w", err)
	}
	return nil
}
