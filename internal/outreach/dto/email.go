package dto

import (
	outreachdomain "outreach-backend/internal/outreach/domain"
)

// GenerateEmailRequest carries the candidate and job facts the drafter
// personalizes the outreach email from.
type GenerateEmailRequest struct {
	CandidateName   string   `json:"candidate_name" binding:"required"`
	CandidateEmail  string   `json:"candidate_email" binding:"required,email"`
	CurrentCompany  string   `json:"current_company"`
	CurrentPosition string   `json:"current_position"`
	Skills          []string `json:"skills"`
	JobTitle        string   `json:"job_title" binding:"required"`
	JobCompany      string   `json:"job_company" binding:"required"`
	JobRequirements []string `json:"job_requirements"`
	JobBenefits     []string `json:"job_benefits"`
}

type GenerateEmailResponse struct {
	EmailContent string `json:"email_content"`
	Subject      string `json:"subject"`
	GeneratedAt  string `json:"generated_at"`
}

type ImproveEmailRequest struct {
	EmailContent       string                 `json:"email_content" binding:"required"`
	ImprovementRequest string                 `json:"improvement_request" binding:"required"`
	Context            map[string]interface{} `json:"context"`
}

type ImproveEmailResponse struct {
	ImprovedContent    string `json:"improved_content"`
	ImprovementRequest string `json:"improvement_request"`
	ImprovedAt         string `json:"improved_at"`
}

// PendingEmailRequest submits a drafted email to the approval queue.
type PendingEmailRequest struct {
	ID       string                 `json:"id"`
	To       string                 `json:"to" binding:"required,email"`
	Subject  string                 `json:"subject"`
	Content  string                 `json:"content" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type PendingEmailsResponse struct {
	PendingEmails []*outreachdomain.EmailRecord `json:"pending_emails"`
}

type ApprovalRequest struct {
	ID       string `json:"id" binding:"required"`
	Approved *bool  `json:"approved" binding:"required"`
}

type SendEmailRequest struct {
	ID       string                 `json:"id"`
	To       string                 `json:"to" binding:"required,email"`
	Subject  string                 `json:"subject"`
	Content  string                 `json:"content" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type SendEmailResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	SentAt string `json:"sent_at"`
}

type ThreadResponse struct {
	EmailID  string                          `json:"email_id"`
	Messages []*outreachdomain.ThreadMessage `json:"messages"`
}

type SentEmailsResponse struct {
	SentEmails []*outreachdomain.EmailRecord `json:"sent_emails"`
}

type SemanticSearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}
