package ai

import (
	"fmt"
	"strings"
)

// formatList formats a list of items for use in prompts
func formatList(items []string) string {
	if len(items) == 0 {
		return "Not specified"
	}
	return strings.Join(items, ", ")
}

// generatePrompt builds the drafting prompt shared by all providers so
// switching providers does not change the voice of the output.
func generatePrompt(req DraftRequest) string {
	currentCompany := req.CurrentCompany
	if currentCompany == "" {
		currentCompany = "their current company"
	}
	currentPosition := req.CurrentPosition
	if currentPosition == "" {
		currentPosition = "their current role"
	}

	return fmt.Sprintf(`You are a professional recruiter AI assistant specializing in writing compelling recruitment emails.

Your task is to create personalized, professional recruitment emails that:
1. Are engaging and conversational yet professional
2. Highlight relevant candidate skills and experience
3. Present the job opportunity clearly and attractively
4. Include specific benefits and role details
5. Have a clear call-to-action
6. Are personalized to the candidate's background

Always write in a warm, human tone while maintaining professionalism.

Please draft a recruitment email with the following details:

Candidate Information:
- Name: %s
- Email: %s
- Current Company: %s
- Current Position: %s
- Skills: %s

Job Information:
- Title: %s
- Company: %s
- Requirements: %s
- Benefits: %s

Create a compelling email that would interest this candidate in the opportunity. Respond with the email body only.`,
		req.CandidateName,
		req.CandidateEmail,
		currentCompany,
		currentPosition,
		formatList(req.Skills),
		req.JobTitle,
		req.JobCompany,
		formatList(req.JobRequirements),
		formatList(req.JobBenefits))
}

// improvePrompt builds the revision prompt shared by all providers.
func improvePrompt(content, instruction, contextInfo string) string {
	if contextInfo == "" {
		contextInfo = "No additional context provided"
	}

	return fmt.Sprintf(`You are an expert email editor specializing in recruitment communications.
Your task is to improve existing recruitment emails based on specific user requests while maintaining professionalism and effectiveness.

Focus on:
1. Clarity and readability
2. Professional tone
3. Persuasive language
4. Proper structure
5. Actionable improvements based on the user's request

Please improve the following recruitment email based on this request: "%s"

Original Email:
%s

Candidate Context:
%s

Provide the improved version that addresses the specific improvement request while maintaining the email's effectiveness. Respond with the improved email body only.`,
		instruction, content, contextInfo)
}
