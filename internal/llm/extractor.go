// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobRequirements", "BrandVoice")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// ResumeSchema returns the extraction schema for résumé text.
func ResumeSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "Resume",
		Description: `You are an expert ATS (applicant tracking system) résumé parser.
Your task is to extract structured information from the raw text of a résumé.
Use an empty string or empty list when a field is not present.`,
		Fields: []SchemaField{
			{Name: "full_name", Type: "string", Description: "Candidate's full name", Required: true},
			{Name: "email", Type: "string", Description: "Primary email address"},
			{Name: "phone", Type: "string", Description: "Phone number"},
			{Name: "linkedin", Type: "string", Description: "LinkedIn profile URL"},
			{Name: "github", Type: "string", Description: "GitHub profile URL"},
			{Name: "summary", Type: "string", Description: "Professional summary"},
			{Name: "skills", Type: "[]string", Description: "Technical and soft skills", Required: true},
			{Name: "employment_details", Type: "[]{company, title, start_date, end_date, description}", Description: "Work history, newest first"},
			{Name: "education", Type: "[]{institution, degree, field, graduation_year}", Description: "Degrees and schools"},
			{Name: "projects", Type: "[]{name, description, technologies}", Description: "Notable projects"},
			{Name: "certifications", Type: "[]string", Description: "Certifications"},
			{Name: "total_experience_years", Type: "number", Description: "Total years of professional experience"},
		},
	}
}

// MatchSchema returns the output schema for résumé/job fit scoring.
func MatchSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "MatchAnalysis",
		Description: `You are an expert recruiter. Compare the candidate résumé with the job description
and score how well they match. Scores are integers from 0 to 100.`,
		Fields: []SchemaField{
			{Name: "overallMatch", Type: "number", Description: "Overall fit 0-100", Required: true},
			{Name: "skillsMatch", Type: "number", Description: "Skills fit 0-100", Required: true},
			{Name: "experienceMatch", Type: "number", Description: "Experience fit 0-100", Required: true},
			{Name: "educationMatch", Type: "number", Description: "Education fit 0-100", Required: true},
			{Name: "missingKeywords", Type: "[]string", Description: "Important job keywords absent from the résumé", Required: true},
			{Name: "recommendedImprovements", Type: "[]string", Description: "Concrete edits to the résumé", Required: true},
		},
	}
}
