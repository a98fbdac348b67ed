// Package lookuperr defines the typed error kinds propagated by the Look-Up
// execution engine, grounded on original_source/backend/lookup/exceptions.py.
package lookuperr

import (
	"fmt"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// ErrorType discriminates a failed Look-Up result for API consumers.
type ErrorType string

const (
	ErrorTypeExtractionNotComplete ErrorType = "extraction_not_complete"
	ErrorTypeTemplateMissing       ErrorType = "template_missing"
	ErrorTypeContextWindowExceeded ErrorType = "context_window_exceeded"
	ErrorTypeLLMTimeout            ErrorType = "llm_timeout"
	ErrorTypeLLMError              ErrorType = "llm_error"
	ErrorTypeParseError            ErrorType = "parse_error"
	ErrorTypeDefaultProfile        ErrorType = "default_profile"
	ErrorTypeRetrievalError        ErrorType = "retrieval_error"
	ErrorTypeTemplateInvalid       ErrorType = "template_invalid"
	ErrorTypeUnknown               ErrorType = "unknown"
)

// ExtractionNotComplete is raised when the reference data loader finds one or
// more selected data sources whose extraction has not finished.
type ExtractionNotComplete struct {
	Files []string
}

func (e *ExtractionNotComplete) Error() string {
	return fmt.Sprintf("extraction not complete for files: %v", e.Files)
}

// TemplateNotFound is raised when a project has no active prompt template.
type TemplateNotFound struct {
	ProjectID string
}

func (e *TemplateNotFound) Error() string {
	return fmt.Sprintf("no active template for project %s", e.ProjectID)
}

// ContextWindowExceeded is raised when the resolved prompt's token count
// exceeds the model's available context budget.
type ContextWindowExceeded struct {
	TokenCount int
	Limit      int
	Model      string
}

func (e *ContextWindowExceeded) Error() string {
	return fmt.Sprintf("context window exceeded: %d tokens exceeds limit of %d for model %s",
		e.TokenCount, e.Limit, e.Model)
}

// LLMTimeout is raised when an LLM call exceeds its request timeout.
type LLMTimeout struct {
	Timeout string
}

func (e *LLMTimeout) Error() string {
	return fmt.Sprintf("LLM call timed out after %s", e.Timeout)
}

// LLMError wraps any other LLM-side dispatch failure.
type LLMError struct {
	Cause error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("LLM generation failed: %v", e.Cause)
}

func (e *LLMError) Unwrap() error { return e.Cause }

// ParseError is raised when the LLM response cannot be normalized into a JSON object.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse LLM response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// DefaultProfile is raised when a project has no profile marked is_default.
type DefaultProfile struct {
	ProjectID string
}

func (e *DefaultProfile) Error() string {
	return fmt.Sprintf("no default profile configured for project %s", e.ProjectID)
}

// RetrievalError wraps a RAG retrieval failure; converted to LLMError at the
// Executor boundary per spec.
type RetrievalError struct {
	Cause error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

// TypeOf maps an error produced by the core to its API error_type discriminator.
func TypeOf(err error) ErrorType {
	switch err.(type) {
	case *ExtractionNotComplete:
		return ErrorTypeExtractionNotComplete
	case *TemplateNotFound:
		return ErrorTypeTemplateMissing
	case *ContextWindowExceeded:
		return ErrorTypeContextWindowExceeded
	case *LLMTimeout:
		return ErrorTypeLLMTimeout
	case *LLMError:
		return ErrorTypeLLMError
	case *ParseError:
		return ErrorTypeParseError
	case *DefaultProfile:
		return ErrorTypeDefaultProfile
	case *RetrievalError:
		return ErrorTypeLLMError
	case *models.SyntaxError:
		return ErrorTypeTemplateInvalid
	default:
		return ErrorTypeUnknown
	}
}
