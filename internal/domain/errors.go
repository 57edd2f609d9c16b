package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfig        = "CONFIG_ERROR"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyMessage = NewDomainError(ErrCodeValidation, "message is required")
	ErrInvalidEmail = NewDomainError(ErrCodeValidation, "a valid email is required")
)

// Configuration errors. Missing credentials for a provider are reported
// distinctly from a downstream call failure so operators can tell
// misconfiguration apart from an outage.
var (
	ErrEmbeddingNotConfigured = NewDomainError(ErrCodeConfig, "embedding provider not configured")
	ErrVectorNotConfigured    = NewDomainError(ErrCodeConfig, "vector index not configured")
	ErrChatNotConfigured      = NewDomainError(ErrCodeConfig, "chat provider not configured")
	ErrMailerNotConfigured    = NewDomainError(ErrCodeConfig, "email provider not configured")
)

// Upstream errors
var (
	ErrEmbeddingFailed  = NewDomainError(ErrCodeUpstream, "embedding request failed")
	ErrSearchFailed     = NewDomainError(ErrCodeUpstream, "vector search failed")
	ErrGenerationFailed = NewDomainError(ErrCodeUpstream, "answer generation failed")
	ErrMailerFailed     = NewDomainError(ErrCodeUpstream, "email provider request failed")
)
