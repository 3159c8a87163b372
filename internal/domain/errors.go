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
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeUnavailable      = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidHostingTier    = NewDomainError(ErrCodeValidation, "invalid hosting tier")
	ErrInvalidAgentProvider  = NewDomainError(ErrCodeValidation, "invalid provider configuration")
	ErrInvalidDocumentStatus = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrInvalidJobStatus      = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrClientNotFound     = NewDomainError(ErrCodeNotFound, "client not found")
	ErrAgentNotFound      = NewDomainError(ErrCodeNotFound, "agent not found")
	ErrDocumentNotFound   = NewDomainError(ErrCodeNotFound, "document not found")
	ErrTranscriptNotFound = NewDomainError(ErrCodeNotFound, "conversation transcript not found")
	ErrAPIKeyNotFound     = NewDomainError(ErrCodeNotFound, "api key not found")
)

// Already exists errors
var (
	ErrClientAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "client already exists")
	ErrAgentAlreadyExists  = NewDomainError(ErrCodeAlreadyExists, "agent with this slug already exists")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Operation errors
var (
	ErrAgentDisabled     = NewDomainError(ErrCodeInvalidOperation, "agent is disabled")
	ErrSessionNotRunning = NewDomainError(ErrCodeNotFound, "agent session not running")
)
