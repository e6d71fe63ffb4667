// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Domain sentinels
// ==========================

// Sentinels returned by the crew core. Wrap them with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrInsufficientCandidates = stderrors.New("INSUFFICIENT_CANDIDATES")
	ErrAssignmentNotFound     = stderrors.New("ASSIGNMENT_NOT_FOUND")
	ErrInvalidInput           = stderrors.New("INVALID_INPUT")
	ErrUpstreamFailure        = stderrors.New("UPSTREAM_FAILURE")
	ErrDuplicateAssignment    = stderrors.New("DUPLICATE_ASSIGNMENT")
	ErrCrewNotFound           = stderrors.New("CREW_NOT_FOUND")
)

// InsufficientCandidatesError reports how many crew members were needed and how many qualified.
type InsufficientCandidatesError struct {
	Required  int
	Available int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("insufficient crew candidates: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientCandidatesError) Unwrap() error {
	return ErrInsufficientCandidates
}

// Invalid wraps ErrInvalidInput with a formatted reason.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Upstream marks a collaborator failure. Errors already marked keep their chain.
func Upstream(collaborator string, err error) error {
	if stderrors.Is(err, ErrUpstreamFailure) {
		return fmt.Errorf("%s: %w", collaborator, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstreamFailure, collaborator, err)
}

// ==========================
// 2. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInsufficientCandidates ErrorCode = "INSUFFICIENT_CANDIDATES"
	ErrCodeAssignmentNotFound     ErrorCode = "ASSIGNMENT_NOT_FOUND"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeUpstreamFailure        ErrorCode = "UPSTREAM_FAILURE"
	ErrCodeDuplicateAssignment    ErrorCode = "DUPLICATE_ASSIGNMENT"
	ErrCodeCrewNotFound           ErrorCode = "CREW_NOT_FOUND"

	ErrCodeInputParsingFailed       ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed         ErrorCode = "VALIDATION_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 3. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 4. Error Constructors
// ==========================

func NewInsufficientCandidatesError(required, available int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientCandidates,
		Message:   "Not enough available crew members for this job",
		Details:   fmt.Sprintf("required: %d, available: %d", required, available),
		Retryable: false,
		Metadata: map[string]interface{}{
			"required":  required,
			"available": available,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewAssignmentNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssignmentNotFound,
		Message:   "Crew assignment not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid crew assignment input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUpstreamFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailure,
		Message:   "Collaborator service failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewDuplicateAssignmentError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateAssignment,
		Message:   "Job already has a crew assignment",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCrewNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCrewNotFound,
		Message:   "Crew member not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Operation timed out",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// FromDomain maps an error returned by the crew core onto a StandardError.
func FromDomain(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	// Upstream marking wins over whatever the collaborator's own chain carries.
	var insufficient *InsufficientCandidatesError
	switch {
	case stderrors.Is(err, ErrUpstreamFailure):
		return NewUpstreamFailureError(err)
	case stderrors.As(err, &insufficient):
		return NewInsufficientCandidatesError(insufficient.Required, insufficient.Available)
	case stderrors.Is(err, ErrInsufficientCandidates):
		return &StandardError{
			Code:      ErrCodeInsufficientCandidates,
			Message:   "Not enough available crew members for this job",
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
		}
	case stderrors.Is(err, ErrAssignmentNotFound):
		return NewAssignmentNotFoundError(err.Error())
	case stderrors.Is(err, ErrInvalidInput):
		return NewInvalidInputError(err.Error())
	case stderrors.Is(err, ErrDuplicateAssignment):
		return NewDuplicateAssignmentError(err.Error())
	case stderrors.Is(err, ErrCrewNotFound):
		return NewCrewNotFoundError(err.Error())
	}

	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 5. Retry and category tables
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInsufficientCandidates:   "INSUFFICIENT_CANDIDATES",
	ErrCodeAssignmentNotFound:       "ASSIGNMENT_NOT_FOUND",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeUpstreamFailure:          "UPSTREAM_FAILURE",
	ErrCodeDuplicateAssignment:      "DUPLICATE_ASSIGNMENT",
	ErrCodeCrewNotFound:             "CREW_NOT_FOUND",
	ErrCodeInputParsingFailed:       "INPUT_PARSING_FAILED",
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
}

// GetRetryCount returns how many engine-level retries a code deserves. The crew core itself never retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamFailure, ErrCodeDatabaseConnectionFailed:
		return 3
	case ErrCodeQueryTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CANDIDATES") || strings.Contains(codeStr, "ASSIGNMENT"):
		return "ASSIGNMENT"
	case strings.Contains(codeStr, "CREW"):
		return "CREW"
	case strings.Contains(codeStr, "UPSTREAM") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DEPENDENCY"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
