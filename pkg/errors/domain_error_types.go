package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates malformed input
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainInvariantError indicates a graph state that breaks a structural rule
	DomainInvariantError DomainErrorType = "INVARIANT_ERROR"

	// DomainNotFoundError indicates a reference to a missing node or edge
	DomainNotFoundError DomainErrorType = "NOT_FOUND"
)

// DomainError is a rule violation detected inside the domain layer
type DomainError struct {
	Type    DomainErrorType        `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithDetail returns a copy of the error carrying an extra detail. Shared
// sentinel errors are never modified.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// Is matches on type and code so detailed copies still match their sentinel
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// StatusCode maps the error type to an HTTP status
func (e *DomainError) StatusCode() int {
	switch e.Type {
	case DomainValidationError:
		return http.StatusBadRequest
	case DomainInvariantError:
		return http.StatusUnprocessableEntity
	case DomainNotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Graph rule violations
var (
	ErrDuplicateNodeID = NewDomainError(
		DomainInvariantError,
		"DUPLICATE_NODE_ID",
		"Two nodes share the same id",
	)

	ErrDuplicateEdgeID = NewDomainError(
		DomainInvariantError,
		"DUPLICATE_EDGE_ID",
		"Two edges share the same id",
	)

	ErrIDOutOfRange = NewDomainError(
		DomainInvariantError,
		"ID_OUT_OF_RANGE",
		"An id carries a numeric suffix beyond the supported range",
	)

	ErrDanglingEdge = NewDomainError(
		DomainInvariantError,
		"DANGLING_EDGE",
		"An edge references a node that does not exist",
	)

	ErrDuplicateConnection = NewDomainError(
		DomainInvariantError,
		"DUPLICATE_CONNECTION",
		"These nodes are already connected",
	)

	ErrSelfConnection = NewDomainError(
		DomainInvariantError,
		"SELF_CONNECTION",
		"A node cannot be connected to itself",
	)

	ErrGraphLimitExceeded = NewDomainError(
		DomainInvariantError,
		"GRAPH_LIMIT_EXCEEDED",
		"The map holds more elements than allowed",
	)

	ErrInvalidNodePosition = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_POSITION",
		"Node position coordinates are invalid",
	)

	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested node does not exist",
	)

	ErrEdgeNotFound = NewDomainError(
		DomainNotFoundError,
		"EDGE_NOT_FOUND",
		"The requested edge does not exist",
	)
)

// ValidationErrors aggregates multiple rule violations
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a field validation error
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// Is reports whether any aggregated error matches target
func (v *ValidationErrors) Is(target error) bool {
	for _, err := range v.Errors {
		if err.Is(target) {
			return true
		}
	}
	return false
}

// ToMap converts validation errors to a map for JSON serialization
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = strings.ToLower(err.Code)
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}

// ErrorOrNil returns nil when the collection is empty so callers can
// return it directly
func (v *ValidationErrors) ErrorOrNil() error {
	if v == nil || !v.HasErrors() {
		return nil
	}
	return v
}
