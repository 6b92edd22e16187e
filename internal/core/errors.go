package core

// errors.go defines the error taxonomy shared by every component.
//
//   - ValidationError: a malformed field or request; never partially applied
//   - ParseError: the template parser could not produce a schema
//   - CollaboratorError: the AI provider or template store failed
//
// Messages are written so that MapError can translate them into coded,
// user-facing messages.

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when a template id does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrProviderUnavailable is returned when schema generation is requested
	// but no AI provider has been configured.
	ErrProviderUnavailable = errors.New("ai provider not configured")
)

// ValidationError describes the first violated constraint of a field list or request.
type ValidationError struct {
	Index   int    // Field index, -1 for request-level errors
	Field   string // Field name (may be empty)
	Rule    string // Violated rule: name, type, order, id, rowCount, prompt, ...
	Message string // Human-readable message
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("validation failed: field %d (%q): %s", e.Index, e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// newRequestError creates a request-level validation error.
func newRequestError(rule, format string, args ...any) *ValidationError {
	return &ValidationError{Index: -1, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ParseError is returned by the template parser. Reason is always set; Err
// holds the underlying reader error when there is one.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failure of an external collaborator.
type CollaboratorError struct {
	Op  string // e.g. "ai suggest fields", "store create template"
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsCollaborator reports whether err is (or wraps) a CollaboratorError.
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
