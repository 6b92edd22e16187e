// # Error Codes Reference
//
// This file maps technical errors to user-facing messages with a code that
// users can quote when asking for help.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Field name missing
//	         Patterns: "field name is required"
//	VAL002 - Unknown data type
//	         Patterns: "invalid data type"
//	VAL003 - Negative position
//	         Patterns: "must be non-negative"
//	VAL004 - Field id missing or duplicated
//	         Patterns: "field id"
//	VAL005 - Row count out of range
//	         Patterns: "row count must be between"
//	VAL006 - Prompt too short
//	         Patterns: "prompt must be at least"
//	VAL007 - Empty field list
//	         Patterns: "no fields provided"
//	VAL008 - Unknown field id
//	         Patterns: "field not found"
//	VAL009 - Malformed request body
//	         Patterns: "invalid request body"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid CSV             Patterns: "invalid csv"
//	FILE003 - Invalid spreadsheet     Patterns: "invalid spreadsheet"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "file is empty"
//	FILE006 - Missing extension       Patterns: "file has no extension"
//	FILE007 - Unsupported format      Patterns: "unsupported file format"
//	FILE008 - No columns              Patterns: "no valid columns"
//	FILE009 - No data rows            Patterns: "no data rows"
//
// # Generation Errors (GEN001-GEN099)
//
//	GEN001 - System busy              Patterns: "too many concurrent generations"
//	GEN002 - Unknown export format    Patterns: "unsupported export format"
//
// # Template Errors (TPL001-TPL099)
//
//	TPL001 - Template not found       Patterns: "template not found"
//	TPL002 - Storage failure          Patterns: "template store"
//
// # AI Errors (AI001-AI099)
//
//	AI001 - Provider not configured   Patterns: "ai provider not configured"
//	AI002 - Unusable AI response      Patterns: "invalid response from ai"
//	AI003 - Provider failure          Patterns: "ai provider"
//
// # Request Errors (UPL004-UPL005, RATE001)
//
//	UPL004 - Request cancelled        Patterns: "context canceled"
//	UPL005 - Request timeout          Patterns: "context deadline exceeded"
//	RATE001 - Rate limited            Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Returned when nothing matches. The technical error is in the server log.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: the first pattern contained in the lower-cased
// error text wins.
var errorPatterns = []errorPattern{
	// Validation (VAL)
	{"field name is required", UserMessage{"A field has no name", "Give every field a name", "VAL001"}},
	{"invalid data type", UserMessage{"A field has an unknown data type", "Pick one of the listed data types", "VAL002"}},
	{"must be non-negative", UserMessage{"A field position is negative", "Use positions starting at 0", "VAL003"}},
	{"field id", UserMessage{"Field identifiers are missing or repeated", "Reload the schema and try again", "VAL004"}},
	{"row count must be between", UserMessage{"Row count is out of range", "Request between 1 and 100,000 rows", "VAL005"}},
	{"prompt must be at least", UserMessage{"The description is too short", "Describe the dataset in at least 10 characters", "VAL006"}},
	{"no fields provided", UserMessage{"The schema has no fields", "Add at least one field", "VAL007"}},
	{"field not found", UserMessage{"The field no longer exists", "Reload the schema and try again", "VAL008"}},
	{"invalid request body", UserMessage{"The request could not be read", "Send a valid JSON body", "VAL009"}},

	// Files (FILE)
	{"file too large", UserMessage{"File exceeds the maximum size limit", "Upload a smaller template (a few rows are enough)", "FILE001"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure the file is comma-separated with the same number of columns on every row", "FILE002"}},
	{"invalid spreadsheet", UserMessage{"The spreadsheet could not be read", "Re-save the file as .xlsx or export it as CSV", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a template file to upload", "FILE004"}},
	{"file is empty", UserMessage{"The uploaded file is empty", "Upload a file with a header row and at least one data row", "FILE005"}},
	{"file has no extension", UserMessage{"The file type could not be determined", "Name the file with a .csv, .xls or .xlsx extension", "FILE006"}},
	{"unsupported file format", UserMessage{"This file format is not supported", "Upload a .csv, .xls or .xlsx file", "FILE007"}},
	{"no valid columns", UserMessage{"No columns were found in the file", "Make sure the first row contains column headers", "FILE008"}},
	{"no data rows", UserMessage{"The file only contains headers", "Add at least one sample row so column types can be detected", "FILE009"}},

	// Generation (GEN)
	{"too many concurrent generations", UserMessage{"The system is busy generating other datasets", "Please wait a moment and try again", "GEN001"}},
	{"unsupported export format", UserMessage{"This export format is not supported", "Choose JSON, CSV or XML", "GEN002"}},

	// Templates (TPL)
	{"template not found", UserMessage{"The template does not exist", "It may have been deleted. Refresh the template list", "TPL001"}},
	{"template store", UserMessage{"Templates are temporarily unavailable", "Please try again in a few moments", "TPL002"}},

	// AI (AI)
	{"ai provider not configured", UserMessage{"AI schema generation is not enabled", "Build the schema manually or upload a template", "AI001"}},
	{"invalid response from ai", UserMessage{"The AI returned an unusable schema", "Rephrase the description and try again", "AI002"}},
	{"ai provider", UserMessage{"The AI service could not generate a schema", "Please try again in a few moments", "AI003"}},

	// Request lifecycle
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "UPL004"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Generate fewer rows or try again", "UPL005"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000; a nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
