package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"blank field name", ValidateField(0, Field{ID: "x", Type: TypeString}), "VAL001"},
		{"unknown type", ValidateField(0, Field{ID: "x", Name: "a", Type: "integer"}), "VAL002"},
		{"negative order", ValidateField(0, Field{ID: "x", Name: "a", Type: TypeString, Order: -1}), "VAL003"},
		{"duplicate id", ValidateFields([]Field{{ID: "x", Name: "a", Type: TypeString}, {ID: "x", Name: "b", Type: TypeString}}), "VAL004"},
		{"row count", ValidateRowCount(0, 0), "VAL005"},
		{"short prompt", ValidatePrompt("hi"), "VAL006"},
		{"file too large", parseErrorf("file too large: 11 bytes exceeds the 10 byte limit"), "FILE001"},
		{"ragged csv", &ParseError{Reason: "invalid csv", Err: errors.New("wrong number of fields")}, "FILE002"},
		{"bad workbook", &ParseError{Reason: "invalid spreadsheet"}, "FILE003"},
		{"empty file", parseErrorf("file is empty"), "FILE005"},
		{"extension", parseErrorf("file has no extension"), "FILE006"},
		{"unsupported", parseErrorf("unsupported file format %q", ".pdf"), "FILE007"},
		{"no columns", parseErrorf("no valid columns"), "FILE008"},
		{"no rows", parseErrorf("no data rows"), "FILE009"},
		{"busy", fmt.Errorf("generate: %w", ErrTooManyGenerations), "GEN001"},
		{"template not found", fmt.Errorf("get template %s: %w", "abc", ErrTemplateNotFound), "TPL001"},
		{"store failure", &CollaboratorError{Op: "template store: list", Err: errors.New("connection refused")}, "TPL002"},
		{"no provider", ErrProviderUnavailable, "AI001"},
		{"bad ai json", &CollaboratorError{Op: "ai provider", Err: errors.New("invalid response from ai: missing fields")}, "AI002"},
		{"ai failure", &CollaboratorError{Op: "ai provider", Err: errors.New("status 500")}, "AI003"},
		{"cancelled", context.Canceled, "UPL004"},
		{"deadline", fmt.Errorf("generate table: %w", context.DeadlineExceeded), "UPL005"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("INVALID CSV: bare quote"), "FILE002"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError(%v) code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(parseErrorf("no data rows"))
	want := "The file only contains headers (Code: FILE009). Add at least one sample row so column types can be detected"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrTemplateNotFound, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := fmt.Errorf("delete: %w", ErrTemplateNotFound)
	userErr := NewUserError(techErr)
	if userErr.Error() != "The template does not exist" {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	if !errors.Is(userErr, ErrTemplateNotFound) {
		t.Error("Unwrap() should expose the original error")
	}
}
