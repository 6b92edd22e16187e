package core

import (
	"context"
	"errors"

	"github.com/JonMunkholm/DataForge/internal/logging"
)

// SchemaProvider turns a natural-language description into suggested fields.
// Implementations return the raw suggestions; the Service validates them.
type SchemaProvider interface {
	SuggestFields(ctx context.Context, prompt string) ([]FieldSuggestion, error)
}

// AIEnabled reports whether a schema provider is configured.
func (s *Service) AIEnabled() bool {
	return s.provider != nil
}

// GenerateSchema asks the AI provider for a schema. Suggestions get fresh
// ids and positional order; one invalid suggestion rejects the whole batch.
func (s *Service) GenerateSchema(ctx context.Context, prompt string) ([]Field, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	suggestions, err := s.provider.SuggestFields(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &CollaboratorError{Op: "ai provider", Err: err}
	}

	fields, err := FieldsFromSuggestions(suggestions)
	if err != nil {
		logging.FromContext(ctx).Warn("ai schema rejected", "error", err)
		return nil, err
	}
	return fields, nil
}
