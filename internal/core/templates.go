package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateMatchThreshold is the minimum score for a template to be considered a match.
const TemplateMatchThreshold = 0.7

// TemplateStore persists templates. Get and Delete return
// ErrTemplateNotFound for unknown ids.
type TemplateStore interface {
	Create(ctx context.Context, t Template) error
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id string) (Template, error)
	Delete(ctx context.Context, id string) error
}

// CreateTemplate validates and stores a named schema. The template and
// every field get fresh ids and the field order is re-sequenced.
func (s *Service) CreateTemplate(ctx context.Context, name, description string, fields []Field) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, newRequestError("name", "template name is required")
	}
	if len(fields) == 0 {
		return Template{}, newRequestError("fields", "no fields provided")
	}
	for i, f := range fields {
		if err := ValidateField(i, f); err != nil {
			return Template{}, err
		}
	}

	stored := Resequence(fields)
	for i := range stored {
		stored[i].ID = uuid.NewString()
		stored[i].Name = strings.TrimSpace(stored[i].Name)
	}

	t := Template{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Fields:      stored,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return Template{}, &CollaboratorError{Op: "template store: create", Err: err}
	}
	return t, nil
}

// ListTemplates returns every stored template. Stored fields are
// re-validated like GetTemplate; one invalid template fails the listing.
func (s *Service) ListTemplates(ctx context.Context) ([]Template, error) {
	templates, err := s.store.List(ctx)
	if err != nil {
		return nil, &CollaboratorError{Op: "template store: list", Err: err}
	}
	for i, t := range templates {
		if err := ValidateFields(t.Fields); err != nil {
			return nil, fmt.Errorf("stored template %s: %w", t.ID, err)
		}
		templates[i].Fields = SortedFields(t.Fields)
	}
	return templates, nil
}

// GetTemplate loads a template. Stored fields are re-validated before use.
func (s *Service) GetTemplate(ctx context.Context, id string) (Template, error) {
	t, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrTemplateNotFound) {
		return Template{}, fmt.Errorf("get template %s: %w", id, ErrTemplateNotFound)
	}
	if err != nil {
		return Template{}, &CollaboratorError{Op: "template store: get", Err: err}
	}
	if err := ValidateFields(t.Fields); err != nil {
		return Template{}, fmt.Errorf("stored template %s: %w", id, err)
	}
	t.Fields = SortedFields(t.Fields)
	return t, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrTemplateNotFound) {
		return fmt.Errorf("delete template %s: %w", id, ErrTemplateNotFound)
	}
	if err != nil {
		return &CollaboratorError{Op: "template store: delete", Err: err}
	}
	return nil
}

// MatchTemplates finds templates whose field names appear in headers,
// best match first.
func (s *Service) MatchTemplates(ctx context.Context, headers []string) ([]TemplateMatch, error) {
	templates, err := s.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	matches := []TemplateMatch{}
	for _, t := range templates {
		score := matchTemplateHeaders(headers, fieldNames(t.Fields))
		if score >= TemplateMatchThreshold {
			matches = append(matches, TemplateMatch{Template: t, MatchScore: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches, nil
}

// matchTemplateHeaders returns the share of template headers present in
// the given headers, ignoring case and surrounding space.
func matchTemplateHeaders(headers, templateHeaders []string) float64 {
	if len(templateHeaders) == 0 {
		return 0
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}

	matched := 0
	for _, h := range templateHeaders {
		if present[strings.ToLower(strings.TrimSpace(h))] {
			matched++
		}
	}
	return float64(matched) / float64(len(templateHeaders))
}

func fieldNames(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range SortedFields(fields) {
		out[i] = f.Name
	}
	return out
}
