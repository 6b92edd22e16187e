package core

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/DataForge/internal/logging"
)

// TableEncoder serializes a generated table. internal/export provides the
// JSON, CSV and XML encoders.
type TableEncoder interface {
	Encode(w io.Writer, t *Table) error
}

// Service is the entry point used by every frontend (HTTP, CLI, MCP). It
// validates all external input before it reaches the parser, the generator
// or a collaborator.
type Service struct {
	parser    *Parser
	generator *Generator
	limiter   *GenerationLimiter
	store     TemplateStore
	provider  SchemaProvider
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithParser replaces the default parser.
func WithParser(p *Parser) ServiceOption {
	return func(s *Service) { s.parser = p }
}

// WithGenerator replaces the default generator.
func WithGenerator(g *Generator) ServiceOption {
	return func(s *Service) { s.generator = g }
}

// WithLimiter replaces the default generation limiter.
func WithLimiter(l *GenerationLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithProvider enables AI schema generation.
func WithProvider(p SchemaProvider) ServiceOption {
	return func(s *Service) { s.provider = p }
}

// NewService creates a Service backed by the given template store.
func NewService(store TemplateStore, opts ...ServiceOption) *Service {
	s := &Service{
		parser:    NewParser(DefaultMaxFileSize),
		generator: NewGenerator(),
		limiter:   NewGenerationLimiter(0, 0),
		store:     store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generator returns the generator, e.g. to swap its dataset.
func (s *Service) Generator() *Generator {
	return s.generator
}

// LimiterStatus returns the generation limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for in-flight large generations to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ParseTemplate infers a schema from an uploaded CSV or Excel file.
func (s *Service) ParseTemplate(ctx context.Context, data []byte, filename string) ([]Field, error) {
	fields, err := s.parser.Parse(data, filename)
	if err != nil {
		logging.FromContext(ctx).Debug("template rejected", "file", filename, "error", err)
		return nil, err
	}
	logging.FromContext(ctx).Info("template parsed", "file", filename, "fields", len(fields))
	return fields, nil
}

// SummarizeTemplate returns the headers and data row count of a template.
func (s *Service) SummarizeTemplate(ctx context.Context, data []byte, filename string) (*TemplateSummary, error) {
	return s.parser.Headers(data, filename)
}

// Generate produces rowCount rows. Tables at or above the parallel
// threshold hold a limiter slot while they are generated.
func (s *Service) Generate(ctx context.Context, fields []Field, rowCount int) (*Table, error) {
	if rowCount < s.generator.ParallelThreshold() {
		return s.generator.GenerateTable(ctx, fields, rowCount)
	}

	var table *Table
	err := s.limiter.Do(ctx, func() error {
		var err error
		table, err = s.generator.GenerateTable(ctx, fields, rowCount)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("large table generated", "rows", rowCount, "fields", len(fields))
	return table, nil
}

// Preview produces at most PreviewRowLimit rows.
func (s *Service) Preview(ctx context.Context, fields []Field, rowCount int) (*Table, error) {
	return s.generator.Preview(ctx, fields, rowCount)
}

// Export generates a table and writes it with enc.
func (s *Service) Export(ctx context.Context, fields []Field, rowCount int, enc TableEncoder, w io.Writer) error {
	table, err := s.Generate(ctx, fields, rowCount)
	if err != nil {
		return err
	}
	if err := enc.Encode(w, table); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return nil
}
