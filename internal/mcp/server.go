// Package mcpserver exposes DataForge as Model Context Protocol tools so
// agents can infer schemas, generate data and manage templates.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/JonMunkholm/DataForge/internal/export"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// DefaultRowCount is used when generate_data omits rowCount.
const DefaultRowCount = 10

// Server is the MCP server for DataForge.
type Server struct {
	mcp     *server.MCPServer
	service *core.Service
}

// New creates the MCP server and registers every tool.
func New(service *core.Service) *Server {
	s := &Server{service: service}
	s.mcp = server.NewMCPServer(
		"dataforge-mcp",
		Version,
		server.WithToolCapabilities(true),
	)

	s.registerSchemaTools()
	s.registerDataTools()
	s.registerTemplateTools()
	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	slog.Info("mcp: starting stdio server")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerSchemaTools() {
	s.mcp.AddTool(mcp.NewTool("infer_type",
		mcp.WithDescription("Infer the DataForge type of a column from its name and sample values. "+
			"Types: "+typeNames()),
		mcp.WithString("name", mcp.Description("Column name"), mcp.Required()),
		mcp.WithString("values", mcp.Description("Comma-separated sample values (optional)")),
	), s.handleInferType)

	s.mcp.AddTool(mcp.NewTool("parse_template",
		mcp.WithDescription("Infer a schema from a CSV, XLS or XLSX template. The file content must be base64 encoded."),
		mcp.WithString("content", mcp.Description("Base64-encoded file content"), mcp.Required()),
		mcp.WithString("filename", mcp.Description("File name including extension, e.g. customers.csv"), mcp.Required()),
	), s.handleParseTemplate)
}

func (s *Server) registerDataTools() {
	s.mcp.AddTool(mcp.NewTool("generate_data",
		mcp.WithDescription("Generate synthetic rows for a schema and return them as JSON, CSV or XML. "+
			"Pass either fieldsJSON or templateId."),
		mcp.WithString("fieldsJSON", mcp.Description(`JSON array of fields, e.g. [{"name":"email","type":"email"}]`)),
		mcp.WithString("templateId", mcp.Description("ID of a saved template to use instead of fieldsJSON")),
		mcp.WithNumber("rowCount", mcp.Description("Number of rows, 1 to 100000 (default 10)")),
		mcp.WithString("format", mcp.Description("json, csv or xml (default json)")),
	), s.handleGenerateData)
}

func (s *Server) registerTemplateTools() {
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List saved templates with their fields"),
	), s.handleListTemplates)

	s.mcp.AddTool(mcp.NewTool("save_template",
		mcp.WithDescription("Save a schema as a named template"),
		mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Template description (optional)")),
		mcp.WithString("fieldsJSON", mcp.Description(`JSON array of fields, e.g. [{"name":"email","type":"email"}]`), mcp.Required()),
	), s.handleSaveTemplate)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleInferType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var values []string
	if raw := req.GetString("values", ""); raw != "" {
		values = strings.Split(raw, ",")
	}
	return jsonResult(map[string]core.DataType{"type": core.InferTypeFromStrings(name, values)})
}

func (s *Server) handleParseTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := base64.StdEncoding.DecodeString(req.GetString("content", ""))
	if err != nil {
		return mcp.NewToolResultError("content is not valid base64"), nil
	}

	fields, err := s.service.ParseTemplate(ctx, data, req.GetString("filename", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(fields)
}

func (s *Server) handleGenerateData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := s.resolveFields(ctx, req)
	if err != nil {
		return toolError(err), nil
	}

	format, err := export.ParseFormat(req.GetString("format", string(export.JSON)))
	if err != nil {
		return toolError(err), nil
	}

	rowCount := int(req.GetFloat("rowCount", DefaultRowCount))

	var buf bytes.Buffer
	if err := s.service.Export(ctx, fields, rowCount, format, &buf); err != nil {
		return toolError(err), nil
	}
	return textResult(buf.String()), nil
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := s.service.ListTemplates(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(templates)
}

func (s *Server) handleSaveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := parseFields(req.GetString("fieldsJSON", ""))
	if err != nil {
		return toolError(err), nil
	}

	tmpl, err := s.service.CreateTemplate(ctx, req.GetString("name", ""), req.GetString("description", ""), fields)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(tmpl)
}

// ── Helpers ────────────────────────────────────────────────

// resolveFields loads the schema from templateId or parses fieldsJSON.
func (s *Server) resolveFields(ctx context.Context, req mcp.CallToolRequest) ([]core.Field, error) {
	if id := req.GetString("templateId", ""); id != "" {
		tmpl, err := s.service.GetTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		return tmpl.Fields, nil
	}
	return parseFields(req.GetString("fieldsJSON", ""))
}

// parseFields reads field suggestions; clients do not send ids, so fields
// get fresh ids and positional order.
func parseFields(raw string) ([]core.Field, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("no fields provided")
	}
	var suggestions []core.FieldSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("invalid request body: fieldsJSON: %w", err)
	}
	return core.FieldsFromSuggestions(suggestions)
}

// toolError reports err to the client as a coded user message.
func toolError(err error) *mcp.CallToolResult {
	slog.Warn("mcp: tool error", "error", err)
	return mcp.NewToolResultError(core.FormatUserError(err) + "\n" + err.Error())
}

// textResult wraps text in a tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func typeNames() string {
	types := core.DataTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
