// Package ai implements core.SchemaProvider on top of an OpenAI-compatible
// chat completion API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/DataForge/internal/core"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// errInvalidResponse prefixes every unusable model reply.
var errInvalidResponse = errors.New("invalid response from ai")

const systemPrompt = `You are a data schema expert. Given a user's description of a dataset, generate an appropriate schema with field names and data types.

Available data types: string, number, date, boolean, email, phone, address, url, uuid, currency

Respond ONLY with valid JSON in this exact format (no markdown, no code blocks):
{
  "fields": [
    { "name": "field_name", "type": "data_type", "order": 0 },
    { "name": "field_name2", "type": "data_type2", "order": 1 }
  ]
}

Be intelligent about field types based on context. For example:
- Names should be "string"
- Ages should be "number"
- Birth dates should be "date"
- Email addresses should be "email"
- Phone numbers should be "phone"
- Prices/amounts should be "currency"
- True/false values should be "boolean"`

// Config configures the provider.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // empty means the OpenAI API
	Timeout time.Duration
}

// OpenAIProvider asks a chat model for a schema. It does not retry.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider. The API key is required.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, core.ErrProviderUnavailable
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// SuggestFields returns the model's raw field suggestions. Validation is
// left to the caller.
func (p *OpenAIProvider) SuggestFields(ctx context.Context, prompt string) ([]core.FieldSuggestion, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "User request: " + prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", errInvalidResponse)
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

// parseSuggestions decodes {"fields": [...]}, tolerating a markdown fence.
func parseSuggestions(content string) ([]core.FieldSuggestion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var result struct {
		Fields []core.FieldSuggestion `json:"fields"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidResponse, err)
	}
	if len(result.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", errInvalidResponse)
	}
	return result.Fields, nil
}
