package providers

import (
	"context"
	"net/http"
	"strings"

	"aigate-api/internal/config"
)

const (
	anthropicName       = "anthropic"
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicModel      = "claude-3-5-haiku-latest"
	anthropicAPIVersion = "2023-06-01"
	// max_tokens is mandatory on the messages API
	anthropicMaxTokens = 1024
)

type anthropicRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []openAIMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type AnthropicLLM struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	client       *http.Client
}

func NewAnthropicLLM(cfg config.ProviderConfig, client *http.Client) *AnthropicLLM {
	return &AnthropicLLM{
		apiKey:       cfg.APIKey,
		baseURL:      trimBaseURL(cfg.BaseURL, anthropicBaseURL),
		model:        orDefault(cfg.Model, anthropicModel),
		systemPrompt: cfg.SystemPrompt,
		client:       client,
	}
}

func (a *AnthropicLLM) Info() Info {
	return Info{Provider: anthropicName, Capability: CapabilityLLM, Model: a.model}
}

func (a *AnthropicLLM) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := validatePrompt(prompt); err != nil {
		return "", err
	}

	system, user := BuildPrompt(a.systemPrompt, prompt, opts)
	req := anthropicRequest{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  []openAIMessage{{Role: "user", Content: user}},
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, a.client, anthropicName, a.baseURL+"/messages", headers, req, &resp, false); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", emptyResult(anthropicName, "completion")
	}
	return text.String(), nil
}
