package providers

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"aigate-api/internal/config"
	"aigate-api/internal/shared"
)

const (
	openAIName            = "openai"
	openAIBaseURL         = "https://api.openai.com/v1"
	openAIChatModel       = "gpt-4o-mini"
	openAIEmbedModel      = "text-embedding-3-small"
	openAITranscribeModel = "whisper-1"
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// OpenAILLM talks to any OpenAI compatible chat completions endpoint.
type OpenAILLM struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	client       *http.Client
}

func NewOpenAILLM(cfg config.ProviderConfig, client *http.Client) *OpenAILLM {
	return &OpenAILLM{
		apiKey:       cfg.APIKey,
		baseURL:      trimBaseURL(cfg.BaseURL, openAIBaseURL),
		model:        orDefault(cfg.Model, openAIChatModel),
		systemPrompt: cfg.SystemPrompt,
		client:       client,
	}
}

func (o *OpenAILLM) Info() Info {
	return Info{Provider: openAIName, Capability: CapabilityLLM, Model: o.model}
}

func (o *OpenAILLM) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := validatePrompt(prompt); err != nil {
		return "", err
	}

	system, user := BuildPrompt(o.systemPrompt, prompt, opts)
	req := openAIChatRequest{Model: o.model}
	if system != "" {
		req.Messages = append(req.Messages, openAIMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, openAIMessage{Role: "user", Content: user})

	var resp openAIChatResponse
	if err := postJSON(ctx, o.client, openAIName, o.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + o.apiKey}, req, &resp, false); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", emptyResult(openAIName, "completion")
	}
	return resp.Choices[0].Message.Content, nil
}

type openAIEmbeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// OpenAIEmbedder reports the configured model dimension with every vector
// and rejects upstream vectors of any other length.
type OpenAIEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

func NewOpenAIEmbedder(cfg config.ProviderConfig, client *http.Client) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		apiKey:     cfg.APIKey,
		baseURL:    trimBaseURL(cfg.BaseURL, openAIBaseURL),
		model:      orDefault(cfg.Model, openAIEmbedModel),
		dimensions: cfg.Dimensions,
		client:     client,
	}
}

func (o *OpenAIEmbedder) Info() Info {
	return Info{Provider: openAIName, Capability: CapabilityEmbedding, Model: o.model}
}

func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) (*Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewValidationError("text is required", "text")
	}

	var resp openAIEmbeddingResponse
	err := postJSON(ctx, o.client, openAIName, o.baseURL+"/embeddings",
		map[string]string{"Authorization": "Bearer " + o.apiKey},
		openAIEmbeddingRequest{Model: o.model, Input: text, Dimensions: o.dimensions}, &resp, false)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, emptyResult(openAIName, "embedding")
	}

	vector := resp.Data[0].Embedding
	if o.dimensions > 0 && len(vector) != o.dimensions {
		return nil, malformed(openAIName,
			fmt.Sprintf("embedding has %d dimensions, expected %d", len(vector), o.dimensions), nil)
	}
	return &Embedding{Vector: vector, Dimensions: len(vector)}, nil
}

type openAITranscription struct {
	Text string `json:"text"`
}

// OpenAISTT uploads audio to the transcriptions endpoint as multipart form
// data.
type OpenAISTT struct {
	apiKey   string
	baseURL  string
	model    string
	language string
	client   *http.Client
}

func NewOpenAISTT(cfg config.ProviderConfig, client *http.Client) *OpenAISTT {
	return &OpenAISTT{
		apiKey:   cfg.APIKey,
		baseURL:  trimBaseURL(cfg.BaseURL, openAIBaseURL),
		model:    orDefault(cfg.Model, openAITranscribeModel),
		language: cfg.Language,
		client:   client,
	}
}

func (o *OpenAISTT) Info() Info {
	return Info{Provider: openAIName, Capability: CapabilitySTT, Model: o.model}
}

func (o *OpenAISTT) Transcribe(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error) {
	if len(audio) == 0 {
		return "", validationAudio()
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("model", o.model); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if o.language != "" {
		if err := w.WriteField("language", o.language); err != nil {
			return "", fmt.Errorf("writing form: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", "audio"+audioExtension(opts.ContentType))
	if err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	var resp openAITranscription
	if err := doJSON(o.client, openAIName, req, &resp, false); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", emptyResult(openAIName, "transcript")
	}
	return resp.Text, nil
}

// audioExtension picks a filename suffix the upstream uses to sniff format.
func audioExtension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".mp3"
	}
	switch mediaType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	default:
		return ".mp3"
	}
}
