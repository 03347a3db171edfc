// Package providers defines one interface per AI capability and the vendor
// adapters that implement them. Adapters validate their own input, talk to
// exactly one upstream API and classify every upstream failure into the
// gateway error taxonomy. Nothing above this package classifies errors.
package providers

import "context"

const (
	CapabilityLLM       = "llm"
	CapabilityTTS       = "tts"
	CapabilitySTT       = "stt"
	CapabilityImage     = "image"
	CapabilityEmbedding = "embedding"
	CapabilityExtractor = "extractor"
)

// Info describes an adapter for logs and for clients.
type Info struct {
	Provider   string `json:"provider"`
	Capability string `json:"capability"`
	Model      string `json:"model,omitempty"`
	Voice      string `json:"voice,omitempty"`
}

type GenerateOptions struct {
	SystemPrompt string
	// ContextText grounds the answer in caller supplied documents.
	ContextText    string
	MaxOutputChars int
}

type TranscribeOptions struct {
	ContentType string
}

type ImageOptions struct {
	Width          int
	Height         int
	NegativePrompt string
	// SeedImage switches the adapter to image-guided generation.
	SeedImage []byte
}

type Audio struct {
	Bytes       []byte
	Length      int
	ContentType string
}

type Embedding struct {
	Vector     []float64
	Dimensions int
}

type LLM interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Info() Info
}

type TTS interface {
	Synthesize(ctx context.Context, text, voiceID string) (*Audio, error)
	Info() Info
}

type STT interface {
	Transcribe(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error)
	Info() Info
}

// ImageGenerator returns a locator (URL) for the generated image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, opts ImageOptions) (string, error)
	Info() Info
}

type Embedder interface {
	Embed(ctx context.Context, text string) (*Embedding, error)
	Info() Info
}

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	Extract(ctx context.Context, filename string, content []byte) (string, error)
	Info() Info
}
