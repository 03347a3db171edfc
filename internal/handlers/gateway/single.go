package gateway

import (
	"context"
	"encoding/base64"
	"time"

	"aigate-api/internal/metrics"
	"aigate-api/internal/providers"
)

type LLMInput struct {
	Prompt         string `json:"prompt"`
	SystemPrompt   string `json:"systemPrompt,omitempty"`
	ContextText    string `json:"contextText,omitempty"`
	MaxOutputChars int    `json:"maxOutputChars,omitempty"`
}

type LLMOutput struct {
	Text         string         `json:"text"`
	ProviderInfo providers.Info `json:"providerInfo"`
}

func (h *Handler) Generate(ctx context.Context, m *Meta, in LLMInput) (*LLMOutput, error) {
	llm := h.Providers.LLM
	m.use(llm.Info())

	start := time.Now()
	text, err := llm.Generate(ctx, in.Prompt, providers.GenerateOptions{
		SystemPrompt:   in.SystemPrompt,
		ContextText:    in.ContextText,
		MaxOutputChars: in.MaxOutputChars,
	})
	observe(m.Log, llm.Info(), start, err)
	if err != nil {
		return nil, err
	}

	h.report(ctx, m)
	return &LLMOutput{Text: text, ProviderInfo: llm.Info()}, nil
}

type TTSInput struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
}

type TTSOutput struct {
	AudioBase64 string `json:"audioBase64"`
	ByteLength  int    `json:"byteLength"`
	ContentType string `json:"contentType"`
}

func (h *Handler) Synthesize(ctx context.Context, m *Meta, in TTSInput) (*TTSOutput, error) {
	audio, err := h.synthesize(ctx, m, in.Text, in.VoiceID)
	if err != nil {
		return nil, err
	}

	h.report(ctx, m)
	return &TTSOutput{
		AudioBase64: base64.StdEncoding.EncodeToString(audio.Bytes),
		ByteLength:  audio.Length,
		ContentType: audio.ContentType,
	}, nil
}

func (h *Handler) synthesize(ctx context.Context, m *Meta, text, voiceID string) (*providers.Audio, error) {
	tts := h.Providers.TTS
	m.use(tts.Info())

	start := time.Now()
	audio, err := tts.Synthesize(ctx, text, voiceID)
	observe(m.Log, tts.Info(), start, err)
	if err != nil {
		return nil, err
	}
	metrics.AudioBytes.WithLabelValues(tts.Info().Provider).Observe(float64(audio.Length))
	return audio, nil
}

type STTInput struct {
	Audio       []byte
	ContentType string
}

type STTOutput struct {
	Text         string         `json:"text"`
	ProviderInfo providers.Info `json:"providerInfo"`
}

func (h *Handler) Transcribe(ctx context.Context, m *Meta, in STTInput) (*STTOutput, error) {
	stt := h.Providers.STT
	m.use(stt.Info())

	start := time.Now()
	text, err := stt.Transcribe(ctx, in.Audio, providers.TranscribeOptions{ContentType: in.ContentType})
	observe(m.Log, stt.Info(), start, err)
	if err != nil {
		return nil, err
	}

	h.report(ctx, m)
	return &STTOutput{Text: text, ProviderInfo: stt.Info()}, nil
}

type ImageInput struct {
	Prompt         string
	Width          int
	Height         int
	NegativePrompt string
	SeedImage      []byte
}

type ImageOutput struct {
	ImageLocator string `json:"imageLocator"`
}

func (h *Handler) GenerateImage(ctx context.Context, m *Meta, in ImageInput) (*ImageOutput, error) {
	img := h.Providers.Image
	m.use(img.Info())

	start := time.Now()
	locator, err := img.Generate(ctx, in.Prompt, providers.ImageOptions{
		Width:          in.Width,
		Height:         in.Height,
		NegativePrompt: in.NegativePrompt,
		SeedImage:      in.SeedImage,
	})
	observe(m.Log, img.Info(), start, err)
	if err != nil {
		return nil, err
	}

	h.report(ctx, m)
	return &ImageOutput{ImageLocator: locator}, nil
}

type EmbeddingInput struct {
	Text string `json:"text"`
}

type EmbeddingOutput struct {
	Vector     []float64 `json:"vector"`
	Dimensions int       `json:"dimensions"`
}

func (h *Handler) Embed(ctx context.Context, m *Meta, in EmbeddingInput) (*EmbeddingOutput, error) {
	m.use(h.Providers.Embedder.Info())
	emb, err := h.embed(ctx, m, in.Text)
	if err != nil {
		return nil, err
	}

	h.report(ctx, m)
	return &EmbeddingOutput{Vector: emb.Vector, Dimensions: emb.Dimensions}, nil
}

// embed is shared with the batch flow and must not touch m beyond logging.
func (h *Handler) embed(ctx context.Context, m *Meta, text string) (*providers.Embedding, error) {
	embedder := h.Providers.Embedder
	start := time.Now()
	emb, err := embedder.Embed(ctx, text)
	observe(m.Log, embedder.Info(), start, err)
	return emb, err
}
