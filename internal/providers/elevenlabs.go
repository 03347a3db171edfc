package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"aigate-api/internal/collector"
	"aigate-api/internal/config"
	"aigate-api/internal/shared"
)

const (
	elevenLabsName         = "elevenlabs"
	elevenLabsBaseURL      = "https://api.elevenlabs.io/v1"
	elevenLabsModel        = "eleven_multilingual_v2"
	elevenLabsOutputFormat = "mp3_44100_128"
)

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// ElevenLabsTTS streams synthesized audio and assembles it through the
// bounded collector.
type ElevenLabsTTS struct {
	apiKey   string
	baseURL  string
	model    string
	voice    string
	maxChars int
	limits   collector.Limits
	client   *http.Client
}

func NewElevenLabsTTS(cfg config.ProviderConfig, limits config.LimitsConfig, client *http.Client) *ElevenLabsTTS {
	return &ElevenLabsTTS{
		apiKey:   cfg.APIKey,
		baseURL:  trimBaseURL(cfg.BaseURL, elevenLabsBaseURL),
		model:    orDefault(cfg.Model, elevenLabsModel),
		voice:    orDefault(cfg.Voice, shared.DefaultVoiceID),
		maxChars: limits.TTSMaxChars,
		limits:   collector.Limits{Timeout: limits.StreamTimeout, MaxBytes: limits.StreamMaxBytes},
		client:   client,
	}
}

func (e *ElevenLabsTTS) Info() Info {
	return Info{Provider: elevenLabsName, Capability: CapabilityTTS, Model: e.model, Voice: e.voice}
}

func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	if err := validateTTSText(text, e.maxChars); err != nil {
		return nil, err
	}
	voice := orDefault(voiceID, e.voice)

	payload, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: e.model})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s",
		e.baseURL, url.PathEscape(voice), elevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, transportError(elevenLabsName, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, classifyResponse(elevenLabsName, resp, true)
	}

	// Collect owns and closes the body from here
	audio, err := collector.Collect(ctx, elevenLabsName, collector.ReaderSource(resp.Body, shared.StreamChunkSize), e.limits)
	if err != nil {
		return nil, err
	}
	return &Audio{
		Bytes:       audio,
		Length:      len(audio),
		ContentType: orDefault(resp.Header.Get("Content-Type"), "audio/mpeg"),
	}, nil
}
