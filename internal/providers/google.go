package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"aigate-api/internal/collector"
	"aigate-api/internal/config"

	"google.golang.org/api/option"
	"google.golang.org/api/speech/v1"
	"google.golang.org/api/texttospeech/v1"
)

const (
	googleName     = "google"
	googleVoice    = "en-US-Neural2-C"
	googleLanguage = "en-US"
)

func googleOptions(cfg config.ProviderConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	return opts
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// GoogleTTS uses Cloud Text-to-Speech. The API answers in one response, which
// still goes through the collector so the same size ceiling applies.
type GoogleTTS struct {
	svc      *texttospeech.Service
	voice    string
	language string
	timeout  time.Duration
	maxChars int
	limits   collector.Limits
}

func NewGoogleTTS(ctx context.Context, cfg config.ProviderConfig, limits config.LimitsConfig) (*GoogleTTS, error) {
	svc, err := texttospeech.NewService(ctx, googleOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &GoogleTTS{
		svc:      svc,
		voice:    orDefault(cfg.Voice, googleVoice),
		language: orDefault(cfg.Language, googleLanguage),
		timeout:  cfg.Timeout,
		maxChars: limits.TTSMaxChars,
		limits:   collector.Limits{Timeout: limits.StreamTimeout, MaxBytes: limits.StreamMaxBytes},
	}, nil
}

func (g *GoogleTTS) Info() Info {
	return Info{Provider: googleName, Capability: CapabilityTTS, Voice: g.voice}
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	if err := validateTTSText(text, g.maxChars); err != nil {
		return nil, err
	}
	voice := orDefault(voiceID, g.voice)

	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input:       &texttospeech.SynthesisInput{Text: text},
		Voice:       &texttospeech.VoiceSelectionParams{Name: voice, LanguageCode: voiceLanguage(voice, g.language)},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}).Context(callCtx).Do()
	if err != nil {
		return nil, classifyGoogle(googleName, err, true)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, malformed(googleName, "audio content is not base64", err)
	}
	audio, err := collector.Collect(ctx, googleName, collector.BytesSource(raw), g.limits)
	if err != nil {
		return nil, err
	}
	return &Audio{Bytes: audio, Length: len(audio), ContentType: "audio/mpeg"}, nil
}

// voiceLanguage derives "en-US" from "en-US-Neural2-C".
func voiceLanguage(voice, fallback string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) == 3 {
		return parts[0] + "-" + parts[1]
	}
	return fallback
}

// GoogleSTT uses Cloud Speech-to-Text synchronous recognition.
type GoogleSTT struct {
	svc      *speech.Service
	model    string
	language string
	timeout  time.Duration
}

func NewGoogleSTT(ctx context.Context, cfg config.ProviderConfig) (*GoogleSTT, error) {
	svc, err := speech.NewService(ctx, googleOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSTT{
		svc:      svc,
		model:    cfg.Model,
		language: orDefault(cfg.Language, googleLanguage),
		timeout:  cfg.Timeout,
	}, nil
}

func (g *GoogleSTT) Info() Info {
	return Info{Provider: googleName, Capability: CapabilitySTT, Model: g.model}
}

func (g *GoogleSTT) Transcribe(ctx context.Context, audio []byte, opts TranscribeOptions) (string, error) {
	if len(audio) == 0 {
		return "", validationAudio()
	}

	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Speech.Recognize(&speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			LanguageCode: g.language,
			Encoding:     googleEncoding(opts.ContentType),
			Model:        g.model,
		},
		Audio: &speech.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	}).Context(callCtx).Do()
	if err != nil {
		return "", classifyGoogle(googleName, err, false)
	}

	var transcript []string
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(result.Alternatives[0].Transcript); t != "" {
			transcript = append(transcript, t)
		}
	}
	if len(transcript) == 0 {
		return "", emptyResult(googleName, "transcript")
	}
	return strings.Join(transcript, " "), nil
}

// googleEncoding leaves the encoding unspecified for containers the API
// detects from their header.
func googleEncoding(contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "audio/flac", "audio/x-flac":
		return "FLAC"
	case "audio/ogg":
		return "OGG_OPUS"
	case "audio/webm":
		return "WEBM_OPUS"
	case "audio/mpeg", "audio/mp3":
		return "MP3"
	default:
		return ""
	}
}
