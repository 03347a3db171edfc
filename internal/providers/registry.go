package providers

import (
	"context"
	"fmt"
	"net/http"

	"aigate-api/internal/config"
	"aigate-api/internal/shared"
)

// Registry holds the one adapter selected per capability at startup.
type Registry struct {
	LLM       LLM
	TTS       TTS
	STT       STT
	Image     ImageGenerator
	Embedder  Embedder
	Extractor Extractor
}

func httpClient(cfg config.ProviderConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = shared.DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func unknownVendor(capability, vendor string) error {
	return fmt.Errorf("unknown %s vendor %q", capability, vendor)
}

// NewRegistry builds every adapter from configuration. Unknown vendors fail
// startup.
func NewRegistry(ctx context.Context, cfg config.Config) (*Registry, error) {
	var (
		r   Registry
		err error
	)
	p := cfg.Providers

	switch p.LLM.Vendor {
	case openAIName:
		r.LLM = NewOpenAILLM(p.LLM, httpClient(p.LLM))
	case anthropicName:
		r.LLM = NewAnthropicLLM(p.LLM, httpClient(p.LLM))
	default:
		return nil, unknownVendor(CapabilityLLM, p.LLM.Vendor)
	}

	switch p.TTS.Vendor {
	case elevenLabsName:
		r.TTS = NewElevenLabsTTS(p.TTS, cfg.Limits, httpClient(p.TTS))
	case googleName:
		if r.TTS, err = NewGoogleTTS(ctx, p.TTS, cfg.Limits); err != nil {
			return nil, err
		}
	default:
		return nil, unknownVendor(CapabilityTTS, p.TTS.Vendor)
	}

	switch p.STT.Vendor {
	case openAIName:
		r.STT = NewOpenAISTT(p.STT, httpClient(p.STT))
	case googleName:
		if r.STT, err = NewGoogleSTT(ctx, p.STT); err != nil {
			return nil, err
		}
	default:
		return nil, unknownVendor(CapabilitySTT, p.STT.Vendor)
	}

	switch p.Image.Vendor {
	case falName:
		r.Image = NewFalImage(p.Image, cfg.Limits, httpClient(p.Image))
	default:
		return nil, unknownVendor(CapabilityImage, p.Image.Vendor)
	}

	switch p.Embedding.Vendor {
	case openAIName:
		r.Embedder = NewOpenAIEmbedder(p.Embedding, httpClient(p.Embedding))
	default:
		return nil, unknownVendor(CapabilityEmbedding, p.Embedding.Vendor)
	}

	switch p.Extractor.Vendor {
	case plainTextName:
		r.Extractor = NewPlainTextExtractor()
	default:
		return nil, unknownVendor(CapabilityExtractor, p.Extractor.Vendor)
	}

	return &r, nil
}

// Infos lists every configured adapter for the discovery endpoint.
func (r *Registry) Infos() []Info {
	return []Info{
		r.LLM.Info(),
		r.TTS.Info(),
		r.STT.Info(),
		r.Image.Info(),
		r.Embedder.Info(),
		r.Extractor.Info(),
	}
}
