package providers

import (
	"context"
	"testing"

	"aigate-api/internal/config"
	"aigate-api/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryConfig() config.Config {
	return config.Config{
		Limits: testLimits(),
		Providers: config.ProvidersConfig{
			LLM:       config.ProviderConfig{Vendor: "anthropic"},
			TTS:       config.ProviderConfig{Vendor: "elevenlabs"},
			STT:       config.ProviderConfig{Vendor: "openai"},
			Image:     config.ProviderConfig{Vendor: "fal"},
			Embedding: config.ProviderConfig{Vendor: "openai", Model: "text-embedding-3-large"},
			Extractor: config.ProviderConfig{Vendor: "plaintext"},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(context.Background(), registryConfig())
	require.NoError(t, err)

	infos := r.Infos()
	require.Len(t, infos, 6)
	assert.Equal(t, Info{Provider: "anthropic", Capability: CapabilityLLM, Model: anthropicModel}, infos[0])
	assert.Equal(t, shared.DefaultVoiceID, infos[1].Voice)
	assert.Equal(t, "text-embedding-3-large", infos[4].Model)
	assert.Equal(t, CapabilityExtractor, infos[5].Capability)
}

func TestNewRegistryGoogleVendors(t *testing.T) {
	cfg := registryConfig()
	cfg.Providers.TTS = config.ProviderConfig{Vendor: "google", APIKey: "k"}
	cfg.Providers.STT = config.ProviderConfig{Vendor: "google", APIKey: "k"}

	r, err := NewRegistry(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, googleName, r.TTS.Info().Provider)
	assert.Equal(t, googleName, r.STT.Info().Provider)
}

func TestNewRegistryUnknownVendor(t *testing.T) {
	cfg := registryConfig()
	cfg.Providers.Image.Vendor = "midjourney"

	_, err := NewRegistry(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown image vendor "midjourney"`)
}
