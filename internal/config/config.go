// Package config loads the gateway configuration once at startup. The result
// is passed by value into every constructor; nothing below cmd/ reads the
// process environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"aigate-api/internal/shared"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "AIGATE_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Identity  IdentityConfig  `koanf:"identity"`
	Ledger    LedgerConfig    `koanf:"ledger"`
	Journal   JournalConfig   `koanf:"journal"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Limits    LimitsConfig    `koanf:"limits"`
	Pricing   PricingConfig   `koanf:"pricing"`
	Providers ProvidersConfig `koanf:"providers"`
}

type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
}

type IdentityConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
	Audience  string `koanf:"audience"`
}

type LedgerConfig struct {
	URL           string        `koanf:"url"`
	ServiceSecret string        `koanf:"service_secret"`
	Timeout       time.Duration `koanf:"timeout"`
}

// JournalConfig enables the Redis usage stream when Addr is set.
type JournalConfig struct {
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	Stream        string `koanf:"stream"`
}

type MetricsConfig struct {
	APIKey string `koanf:"api_key"`
}

type LimitsConfig struct {
	StreamTimeout     time.Duration `koanf:"stream_timeout"`
	StreamMaxBytes    int           `koanf:"stream_max_bytes"`
	TTSMaxChars       int           `koanf:"tts_max_chars"`
	SeedImageMaxBytes int           `koanf:"seed_image_max_bytes"`
	// MaxOutputChars bounds the LLM answer in the chained voice flow.
	VoiceAnswerMaxChars int `koanf:"voice_answer_max_chars"`
}

// PricingConfig holds credit costs. Fixed entries are per request.
type PricingConfig struct {
	LLM            uint64 `koanf:"llm"`
	TTS            uint64 `koanf:"tts"`
	STT            uint64 `koanf:"stt"`
	Image          uint64 `koanf:"image"`
	Embedding      uint64 `koanf:"embedding"`
	VoiceAnswer    uint64 `koanf:"voice_answer"`
	ConvertPerFile uint64 `koanf:"convert_per_file"`
	EmbedRatePerKB uint64 `koanf:"embed_rate_per_kb"`
	EmbedMinimum   uint64 `koanf:"embed_minimum"`
}

type ProvidersConfig struct {
	LLM       ProviderConfig `koanf:"llm"`
	TTS       ProviderConfig `koanf:"tts"`
	STT       ProviderConfig `koanf:"stt"`
	Image     ProviderConfig `koanf:"image"`
	Embedding ProviderConfig `koanf:"embedding"`
	Extractor ProviderConfig `koanf:"extractor"`
}

// ProviderConfig selects one vendor for a capability.
type ProviderConfig struct {
	Vendor  string `koanf:"vendor"`
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	// Secondary model, used by the image adapter for image-guided generation.
	GuidedModel  string        `koanf:"guided_model"`
	Voice        string        `koanf:"voice"`
	Language     string        `koanf:"language"`
	Dimensions   int           `koanf:"dimensions"`
	Timeout      time.Duration `koanf:"timeout"`
	SystemPrompt string        `koanf:"system_prompt"`
}

// Load reads the YAML file at path, layers AIGATE_ environment variables on
// top, expands ${VAR} secrets and fills defaults.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("loading config file: %w", err)
	}

	// AIGATE_LEDGER_SERVICE__SECRET -> ledger.service_secret
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		key = strings.ReplaceAll(key, "__", "\x00")
		key = strings.ReplaceAll(key, "_", ".")
		return strings.ReplaceAll(key, "\x00", "_")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Identity.JWTSecret = expand(cfg.Identity.JWTSecret)
	cfg.Ledger.ServiceSecret = expand(cfg.Ledger.ServiceSecret)
	cfg.Journal.RedisPassword = expand(cfg.Journal.RedisPassword)
	cfg.Metrics.APIKey = expand(cfg.Metrics.APIKey)
	for _, p := range []*ProviderConfig{
		&cfg.Providers.LLM, &cfg.Providers.TTS, &cfg.Providers.STT,
		&cfg.Providers.Image, &cfg.Providers.Embedding, &cfg.Providers.Extractor,
	} {
		p.APIKey = expand(p.APIKey)
	}

	cfg.applyDefaults(k)
	return cfg, cfg.validate()
}

// expand resolves a whole-value ${VAR} placeholder.
func expand(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		return os.Getenv(v[2 : len(v)-1])
	}
	return v
}

func (c *Config) applyDefaults(k *koanf.Koanf) {
	if c.Server.Port == 0 {
		c.Server.Port = shared.DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = shared.DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = shared.DefaultWriteTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = shared.DefaultMaxBodyBytes
	}
	if c.Ledger.Timeout == 0 {
		c.Ledger.Timeout = shared.LedgerTimeout
	}
	if c.Journal.Stream == "" {
		c.Journal.Stream = shared.UsageStreamKey
	}
	if c.Limits.StreamTimeout == 0 {
		c.Limits.StreamTimeout = shared.StreamTimeout
	}
	if c.Limits.StreamMaxBytes == 0 {
		c.Limits.StreamMaxBytes = shared.StreamMaxBytes
	}
	if c.Limits.TTSMaxChars == 0 {
		c.Limits.TTSMaxChars = shared.MaxTTSCharacters
	}
	if c.Limits.SeedImageMaxBytes == 0 {
		c.Limits.SeedImageMaxBytes = shared.MaxSeedImageBytes
	}
	if c.Limits.VoiceAnswerMaxChars == 0 {
		c.Limits.VoiceAnswerMaxChars = 2000
	}
	vendors := []struct {
		p      *ProviderConfig
		vendor string
	}{
		{&c.Providers.LLM, "openai"},
		{&c.Providers.TTS, "elevenlabs"},
		{&c.Providers.STT, "openai"},
		{&c.Providers.Image, "fal"},
		{&c.Providers.Embedding, "openai"},
		{&c.Providers.Extractor, "plaintext"},
	}
	for _, v := range vendors {
		if v.p.Vendor == "" {
			v.p.Vendor = v.vendor
		}
	}
	c.Pricing.applyDefaults(k)
}

// applyDefaults fills prices the config leaves unset. An explicit 0 is kept
// so an endpoint can be made free.
func (p *PricingConfig) applyDefaults(k *koanf.Koanf) {
	defaults := []struct {
		key   string
		field *uint64
		value uint64
	}{
		{"llm", &p.LLM, 1},
		{"tts", &p.TTS, 2},
		{"stt", &p.STT, 2},
		{"image", &p.Image, 5},
		{"embedding", &p.Embedding, 1},
		{"voice_answer", &p.VoiceAnswer, 5},
		{"convert_per_file", &p.ConvertPerFile, 1},
		{"embed_rate_per_kb", &p.EmbedRatePerKB, 1},
		{"embed_minimum", &p.EmbedMinimum, 1},
	}
	for _, d := range defaults {
		if !k.Exists("pricing." + d.key) {
			*d.field = d.value
		}
	}
}

func (c *Config) validate() error {
	if c.Identity.JWTSecret == "" {
		return fmt.Errorf("identity.jwt_secret is required")
	}
	if c.Ledger.URL == "" {
		return fmt.Errorf("ledger.url is required")
	}
	if c.Ledger.ServiceSecret == "" {
		return fmt.Errorf("ledger.service_secret is required")
	}
	return nil
}
