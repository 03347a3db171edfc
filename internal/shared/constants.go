package shared

import "time"

// HTTP Server Configuration
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultShutdownTimeout = 2 * time.Minute
	DefaultHTTPTimeout     = 180 * time.Second
	DefaultMaxBodyBytes    = 64 << 20
)

// Capability limits
const (
	MaxTTSCharacters    = 5000
	MaxSeedImageBytes   = 10 << 20
	ImageGuideStrength  = 0.75
	DefaultImageWidth   = 1024
	DefaultImageHeight  = 1024
	DefaultVoiceID      = "21m00Tcm4TlvDq8ikWAM"
	UpstreamErrBodyRead = 64 << 10
)

// Stream collection limits
const (
	StreamTimeout   = 30 * time.Second
	StreamMaxBytes  = 50 << 20
	StreamChunkSize = 32 << 10
)

// Ledger Configuration
const (
	LedgerTimeout       = 10 * time.Second
	ServiceSecretHeader = "X-Service-Secret"
	UsageStreamKey      = "aigate:usage"
)

// Request Tracking
const (
	RequestIDHeader   = "X-Request-Id"
	RequestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	RequestIDLength   = 28
)

// Endpoint labels used for logging, metrics and the usage journal.
var ENDPOINTS = struct {
	LLM         string
	TTS         string
	STT         string
	IMAGE       string
	EMBEDDING   string
	VOICEANSWER string
	CONVERT     string
	EMBEDFILES  string
}{
	LLM:         "llm",
	TTS:         "tts",
	STT:         "stt",
	IMAGE:       "image",
	EMBEDDING:   "embedding",
	VOICEANSWER: "voice_answer",
	CONVERT:     "files_convert",
	EMBEDFILES:  "files_embed",
}

// Batch limits
const (
	MaxBatchFiles = 50
	// BatchFilesKey holds decoded batch files on the echo context once the
	// credit gate has parsed them.
	BatchFilesKey = "batch_files"
)
