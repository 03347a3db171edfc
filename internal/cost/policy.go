// Package cost computes credit costs from request shape. Every function is
// pure; the gate computes a cost once per request before any provider call.
package cost

import "aigate-api/internal/config"

// Operation names a fixed-cost request kind.
type Operation string

const (
	OpLLM         Operation = "llm"
	OpTTS         Operation = "tts"
	OpSTT         Operation = "stt"
	OpImage       Operation = "image"
	OpEmbedding   Operation = "embedding"
	OpVoiceAnswer Operation = "voice_answer"
)

const bytesPerUnit = 1000

type Policy struct {
	fixed          map[Operation]uint64
	convertPerFile uint64
	ratePerKB      uint64
	minimumCharge  uint64
}

func NewPolicy(p config.PricingConfig) Policy {
	return Policy{
		fixed: map[Operation]uint64{
			OpLLM:         p.LLM,
			OpTTS:         p.TTS,
			OpSTT:         p.STT,
			OpImage:       p.Image,
			OpEmbedding:   p.Embedding,
			OpVoiceAnswer: p.VoiceAnswer,
		},
		convertPerFile: p.ConvertPerFile,
		ratePerKB:      p.EmbedRatePerKB,
		minimumCharge:  p.EmbedMinimum,
	}
}

// Fixed returns the constant cost of op, zero for unknown operations.
func (p Policy) Fixed(op Operation) uint64 {
	return p.fixed[op]
}

// PerItem charges count × the per-file conversion rate.
func (p Policy) PerItem(count int) uint64 {
	if count <= 0 {
		return 0
	}
	return uint64(count) * p.convertPerFile
}

// CalculateCost is the size-scaled cost of a batch given each item's decoded
// byte length.
func (p Policy) CalculateCost(itemSizes []int) uint64 {
	total := 0
	for _, n := range itemSizes {
		total += n
	}
	return SizeScaled(total, p.ratePerKB, p.minimumCharge)
}

// SizeScaled returns max(minimum, ceil(totalBytes/1000) * ratePerKB).
func SizeScaled(totalBytes int, ratePerKB, minimum uint64) uint64 {
	if totalBytes < 0 {
		totalBytes = 0
	}
	units := uint64((totalBytes + bytesPerUnit - 1) / bytesPerUnit)
	return max(minimum, units*ratePerKB)
}
