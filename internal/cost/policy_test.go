package cost

import (
	"testing"

	"aigate-api/internal/config"

	"github.com/stretchr/testify/assert"
)

func testPolicy() Policy {
	return NewPolicy(config.PricingConfig{
		LLM: 1, TTS: 2, STT: 2, Image: 5, Embedding: 1, VoiceAnswer: 5,
		ConvertPerFile: 3, EmbedRatePerKB: 2, EmbedMinimum: 4,
	})
}

func TestFixed(t *testing.T) {
	p := testPolicy()
	assert.Equal(t, uint64(5), p.Fixed(OpImage))
	assert.Equal(t, uint64(5), p.Fixed(OpVoiceAnswer))
	assert.Equal(t, uint64(0), p.Fixed(Operation("unknown")))
}

func TestEmptyBatchReturnsFloor(t *testing.T) {
	p := testPolicy()
	assert.Equal(t, uint64(4), p.CalculateCost(nil))
	assert.Equal(t, uint64(4), p.CalculateCost([]int{}))
}

func TestSizeScaledRoundsUp(t *testing.T) {
	assert.Equal(t, uint64(0), SizeScaled(0, 2, 0))
	assert.Equal(t, uint64(2), SizeScaled(1, 2, 0))
	assert.Equal(t, uint64(2), SizeScaled(1000, 2, 0))
	assert.Equal(t, uint64(4), SizeScaled(1001, 2, 0))
	assert.Equal(t, uint64(10), SizeScaled(1001, 2, 10))
}

func TestCalculateCostSumsItems(t *testing.T) {
	p := testPolicy()
	// 2500 bytes -> 3 units * 2
	assert.Equal(t, uint64(6), p.CalculateCost([]int{1000, 1000, 500}))
}

func TestCalculateCostIsMonotonic(t *testing.T) {
	p := testPolicy()
	prev := p.CalculateCost([]int{0})
	for n := 1; n <= 20000; n += 137 {
		got := p.CalculateCost([]int{n})
		assert.GreaterOrEqual(t, got, prev, "size %d", n)
		prev = got
	}
}

func TestPerItem(t *testing.T) {
	p := testPolicy()
	assert.Equal(t, uint64(9), p.PerItem(3))
	assert.Equal(t, uint64(0), p.PerItem(0))
}
