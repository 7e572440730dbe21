package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	const max = 360.0
	tests := []struct {
		name  string
		ratio float64
		want  Band
	}{
		{"zero", 0, Correct},
		{"just above zero", 0.01, Correct},
		{"hot boundary", 0.05, Hot},
		{"warm3 boundary", 0.15, Warm3},
		{"warm2 boundary", 0.25, Warm2},
		{"warm1 boundary", 0.40, Warm1},
		{"cold2 boundary", 0.55, Cold2},
		{"cold1 boundary", 0.75, Cold1},
		{"between hot and warm3", 0.10, Hot},
		{"between cold2 and cold1", 0.70, Cold2},
		{"max", 1.0, Cold1},
		{"beyond max", 1.3, Cold1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ratio*max, max))
		})
	}
}

func TestClassifyBoundariesWithUnitMax(t *testing.T) {
	// Boundaries expressed exactly, without float multiplication.
	assert.Equal(t, Hot, Classify(0.05, 1))
	assert.Equal(t, Warm3, Classify(0.15, 1))
	assert.Equal(t, Warm2, Classify(0.25, 1))
	assert.Equal(t, Warm1, Classify(0.40, 1))
	assert.Equal(t, Cold2, Classify(0.55, 1))
	assert.Equal(t, Cold1, Classify(0.75, 1))
	assert.Equal(t, Correct, Classify(0.0499, 1))
}

func TestClassifyZeroMax(t *testing.T) {
	assert.Equal(t, Correct, Classify(0, 0))
	assert.Equal(t, Cold1, Classify(10, 0))
}

func TestBandPresentation(t *testing.T) {
	for _, b := range []Band{Cold1, Cold2, Warm1, Warm2, Warm3, Hot, Correct} {
		assert.NotEmpty(t, b.Color())
		assert.NotEqual(t, "⬜", b.Emoji(), string(b))
	}
	assert.Equal(t, "⬜", Band("nope").Emoji())
}
