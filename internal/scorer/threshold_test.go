package scorer_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virusscope/internal/scorer"
)

func TestAdaptiveThreshold(t *testing.T) {
	tests := []struct {
		name string
		p    []float64
		want float64
	}{
		{"dominant class", []float64{0.7, 0.1, 0.1, 0.1}, 50.98},
		{"flat top capped by top class", []float64{0.3, 0.3, 0.2, 0.2}, 27.0},
		{"one-hot over ten classes", []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 40},
		{"uniform", []float64{0.25, 0.25, 0.25, 0.25}, 22.5},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.AdaptiveThreshold(tt.p), 0.01)
		})
	}
}

func TestAdaptiveThresholdTopBound(t *testing.T) {
	// mean+std reaches 1.0 in both cases; the top-class bound wins
	assert.InDelta(t, 90, scorer.AdaptiveThreshold([]float64{1, 0}), 1e-9)
	assert.InDelta(t, 90, scorer.AdaptiveThreshold([]float64{1}), 1e-9)
}

func TestAdaptiveThresholdBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		k := 2 + rng.Intn(12)
		p := make([]float64, k)
		sum := 0.0
		for j := range p {
			p[j] = rng.ExpFloat64()
			sum += p[j]
		}
		top := 0.0
		for j := range p {
			p[j] /= sum
			top = math.Max(top, p[j])
		}
		th := scorer.AdaptiveThreshold(p)
		require.LessOrEqual(t, th, 95.0)
		require.LessOrEqual(t, th, top*90+1e-9)
		require.GreaterOrEqual(t, th, 0.0)
	}
}

func TestFixedPolicy(t *testing.T) {
	p, err := scorer.Fixed(60)
	require.NoError(t, err)
	assert.Equal(t, scorer.ModeFixed, p.Mode)
	assert.Equal(t, 60.0, p.Resolve([]float64{0.9, 0.1}))

	for _, bad := range []float64{-1, 100.5, math.NaN()} {
		_, err := scorer.Fixed(bad)
		assert.ErrorIs(t, err, scorer.ErrThresholdRange)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := scorer.ParsePolicy("", 0)
	require.NoError(t, err)
	assert.Equal(t, scorer.ModeAdaptive, p.Mode)
	assert.InDelta(t, 27.0, p.Resolve([]float64{0.3, 0.3, 0.2, 0.2}), 0.01)

	p, err = scorer.ParsePolicy("fixed", 35)
	require.NoError(t, err)
	assert.Equal(t, 35.0, p.Percent)

	_, err = scorer.ParsePolicy("fixed", 135)
	assert.ErrorIs(t, err, scorer.ErrThresholdRange)

	_, err = scorer.ParsePolicy("median", 0)
	assert.Error(t, err)
}
