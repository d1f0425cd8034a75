package scorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virusscope/internal/scorer"
)

func ranked(t *testing.T, classes []string, probs ...float64) []scorer.ClassProbability {
	t.Helper()
	r, err := scorer.Rank(probs, classes)
	require.NoError(t, err)
	return r
}

func labels(cs []scorer.ClassProbability) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Label
	}
	return out
}

func TestApplyGateFilterNegativeRemovesGatedLabel(t *testing.T) {
	in := ranked(t, []string{"Dengue", "Zika", "Chikungunya"}, 0.5, 0.3, 0.2)

	out := scorer.ApplyGateFilter(in, scorer.Negative, "Dengue")

	assert.Equal(t, []string{"Zika", "Chikungunya"}, labels(out))
	assert.InDelta(t, 0.3, out[0].Probability, 1e-12)
	assert.InDelta(t, 0.2, out[1].Probability, 1e-12)
	assert.Len(t, in, 3, "input must not be modified")
}

func TestApplyGateFilterIgnoresCase(t *testing.T) {
	in := ranked(t, []string{"DENGUE", "Zika"}, 0.6, 0.4)
	out := scorer.ApplyGateFilter(in, scorer.Negative, "dengue")
	assert.Equal(t, []string{"Zika"}, labels(out))
}

func TestApplyGateFilterNoOpUnlessNegative(t *testing.T) {
	in := ranked(t, []string{"Dengue", "Zika", "Chikungunya"}, 0.5, 0.3, 0.2)
	for _, v := range []scorer.BinaryVerdict{scorer.Positive, scorer.Unavailable} {
		assert.Equal(t, in, scorer.ApplyGateFilter(in, v, "Dengue"), v.String())
	}
}

func TestApplyGateFilterAbsentLabel(t *testing.T) {
	in := ranked(t, []string{"Zika", "Chikungunya"}, 0.7, 0.3)
	assert.Equal(t, in, scorer.ApplyGateFilter(in, scorer.Negative, "Dengue"))
}

func TestSelectAboveThreshold(t *testing.T) {
	in := ranked(t, []string{"A", "B", "C", "D"}, 0.7, 0.1, 0.1, 0.1)
	out := scorer.SelectAboveThreshold(in, scorer.AdaptiveThreshold([]float64{0.7, 0.1, 0.1, 0.1}))
	assert.Equal(t, []string{"A"}, labels(out))

	in = ranked(t, []string{"A", "B", "C", "D"}, 0.3, 0.3, 0.2, 0.2)
	out = scorer.SelectAboveThreshold(in, scorer.AdaptiveThreshold([]float64{0.3, 0.3, 0.2, 0.2}))
	assert.Equal(t, []string{"A", "B"}, labels(out))

	assert.Empty(t, scorer.SelectAboveThreshold(in, 99))
	assert.Len(t, scorer.SelectAboveThreshold(in, 0), 4)
	assert.Equal(t, []string{"A", "B"}, labels(scorer.SelectAboveThreshold(in, 30)), "boundary is inclusive")
}
