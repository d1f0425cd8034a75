package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable builds three classes split on feature 0 with a noise column.
func separable(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		c := rng.Intn(3)
		X[i] = []float64{float64(c)*2 + rng.Float64(), rng.Float64() * 10}
		y[i] = c
	}
	return X, y
}

func TestModelsLearnSeparableClasses(t *testing.T) {
	X, y := separable(600, 1)
	Xt, yt := separable(200, 2)
	for _, algo := range []string{"dt", "rf", "bagging", "gb"} {
		t.Run(algo, func(t *testing.T) {
			m, err := NewModel(algo, 10, 4, 5, 0.3)
			require.NoError(t, err)
			require.NoError(t, m.Fit(X, y, 3))

			assert.GreaterOrEqual(t, Accuracy(yt, m.Predict(Xt)), 0.9, m.Name())
			for _, p := range m.PredictProba(Xt[:20]) {
				require.Len(t, p, 3)
				sum := 0.0
				for _, v := range p {
					assert.GreaterOrEqual(t, v, 0.0)
					assert.LessOrEqual(t, v, 1.0)
					sum += v
				}
				assert.InDelta(t, 1.0, sum, 1e-9)
			}
		})
	}
}

func TestNewModelUnknown(t *testing.T) {
	_, err := NewModel("lgbm", 1, 1, 1, 0.1)
	assert.Error(t, err)
}

func TestFitRejectsEmpty(t *testing.T) {
	for _, algo := range []string{"dt", "rf", "bagging", "gb"} {
		m, err := NewModel(algo, 2, 2, 2, 0.1)
		require.NoError(t, err)
		assert.Error(t, m.Fit(nil, nil, 3), algo)
	}
}

func TestUntrainedTreeIsUniform(t *testing.T) {
	dt := &DecisionTree{NClasses: 4}
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, dt.PredictProba([][]float64{{1}})[0])
}

func TestMetrics(t *testing.T) {
	y := []int{0, 0, 1, 1, 2, 2}
	p := []int{0, 1, 1, 1, 2, 0}
	assert.InDelta(t, 4.0/6, Accuracy(y, p), 1e-12)
	assert.Equal(t, [][]int{{1, 1, 0}, {0, 2, 0}, {1, 0, 1}}, Confusion(y, p, 3))

	prec, rec, f1 := MacroPRF1(y, y, 3)
	assert.Equal(t, 1.0, prec)
	assert.Equal(t, 1.0, rec)
	assert.Equal(t, 1.0, f1)

	prec, rec, _ = MacroPRF1(y, p, 3)
	// per-class precision 1/2, 2/3, 1; recall 1/2, 1, 1/2
	assert.InDelta(t, (0.5+2.0/3+1)/3, prec, 1e-12)
	assert.InDelta(t, (0.5+1+0.5)/3, rec, 1e-12)

	assert.Equal(t, 0.0, Accuracy(nil, nil))
}
