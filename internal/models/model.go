package models

// Model is a multi-class probabilistic classifier over encoded rows.
// PredictProba returns one distribution per row, indexed by class code.
type Model interface {
	Fit(X [][]float64, y []int, nClasses int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) [][]float64
	Name() string
}

func argmax(p []float64) int {
	best := 0
	for i := range p {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}

func argmaxRows(ps [][]float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		out[i] = argmax(ps[i])
	}
	return out
}

func uniform(k int) []float64 {
	out := make([]float64, k)
	for i := range out {
		out[i] = 1 / float64(k)
	}
	return out
}
