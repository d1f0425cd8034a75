package scorer

import (
	"fmt"
	"sort"
)

// Rank pairs probabilities with their labels and sorts them descending.
// Ties keep the original class order.
func Rank(probs []float64, classes []string) ([]ClassProbability, error) {
	if len(probs) != len(classes) {
		return nil, fmt.Errorf("%w: %d probabilities for %d classes", ErrBadDistribution, len(probs), len(classes))
	}
	out := make([]ClassProbability, len(probs))
	for i, p := range probs {
		out[i] = ClassProbability{Label: classes[i], Probability: p, Index: i}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	return out, nil
}

// LabelIndex looks a decoded label back up in the class list.
func LabelIndex(classes []string, label string) (int, bool) {
	for i, c := range classes {
		if c == label {
			return i, true
		}
	}
	return -1, false
}

func probabilities(ranked []ClassProbability) []float64 {
	out := make([]float64, len(ranked))
	for i, c := range ranked {
		out[i] = c.Probability
	}
	return out
}
