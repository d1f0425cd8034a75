package models

import (
	"errors"
	"math"
	"math/rand"
)

type RandomForest struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	MaxFeatures        int
	NClasses           int
	Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
	return &RandomForest{NEstimators: 30, MaxDepth: 8, MinSamples: 20, MaxThresholdsPerFe: 32}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return errors.New("random forest: empty training set")
	}
	if rf.MaxFeatures <= 0 {
		nFeats := len(X[0])
		rf.MaxFeatures = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
	}
	rf.NClasses = nClasses
	trees, err := fitBootstrapTrees(X, y, nClasses, rf.NEstimators, func() *DecisionTree {
		return &DecisionTree{MaxDepth: rf.MaxDepth, MinSamplesSplit: rf.MinSamples,
			MaxThresholdsPerFe: rf.MaxThresholdsPerFe, MaxFeatures: rf.MaxFeatures}
	})
	rf.Trees = trees
	return err
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	return argmaxRows(rf.PredictProba(X))
}

func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	return averageProba(rf.Trees, X, rf.NClasses)
}

// fitBootstrapTrees trains n trees, each on a bootstrap resample of X.
func fitBootstrapTrees(X [][]float64, y []int, nClasses, n int, newTree func() *DecisionTree) ([]*DecisionTree, error) {
	if n <= 0 {
		n = 30
	}
	rows := len(X)
	trees := make([]*DecisionTree, 0, n)
	for k := 0; k < n; k++ {
		Xb := make([][]float64, rows)
		yb := make([]int, rows)
		for i := 0; i < rows; i++ {
			j := rand.Intn(rows)
			Xb[i] = X[j]
			yb[i] = y[j]
		}
		dt := newTree()
		if err := dt.Fit(Xb, yb, nClasses); err != nil {
			return nil, err
		}
		trees = append(trees, dt)
	}
	return trees, nil
}

func averageProba(trees []*DecisionTree, X [][]float64, k int) [][]float64 {
	out := make([][]float64, len(X))
	if len(trees) == 0 {
		for i := range out {
			out[i] = uniform(k)
		}
		return out
	}
	for i := range out {
		out[i] = make([]float64, k)
	}
	for _, dt := range trees {
		p := dt.PredictProba(X)
		for i := range X {
			for c := 0; c < k; c++ {
				out[i][c] += p[i][c]
			}
		}
	}
	m := float64(len(trees))
	for i := range out {
		for c := range out[i] {
			out[i][c] /= m
		}
	}
	return out
}
