package models

import "errors"

// Bagging is a RandomForest without per-split feature sampling.
type Bagging struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	NClasses           int
	Trees              []*DecisionTree
}

func NewBagging() *Bagging {
	return &Bagging{NEstimators: 30, MaxDepth: 8, MinSamples: 20, MaxThresholdsPerFe: 32}
}

func (bg *Bagging) Name() string { return "Bagging" }

func (bg *Bagging) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return errors.New("bagging: empty training set")
	}
	bg.NClasses = nClasses
	trees, err := fitBootstrapTrees(X, y, nClasses, bg.NEstimators, func() *DecisionTree {
		return &DecisionTree{MaxDepth: bg.MaxDepth, MinSamplesSplit: bg.MinSamples,
			MaxThresholdsPerFe: bg.MaxThresholdsPerFe}
	})
	bg.Trees = trees
	return err
}

func (bg *Bagging) Predict(X [][]float64) []int {
	return argmaxRows(bg.PredictProba(X))
}

func (bg *Bagging) PredictProba(X [][]float64) [][]float64 {
	return averageProba(bg.Trees, X, bg.NClasses)
}
