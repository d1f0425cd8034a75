package models

import (
	"errors"
	"math"
	"math/rand"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	Proba     []float64
}

type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MaxThresholdsPerFe int
	MaxFeatures        int
	NClasses           int
	Root               *DTNode
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 8, MinSamplesSplit: 20, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return errors.New("decision tree: empty training set")
	}
	if nClasses < 2 {
		return errors.New("decision tree: need at least two classes")
	}
	dt.NClasses = nClasses
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.build(X, y, idx, 0)
	return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	return argmaxRows(dt.PredictProba(X))
}

func (dt *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = dt.predictProbaOne(X[i])
	}
	return out
}

func (dt *DecisionTree) predictProbaOne(x []float64) []float64 {
	n := dt.Root
	if n == nil {
		return uniform(dt.NClasses)
	}
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return uniform(dt.NClasses)
		}
	}
	out := make([]float64, len(n.Proba))
	copy(out, n.Proba)
	return out
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
	node := &DTNode{}
	p := classDist(y, idx, dt.NClasses)
	if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || isPure(p) {
		node.IsLeaf = true
		node.Proba = p
		return node
	}
	bestFeature := -1
	bestThr := 0.0
	bestImp := math.MaxFloat64
	var leftIdxBest, rightIdxBest []int

	feats := pickFeatures(len(X[0]), dt.MaxFeatures)
	for _, f := range feats {
		for _, thr := range candidateThresholds(X, idx, f, dt.MaxThresholdsPerFe) {
			lIdx, rIdx := splitIdx(X, idx, f, thr)
			if len(lIdx) == 0 || len(rIdx) == 0 {
				continue
			}
			imp := giniImpurity(y, lIdx, rIdx, dt.NClasses)
			if imp < bestImp {
				bestImp = imp
				bestFeature = f
				bestThr = thr
				leftIdxBest = lIdx
				rightIdxBest = rIdx
			}
		}
	}

	if bestFeature == -1 {
		node.IsLeaf = true
		node.Proba = p
		return node
	}
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = dt.build(X, y, leftIdxBest, depth+1)
	node.Right = dt.build(X, y, rightIdxBest, depth+1)
	return node
}

func classDist(y []int, idx []int, k int) []float64 {
	out := make([]float64, k)
	if len(idx) == 0 {
		return uniform(k)
	}
	for _, i := range idx {
		out[y[i]]++
	}
	for c := range out {
		out[c] /= float64(len(idx))
	}
	return out
}

func isPure(p []float64) bool {
	for _, v := range p {
		if v == 1 {
			return true
		}
	}
	return false
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

func giniImpurity(y []int, lIdx, rIdx []int, k int) float64 {
	g := func(ids []int) float64 {
		if len(ids) == 0 {
			return 0
		}
		s := 0.0
		for _, p := range classDist(y, ids, k) {
			s += p * p
		}
		return 1 - s
	}
	wl := float64(len(lIdx))
	wr := float64(len(rIdx))
	n := wl + wr
	return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}

func candidateThresholds(X [][]float64, idx []int, f int, maxC int) []float64 {
	seen := map[float64]bool{}
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		v := X[i][f]
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if maxC <= 0 || maxC >= len(values) {
		return values
	}
	rand.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	return values[:maxC]
}

func pickFeatures(nFeats int, maxFeats int) []int {
	idx := make([]int, nFeats)
	for i := 0; i < nFeats; i++ {
		idx[i] = i
	}
	if maxFeats <= 0 || maxFeats >= nFeats {
		return idx
	}
	rand.Shuffle(nFeats, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx[:maxFeats]
}
