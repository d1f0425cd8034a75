package models

import (
	"errors"
	"math"
	"sort"
)

type gbStump struct {
	Feature   int
	Threshold float64
	LeftVal   float64
	RightVal  float64
}

func (s gbStump) value(x []float64) float64 {
	if x[s.Feature] > s.Threshold {
		return s.RightVal
	}
	return s.LeftVal
}

// GradientBoosting fits one regression stump per class per round on the
// softmax residuals.
type GradientBoosting struct {
	NEstimators        int
	LearningRate       float64
	MinSamples         int
	MaxThresholdsPerFe int
	NClasses           int
	Init               []float64
	Rounds             [][]gbStump
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NEstimators: 50, LearningRate: 0.1, MinSamples: 5, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func softmax(z []float64) []float64 {
	m := z[0]
	for _, v := range z {
		m = math.Max(m, v)
	}
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func (gb *GradientBoosting) Fit(X [][]float64, y []int, nClasses int) error {
	n := len(X)
	if n == 0 {
		return errors.New("gradient boosting: empty training set")
	}
	if nClasses < 2 {
		return errors.New("gradient boosting: need at least two classes")
	}
	gb.NClasses = nClasses
	gb.Rounds = nil

	counts := make([]float64, nClasses)
	for _, c := range y {
		counts[c]++
	}
	gb.Init = make([]float64, nClasses)
	for c := range counts {
		prior := counts[c] / float64(n)
		prior = math.Min(math.Max(prior, 1e-3), 1-1e-3)
		gb.Init[c] = math.Log(prior)
	}
	F := make([][]float64, n)
	for i := range F {
		F[i] = append([]float64(nil), gb.Init...)
	}

	cands := make([][]float64, len(X[0]))
	for j := range cands {
		cands[j] = gbCandidateThresholds(X, j, gb.MaxThresholdsPerFe)
	}

	for m := 0; m < gb.NEstimators; m++ {
		P := make([][]float64, n)
		for i := range F {
			P[i] = softmax(F[i])
		}
		round := make([]gbStump, nClasses)
		for c := 0; c < nClasses; c++ {
			r := make([]float64, n)
			for i := 0; i < n; i++ {
				target := 0.0
				if y[i] == c {
					target = 1
				}
				r[i] = target - P[i][c]
			}
			round[c] = gb.fitStump(X, r, cands)
		}
		gb.Rounds = append(gb.Rounds, round)
		for i := 0; i < n; i++ {
			for c, s := range round {
				F[i][c] += gb.LearningRate * s.value(X[i])
			}
		}
	}
	return nil
}

func (gb *GradientBoosting) fitStump(X [][]float64, r []float64, cands [][]float64) gbStump {
	n := len(X)
	best := gbStump{}
	bestSSE := math.MaxFloat64
	for j := range cands {
		for _, thr := range cands[j] {
			leftSum, leftCount := 0.0, 0.0
			rightSum, rightCount := 0.0, 0.0
			for i := 0; i < n; i++ {
				if X[i][j] <= thr {
					leftSum += r[i]
					leftCount++
				} else {
					rightSum += r[i]
					rightCount++
				}
			}
			if int(leftCount) < gb.MinSamples || int(rightCount) < gb.MinSamples || leftCount == 0 || rightCount == 0 {
				continue
			}
			leftAvg := leftSum / leftCount
			rightAvg := rightSum / rightCount
			sse := 0.0
			for i := 0; i < n; i++ {
				d := r[i] - leftAvg
				if X[i][j] > thr {
					d = r[i] - rightAvg
				}
				sse += d * d
			}
			if sse < bestSSE {
				bestSSE = sse
				best = gbStump{Feature: j, Threshold: thr, LeftVal: leftAvg, RightVal: rightAvg}
			}
		}
	}
	return best
}

func (gb *GradientBoosting) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		if len(gb.Init) == 0 {
			out[i] = uniform(gb.NClasses)
			continue
		}
		f := append([]float64(nil), gb.Init...)
		for _, round := range gb.Rounds {
			for c, s := range round {
				f[c] += gb.LearningRate * s.value(X[i])
			}
		}
		out[i] = softmax(f)
	}
	return out
}

func (gb *GradientBoosting) Predict(X [][]float64) []int {
	return argmaxRows(gb.PredictProba(X))
}

func gbCandidateThresholds(X [][]float64, j int, nCand int) []float64 {
	if nCand <= 0 {
		nCand = 16
	}
	n := len(X)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = X[i][j]
	}
	sort.Float64s(vals)
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
		if idx <= 0 || idx >= n {
			continue
		}
		thr := vals[idx]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	if len(out) == 0 {
		out = append(out, vals[0])
	}
	return out
}
