package scorer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const maxAdaptivePercent = 95

// AdaptiveThreshold derives a cutoff percentage from the shape of the full
// distribution: min((mean+std)*100, top*90, 95), std being the population
// standard deviation. The bar never exceeds 90% of the top class, so a
// dominant class always clears it.
func AdaptiveThreshold(p []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(p, nil)
	top := floats.Max(p)
	return math.Min(math.Min((mean+std)*100, top*90), maxAdaptivePercent)
}

type ThresholdMode string

const (
	ModeAdaptive ThresholdMode = "adaptive"
	ModeFixed    ThresholdMode = "fixed"
)

// ThresholdPolicy is either an operator-set percentage or the adaptive rule.
type ThresholdPolicy struct {
	Mode    ThresholdMode
	Percent float64
}

func Adaptive() ThresholdPolicy { return ThresholdPolicy{Mode: ModeAdaptive} }

func Fixed(percent float64) (ThresholdPolicy, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return ThresholdPolicy{}, fmt.Errorf("%w: got %v", ErrThresholdRange, percent)
	}
	return ThresholdPolicy{Mode: ModeFixed, Percent: percent}, nil
}

// ParsePolicy builds a policy from configuration values.
func ParsePolicy(mode string, percent float64) (ThresholdPolicy, error) {
	switch ThresholdMode(mode) {
	case ModeAdaptive, "":
		return Adaptive(), nil
	case ModeFixed:
		return Fixed(percent)
	}
	return ThresholdPolicy{}, fmt.Errorf("unknown threshold mode %q", mode)
}

// Resolve returns the cutoff percentage for a distribution.
func (t ThresholdPolicy) Resolve(p []float64) float64 {
	if t.Mode == ModeFixed {
		return t.Percent
	}
	return AdaptiveThreshold(p)
}
