package scorer

import "golang.org/x/text/cases"

// ApplyGateFilter removes the gated label when the binary gate vetoed it.
// Any verdict other than Negative leaves ranked untouched.
func ApplyGateFilter(ranked []ClassProbability, verdict BinaryVerdict, gatedLabel string) []ClassProbability {
	if verdict != Negative {
		return ranked
	}
	fold := cases.Fold()
	gated := fold.String(gatedLabel)
	out := make([]ClassProbability, 0, len(ranked))
	for _, c := range ranked {
		if fold.String(c.Label) == gated {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SelectAboveThreshold keeps entries whose percentage reaches the cutoff.
// The result may be empty; see Present for the fallback.
func SelectAboveThreshold(ranked []ClassProbability, thresholdPercent float64) []ClassProbability {
	out := make([]ClassProbability, 0, len(ranked))
	for _, c := range ranked {
		if c.Percent() >= thresholdPercent {
			out = append(out, c)
		}
	}
	return out
}
