package scorer

type PresentationMode string

const (
	AboveThreshold PresentationMode = "above_threshold"
	TopPrediction  PresentationMode = "top_prediction"
	NoPrediction   PresentationMode = "none"
)

// Presentation is what a caller shows: either everything that cleared the
// threshold, or a single top pick.
type Presentation struct {
	Mode    PresentationMode   `json:"mode"`
	Entries []ClassProbability `json:"entries"`
}

// Present applies the display contract. When nothing cleared the
// threshold it falls back to the best gate-filtered entry, and when the
// gate removed every candidate it falls back to the best unfiltered one.
// The result is empty only if preFilter is.
func Present(preFilter, filtered, selected []ClassProbability) Presentation {
	switch {
	case len(selected) > 0:
		return Presentation{Mode: AboveThreshold, Entries: selected}
	case len(filtered) > 0:
		return Presentation{Mode: TopPrediction, Entries: filtered[:1]}
	case len(preFilter) > 0:
		return Presentation{Mode: TopPrediction, Entries: preFilter[:1]}
	}
	return Presentation{Mode: NoPrediction, Entries: []ClassProbability{}}
}
