package scorer

//go:generate mockgen -source=types.go -destination=mocks/mock_types.go -package=mocks

import (
	"fmt"

	"virusscope/internal/features"
)

// Classifier is a trained model handle: a probability vector per encoded
// row, indexed like Classes.
type Classifier interface {
	PredictProba(x []float64) []float64
	Classes() []string
}

// Encoder turns a record into the row layout a specific classifier was
// trained on. Unseen categorical values come back as sentinels, listed by
// field name.
type Encoder interface {
	Encode(r features.Record) ([]float64, []string)
}

type Predictor interface {
	Encoder
	Classifier
}

type ClassProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Index       int     `json:"index"`
}

func (c ClassProbability) Percent() float64 { return c.Probability * 100 }

type BinaryVerdict int

const (
	Unavailable BinaryVerdict = iota
	Positive
	Negative
)

func (v BinaryVerdict) String() string {
	switch v {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	}
	return "unavailable"
}

func (v BinaryVerdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *BinaryVerdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "positive":
		*v = Positive
	case "negative":
		*v = Negative
	case "unavailable":
		*v = Unavailable
	default:
		return fmt.Errorf("unknown verdict %q", b)
	}
	return nil
}

type ModelStatus string

const (
	StatusOK          ModelStatus = "ok"
	StatusUnavailable ModelStatus = "unavailable"
	StatusFailed      ModelStatus = "failed"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

func outcome(binary, multiclass ModelStatus) Outcome {
	switch {
	case binary == StatusOK && multiclass == StatusOK:
		return OutcomeSuccess
	case binary == StatusOK || multiclass == StatusOK:
		return OutcomePartial
	}
	return OutcomeFailure
}
