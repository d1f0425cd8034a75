package scorer

import (
	"errors"
	"fmt"
)

var (
	ErrNoClassifier    = errors.New("classifier not loaded")
	ErrBadDistribution = errors.New("classifier returned an invalid distribution")
	ErrThresholdRange  = errors.New("threshold percent must be within 0-100")
)

// ClassifierUnavailableError scopes a failure to one sub-model. The other
// sub-model's pipeline is unaffected.
type ClassifierUnavailableError struct {
	Model string
	Err   error
}

func (e *ClassifierUnavailableError) Error() string {
	return fmt.Sprintf("%s classifier unavailable: %v", e.Model, e.Err)
}

func (e *ClassifierUnavailableError) Unwrap() error { return e.Err }
