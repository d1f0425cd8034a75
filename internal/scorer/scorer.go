package scorer

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"virusscope/internal/features"
)

// Request is one immutable scoring job. Either predictor may be nil when
// its artifact could not be loaded.
type Request struct {
	Record     features.Record
	Binary     Predictor
	Multiclass Predictor
	// Threshold overrides the scorer's configured policy when set.
	Threshold *ThresholdPolicy
}

type Result struct {
	Verdict          BinaryVerdict      `json:"verdict"`
	Gate             []ClassProbability `json:"gate"`
	Ranked           []ClassProbability `json:"ranked"`
	Filtered         []ClassProbability `json:"filtered"`
	ThresholdPercent float64            `json:"threshold_percent"`
	ThresholdMode    ThresholdMode      `json:"threshold_mode"`
	Selected         []ClassProbability `json:"selected"`
	Presentation     Presentation       `json:"presentation"`
	BinaryStatus     ModelStatus        `json:"binary_status"`
	MulticlassStatus ModelStatus        `json:"multiclass_status"`
	Status           Outcome            `json:"status"`
	UnseenFields     []string           `json:"unseen_fields"`
	Errors           []string           `json:"errors,omitempty"`
}

// Scorer runs encode -> binary gate -> multiclass -> gate filter ->
// threshold -> presentation. It holds configuration only and is safe for
// concurrent use.
type Scorer struct {
	gatedLabel string
	policy     ThresholdPolicy
	logger     *zap.Logger
}

func New(gatedLabel string, policy ThresholdPolicy, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{gatedLabel: gatedLabel, policy: policy, logger: logger}
}

func (s *Scorer) GatedLabel() string { return s.gatedLabel }

func (s *Scorer) Policy() ThresholdPolicy { return s.policy }

// ScoreBinary picks the argmax class of the gate. Class 0 is the positive
// (gated) condition; every other class is negative.
func ScoreBinary(vec []float64, clf Classifier) (BinaryVerdict, []ClassProbability, error) {
	if clf == nil {
		return Unavailable, nil, &ClassifierUnavailableError{Model: "binary", Err: ErrNoClassifier}
	}
	probs, classes, err := predict(clf, vec)
	if err != nil {
		return Unavailable, nil, &ClassifierUnavailableError{Model: "binary", Err: err}
	}
	ranked, err := Rank(probs, classes)
	if err != nil {
		return Unavailable, nil, &ClassifierUnavailableError{Model: "binary", Err: err}
	}
	if ranked[0].Index == 0 {
		return Positive, ranked, nil
	}
	return Negative, ranked, nil
}

// ScoreMulticlass returns the complete ranked distribution. It never
// filters; gating and thresholding are separate steps.
func ScoreMulticlass(vec []float64, clf Classifier) ([]ClassProbability, error) {
	if clf == nil {
		return nil, &ClassifierUnavailableError{Model: "multiclass", Err: ErrNoClassifier}
	}
	probs, classes, err := predict(clf, vec)
	if err != nil {
		return nil, &ClassifierUnavailableError{Model: "multiclass", Err: err}
	}
	ranked, err := Rank(probs, classes)
	if err != nil {
		return nil, &ClassifierUnavailableError{Model: "multiclass", Err: err}
	}
	return ranked, nil
}

func predict(clf Classifier, vec []float64) (probs []float64, classes []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panicked: %v", r)
		}
	}()
	probs = clf.PredictProba(vec)
	classes = clf.Classes()
	if len(probs) == 0 {
		return nil, nil, fmt.Errorf("%w: empty", ErrBadDistribution)
	}
	for _, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, nil, fmt.Errorf("%w: probability %v", ErrBadDistribution, p)
		}
	}
	return probs, classes, nil
}

func (s *Scorer) Score(req Request) Result {
	res := Result{
		Verdict:          Unavailable,
		BinaryStatus:     StatusOK,
		MulticlassStatus: StatusOK,
		Gate:             []ClassProbability{},
		Ranked:           []ClassProbability{},
		Filtered:         []ClassProbability{},
		Selected:         []ClassProbability{},
		UnseenFields:     []string{},
	}
	unseen := map[string]struct{}{}

	if req.Binary == nil {
		res.BinaryStatus = StatusUnavailable
		res.Errors = append(res.Errors, (&ClassifierUnavailableError{Model: "binary", Err: ErrNoClassifier}).Error())
	} else {
		verdict, gate := Unavailable, []ClassProbability(nil)
		vec, err := encode(req.Binary, req.Record, unseen)
		if err == nil {
			verdict, gate, err = ScoreBinary(vec, req.Binary)
		}
		if err != nil {
			res.BinaryStatus = StatusFailed
			res.Errors = append(res.Errors, err.Error())
			s.logger.Warn("binary classifier failed", zap.Error(err))
		}
		res.Verdict = verdict
		if gate != nil {
			res.Gate = gate
		}
	}

	if req.Multiclass == nil {
		res.MulticlassStatus = StatusUnavailable
		res.Errors = append(res.Errors, (&ClassifierUnavailableError{Model: "multiclass", Err: ErrNoClassifier}).Error())
	} else {
		var ranked []ClassProbability
		vec, err := encode(req.Multiclass, req.Record, unseen)
		if err == nil {
			ranked, err = ScoreMulticlass(vec, req.Multiclass)
		}
		if err != nil {
			res.MulticlassStatus = StatusFailed
			res.Errors = append(res.Errors, err.Error())
			s.logger.Warn("multiclass classifier failed", zap.Error(err))
		} else {
			res.Ranked = ranked
		}
	}

	policy := s.policy
	if req.Threshold != nil {
		policy = *req.Threshold
	}
	res.ThresholdMode = policy.Mode
	if res.MulticlassStatus == StatusOK {
		res.Filtered = ApplyGateFilter(res.Ranked, res.Verdict, s.gatedLabel)
		res.ThresholdPercent = policy.Resolve(probabilities(res.Ranked))
		res.Selected = SelectAboveThreshold(res.Filtered, res.ThresholdPercent)
	} else if policy.Mode == ModeFixed {
		res.ThresholdPercent = policy.Percent
	}
	res.Presentation = Present(res.Ranked, res.Filtered, res.Selected)

	for f := range unseen {
		res.UnseenFields = append(res.UnseenFields, f)
	}
	sort.Strings(res.UnseenFields)
	res.Status = outcome(res.BinaryStatus, res.MulticlassStatus)

	s.logger.Debug("scored",
		zap.Stringer("verdict", res.Verdict),
		zap.String("status", string(res.Status)),
		zap.Float64("threshold_percent", res.ThresholdPercent),
		zap.String("presentation", string(res.Presentation.Mode)),
		zap.Int("selected", len(res.Selected)),
		zap.Strings("unseen_fields", res.UnseenFields),
	)
	return res
}

func encode(e Encoder, r features.Record, unseen map[string]struct{}) (vec []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encoder panicked: %v", r)
		}
	}()
	vec, fields := e.Encode(r)
	for _, f := range fields {
		unseen[f] = struct{}{}
	}
	return vec, nil
}
