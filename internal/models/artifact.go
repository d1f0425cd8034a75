package models

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"virusscope/internal/features"
)

func init() {
	gob.Register(&DecisionTree{})
	gob.Register(&RandomForest{})
	gob.Register(&Bagging{})
	gob.Register(&GradientBoosting{})
}

// Artifact is a trained model bundled with the encoders it was trained
// with. It is read-only once loaded and safe for concurrent use.
type Artifact struct {
	Algo      string
	Model     Model
	Fields    []string
	Encoding  features.Encoding
	Target    features.LabelEncoder
	TrainedAt time.Time
}

var ErrSchemaMismatch = errors.New("artifact feature schema does not match")

func NewArtifact(algo string, m Model, enc features.Encoding, target features.LabelEncoder) *Artifact {
	return &Artifact{
		Algo:      algo,
		Model:     m,
		Fields:    features.Names(),
		Encoding:  enc,
		Target:    target,
		TrainedAt: time.Now().UTC(),
	}
}

func (a *Artifact) Name() string { return a.Model.Name() }

func (a *Artifact) Encode(r features.Record) ([]float64, []string) {
	return a.Encoding.Encode(r)
}

func (a *Artifact) PredictProba(x []float64) []float64 {
	return a.Model.PredictProba([][]float64{x})[0]
}

func (a *Artifact) Classes() []string { return a.Target.Classes }

func (a *Artifact) validate() error {
	if a.Model == nil {
		return errors.New("artifact has no model")
	}
	if a.Target.Len() < 2 {
		return fmt.Errorf("artifact has %d target classes, want at least 2", a.Target.Len())
	}
	want := features.Names()
	if len(a.Fields) != len(want) {
		return fmt.Errorf("%w: %d fields, want %d", ErrSchemaMismatch, len(a.Fields), len(want))
	}
	for i := range want {
		if a.Fields[i] != want[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, a.Fields[i], want[i])
		}
	}
	return nil
}

func (a *Artifact) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var a Artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &a, nil
}

// NewModel builds an untrained model for an algorithm code: dt|rf|bagging|gb.
func NewModel(algo string, estimators, maxDepth, minSamples int, lr float64) (Model, error) {
	switch strings.ToLower(algo) {
	case "rf":
		rf := NewRandomForest()
		rf.NEstimators = estimators
		rf.MaxDepth = maxDepth
		rf.MinSamples = minSamples
		return rf, nil
	case "bagging":
		bg := NewBagging()
		bg.NEstimators = estimators
		bg.MaxDepth = maxDepth
		bg.MinSamples = minSamples
		return bg, nil
	case "gb":
		gb := NewGradientBoosting()
		gb.NEstimators = estimators
		gb.LearningRate = lr
		return gb, nil
	case "dt", "":
		dt := NewDecisionTree()
		dt.MaxDepth = maxDepth
		dt.MinSamplesSplit = minSamples
		return dt, nil
	}
	return nil, fmt.Errorf("unknown algorithm %q", algo)
}
