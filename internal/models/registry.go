package models

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	KindBinary     = "binary"
	KindMulticlass = "multiclass"
)

// Registry loads artifacts from disk on first use and caches them for the
// life of the process. Concurrent first requests share one load. Failed
// loads are not cached.
type Registry struct {
	paths  map[string]string
	logger *zap.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	loaded map[string]*Artifact
}

func NewRegistry(binaryPath, multiclassPath string, logger *zap.Logger) *Registry {
	return &Registry{
		paths:  map[string]string{KindBinary: binaryPath, KindMulticlass: multiclassPath},
		logger: logger,
		loaded: map[string]*Artifact{},
	}
}

func (r *Registry) Get(kind string) (*Artifact, error) {
	r.mu.RLock()
	a, ok := r.loaded[kind]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}
	path, ok := r.paths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
	if path == "" {
		return nil, fmt.Errorf("%s model: no path configured", kind)
	}
	v, err, _ := r.group.Do(kind, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.loaded[kind]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}
		a, err := LoadArtifact(path)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.loaded[kind] = a
		r.mu.Unlock()
		r.logger.Info("model loaded",
			zap.String("kind", kind),
			zap.String("path", path),
			zap.String("model", a.Name()),
			zap.Int("classes", a.Target.Len()),
		)
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", kind, err)
	}
	return v.(*Artifact), nil
}

// Load returns both artifacts. Either may be nil; err aggregates every
// failure so one missing model does not hide the other.
func (r *Registry) Load() (binary, multiclass *Artifact, err error) {
	binary, errB := r.Get(KindBinary)
	multiclass, errM := r.Get(KindMulticlass)
	return binary, multiclass, multierr.Combine(errB, errM)
}

// Status reports per-kind availability without forcing a reload storm:
// it attempts a load only for kinds not yet cached.
func (r *Registry) Status() map[string]string {
	out := map[string]string{}
	for kind := range r.paths {
		if _, err := r.Get(kind); err != nil {
			out[kind] = "unavailable: " + err.Error()
			continue
		}
		out[kind] = "ok"
	}
	return out
}
