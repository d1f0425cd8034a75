package models

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"virusscope/internal/features"
)

func trainedArtifact(t *testing.T, algo string) *Artifact {
	t.Helper()
	X, y := separable(300, 3)
	m, err := NewModel(algo, 5, 4, 5, 0.3)
	require.NoError(t, err)
	require.NoError(t, m.Fit(X, y, 3))
	target := features.LabelEncoder{Classes: []string{"Dengue", "Influenza A", "Rotavirus"}}
	return NewArtifact(algo, m, features.Encoding{IntegerCast: true}, target)
}

func TestArtifactSaveLoad(t *testing.T) {
	for _, algo := range []string{"dt", "rf", "bagging", "gb"} {
		t.Run(algo, func(t *testing.T) {
			a := trainedArtifact(t, algo)
			path := filepath.Join(t.TempDir(), "nested", "model.gob")
			require.NoError(t, a.Save(path))

			got, err := LoadArtifact(path)
			require.NoError(t, err)
			assert.Equal(t, a.Name(), got.Name())
			assert.Equal(t, a.Classes(), got.Classes())
			assert.True(t, got.Encoding.IntegerCast)
			x := []float64{2.5, 1}
			assert.Equal(t, a.PredictProba(x), got.PredictProba(x))
		})
	}
}

func TestLoadArtifactSchemaMismatch(t *testing.T) {
	a := trainedArtifact(t, "dt")
	a.Fields = append([]string{}, a.Fields...)
	a.Fields[0], a.Fields[1] = a.Fields[1], a.Fields[0]
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, a.Save(path))

	_, err := LoadArtifact(path)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadArtifactSingleClass(t *testing.T) {
	a := trainedArtifact(t, "dt")
	a.Target = features.LabelEncoder{Classes: []string{"Dengue"}}
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, a.Save(path))

	_, err := LoadArtifact(path)
	assert.Error(t, err)
}

func TestLoadArtifactCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob"), 0o644))
	_, err := LoadArtifact(path)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "binary.gob")
	multiPath := filepath.Join(dir, "multi.gob")
	require.NoError(t, trainedArtifact(t, "gb").Save(binPath))

	r := NewRegistry(binPath, multiPath, zap.NewNop())

	bin, multi, err := r.Load()
	require.Error(t, err)
	assert.NotNil(t, bin)
	assert.Nil(t, multi)
	assert.Contains(t, err.Error(), KindMulticlass)
	assert.NotContains(t, err.Error(), KindBinary+" model")

	st := r.Status()
	assert.Equal(t, "ok", st[KindBinary])
	assert.Contains(t, st[KindMulticlass], "unavailable")

	// a model that appears later is picked up since failures are not cached
	require.NoError(t, trainedArtifact(t, "rf").Save(multiPath))
	bin2, multi, err := r.Load()
	require.NoError(t, err)
	assert.Same(t, bin, bin2)
	assert.Equal(t, "RandomForest", multi.Name())
}

func TestRegistryConcurrentGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.gob")
	require.NoError(t, trainedArtifact(t, "dt").Save(path))
	r := NewRegistry(path, "", zap.NewNop())

	var wg sync.WaitGroup
	got := make([]*Artifact, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := r.Get(KindBinary)
			assert.NoError(t, err)
			got[i] = a
		}(i)
	}
	wg.Wait()
	for _, a := range got[1:] {
		assert.Same(t, got[0], a)
	}

	_, err := r.Get(KindMulticlass)
	assert.Error(t, err)
	_, err = r.Get("regression")
	assert.Error(t, err)
}
