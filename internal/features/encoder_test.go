package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder(t *testing.T) {
	le := NewLabelEncoder([]string{"Male", "Female", "Male"})
	assert.Equal(t, []string{"Female", "Male"}, le.Classes)

	code, ok := le.Transform("Male")
	assert.True(t, ok)
	assert.Equal(t, 1, code)

	code, ok = le.Transform("Other")
	assert.False(t, ok)
	assert.Equal(t, Unknown, code)

	for i := 0; i < le.Len(); i++ {
		label, ok := le.Inverse(i)
		require.True(t, ok)
		back, _ := le.Transform(label)
		assert.Equal(t, i, back)
	}
	_, ok = le.Inverse(2)
	assert.False(t, ok)
}

func TestLabelEncoderKeepsHandOrder(t *testing.T) {
	le := LabelEncoder{Classes: []string{"Dengue", "Non-Dengue"}}
	code, ok := le.Transform("Non-Dengue")
	require.True(t, ok)
	assert.Equal(t, 1, code)
}

func records(t *testing.T, ins ...Input) []Record {
	t.Helper()
	out := make([]Record, len(ins))
	for i, in := range ins {
		r, err := BuildRecord(in, today)
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func TestEncodingUnseenBecomesSentinel(t *testing.T) {
	train := records(t,
		Input{State: "Kerala", Gender: "Male", AgeYears: 30, Month: 8, Duration: 3},
		Input{State: "Goa", Gender: "Female", AgeYears: 12, Month: 1, Duration: 5},
	)
	enc := FitEncoding(train, false)

	in := Input{State: "Atlantis", Gender: "Female", AgeYears: 7.5, Month: 2, Duration: 2,
		Symptoms: map[string]bool{"res_cough": true}}
	r := records(t, in)[0]
	vec, unseen := enc.Encode(r)

	require.Len(t, vec, len(Schema))
	assert.Equal(t, []string{FieldState}, unseen)
	assert.Equal(t, float64(Unknown), vec[0])
	assert.Equal(t, 0.0, vec[1], "Female sorts first")
	i, _ := Index("res_cough")
	assert.Equal(t, 1.0, vec[i])
	i, _ = Index("res_sore")
	assert.Equal(t, 0.0, vec[i])
	i, _ = Index(FieldAge)
	assert.Equal(t, 7.5, vec[i])
}

func TestEncodingIntegerCast(t *testing.T) {
	train := records(t, Input{State: "Kerala", Gender: "Male", AgeYears: 30, Month: 8, Duration: 3})
	enc := FitEncoding(train, true)
	r := records(t, Input{State: "Kerala", Gender: "Male", AgeYears: 4.9, Month: 8, Duration: 3})[0]
	vec, unseen := enc.Encode(r)
	assert.Empty(t, unseen)
	i, _ := Index(FieldAge)
	assert.Equal(t, 4.0, vec[i])
}

func TestEncodingWithoutEncoders(t *testing.T) {
	r := records(t, Input{State: "Kerala", Gender: "Male", AgeYears: 30, Month: 8, Duration: 3,
		Symptoms: map[string]bool{"enc_fever": true}})[0]
	vec, unseen := Encoding{}.Encode(r)
	assert.Equal(t, []string{FieldState, FieldGender}, unseen)
	i, _ := Index("encephalitis")
	assert.Equal(t, 1.0, vec[i])
}
