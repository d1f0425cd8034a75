package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)

func baseInput() Input {
	return Input{State: "Kerala", Gender: "Male", AgeYears: 30, Month: 8, Duration: 3}
}

func TestSchemaOrder(t *testing.T) {
	names := Names()
	require.Len(t, names, 56)
	assert.Equal(t, []string{FieldState, FieldGender, FieldDuration, "diarrhoea"}, names[:4])
	assert.Equal(t, []string{"con_scrusting", FieldAge, FieldMonth}, names[53:])

	i, ok := Index("hem_retro_orbital")
	require.True(t, ok)
	assert.Equal(t, "hem_retro_orbital", names[i])
	_, ok = Index("fever")
	assert.False(t, ok)
}

func TestBuildRecordDefaultsSymptomsToNo(t *testing.T) {
	r, err := BuildRecord(baseInput(), today)
	require.NoError(t, err)
	for _, s := range Symptoms() {
		v, _ := r.Value(s)
		assert.Equal(t, No, v, s)
	}
	assert.Empty(t, r.Present())
}

func TestBuildRecordValidation(t *testing.T) {
	future := today.AddDate(0, 0, 1)
	tests := []struct {
		name   string
		modify func(*Input)
	}{
		{"negative age", func(in *Input) { in.AgeYears = -1 }},
		{"month zero", func(in *Input) { in.Month = 0 }},
		{"month thirteen", func(in *Input) { in.Month = 13 }},
		{"zero duration", func(in *Input) { in.Duration = 0 }},
		{"unknown symptom", func(in *Input) { in.Symptoms = map[string]bool{"sneezing": true} }},
		{"unknown group", func(in *Input) { in.Groups = []string{"Skin"} }},
		{"dob in future", func(in *Input) { in.DOB = &future }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.modify(&in)
			_, err := BuildRecord(in, today)
			assert.Error(t, err)
		})
	}

	in := baseInput()
	in.Symptoms = map[string]bool{"sneezing": true}
	_, err := BuildRecord(in, today)
	assert.ErrorIs(t, err, ErrUnknownSymptom)
}

func TestBuildRecordUnknownCategoryAccepted(t *testing.T) {
	in := baseInput()
	in.State = "Atlantis"
	r, err := BuildRecord(in, today)
	require.NoError(t, err)
	assert.Equal(t, "Atlantis", r.State)
}

func TestBuildRecordGroupMasking(t *testing.T) {
	in := baseInput()
	in.Groups = []string{"hemorrhagic symptoms"}
	in.Symptoms = map[string]bool{"hem_headache": true, "res_cough": true}
	r, err := BuildRecord(in, today)
	require.NoError(t, err)

	assert.True(t, r.Symptom("hem_fever"), "enabled group sets its toggle")
	assert.True(t, r.Symptom("hem_headache"))
	assert.False(t, r.Symptom("res_cough"), "symptoms of disabled groups are dropped")
	assert.False(t, r.Symptom("respiratory_c"))
}

func TestBuildRecordSubSymptomImpliesGroup(t *testing.T) {
	in := baseInput()
	in.Symptoms = map[string]bool{"jau_urine": true, "dia_pain": false}
	r, err := BuildRecord(in, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"jaundice", "jau_urine"}, r.Present())
}

func TestBuildRecordFromDOB(t *testing.T) {
	in := baseInput()
	dob := time.Date(2000, 2, 15, 0, 0, 0, 0, time.UTC)
	in.DOB = &dob
	r, err := BuildRecord(in, today)
	require.NoError(t, err)
	assert.Equal(t, 24.5, r.AgeYears)
}

func TestAgeFromDOB(t *testing.T) {
	assert.Equal(t, 0.0, AgeFromDOB(today, today))
	assert.Equal(t, 1.0, AgeFromDOB(today.AddDate(-1, 0, 0), today))
	assert.Equal(t, 10.0, AgeFromDOB(today.AddDate(-10, 0, 0), today))
}

func TestParseMonth(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "12": 12, "March": 3, "mar": 3, "DECEMBER": 12, " sep ": 9} {
		got, err := ParseMonth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"0", "13", "", "ma", "Smarch"} {
		_, err := ParseMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestAssess(t *testing.T) {
	t.Run("nothing enabled", func(t *testing.T) {
		r, err := BuildRecord(baseInput(), today)
		require.NoError(t, err)
		a := Assess(r)
		assert.False(t, a.Predictable)
		assert.Empty(t, a.EnabledGroups)
		require.Len(t, a.Notes(), 1)
		assert.Contains(t, a.Notes()[0], "no symptoms")
	})

	t.Run("group without detail", func(t *testing.T) {
		in := baseInput()
		in.Groups = []string{"Jaundice and Hepatic Issues"}
		r, err := BuildRecord(in, today)
		require.NoError(t, err)
		a := Assess(r)
		assert.False(t, a.Predictable)
		assert.Equal(t, []string{"Jaundice and Hepatic Issues"}, a.GroupsWithoutDetail)
		assert.Len(t, a.Notes(), 2)
	})

	t.Run("one detailed group is enough", func(t *testing.T) {
		in := baseInput()
		in.Groups = []string{"Jaundice and Hepatic Issues", "Respiratory Infections"}
		in.Symptoms = map[string]bool{"res_cough": true}
		r, err := BuildRecord(in, today)
		require.NoError(t, err)
		a := Assess(r)
		assert.True(t, a.Predictable)
		assert.Equal(t, []string{"Respiratory Infections", "Jaundice and Hepatic Issues"}, a.EnabledGroups)
		assert.Equal(t, []string{"Jaundice and Hepatic Issues"}, a.GroupsWithoutDetail)
		assert.Len(t, a.Notes(), 1)
	})
}

func TestRowRoundTrip(t *testing.T) {
	in := baseInput()
	in.AgeYears = 4.5
	in.Symptoms = map[string]bool{"dia_vomiting": true, "con_redness": true}
	r, err := BuildRecord(in, today)
	require.NoError(t, err)

	row := r.Row()
	assert.Equal(t, "4.5", row[54])
	assert.Equal(t, "8", row[55])

	back, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}
