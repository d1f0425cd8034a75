package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	Yes = "Yes"
	No  = "No"
)

var ErrUnknownSymptom = errors.New("unknown symptom")

// Record is one fixed-schema input row. Build it with BuildRecord; the
// zero value is not a valid record.
type Record struct {
	State    string
	Gender   string
	Duration int
	AgeYears float64
	Month    int
	symptoms map[string]bool
}

// Input is the loosely-filled form state a Record is built from.
type Input struct {
	State    string
	Gender   string
	AgeYears float64
	DOB      *time.Time
	Month    int
	Duration int
	// Groups, when set, lists the enabled symptom groups. Symptoms of
	// groups not listed are forced to No and each listed group's toggle
	// symptom is forced to Yes.
	Groups   []string
	Symptoms map[string]bool
}

func BuildRecord(in Input, today time.Time) (Record, error) {
	r := Record{
		State:    strings.TrimSpace(in.State),
		Gender:   strings.TrimSpace(in.Gender),
		Duration: in.Duration,
		AgeYears: in.AgeYears,
		Month:    in.Month,
		symptoms: map[string]bool{},
	}
	if in.DOB != nil {
		if in.DOB.After(today) {
			return Record{}, fmt.Errorf("date of birth %s is in the future", in.DOB.Format("2006-01-02"))
		}
		r.AgeYears = AgeFromDOB(*in.DOB, today)
	}
	if r.AgeYears < 0 || r.AgeYears > 200 {
		return Record{}, fmt.Errorf("age %.1f out of range 0-200", r.AgeYears)
	}
	if r.Month < 1 || r.Month > 12 {
		return Record{}, fmt.Errorf("month %d out of range 1-12", r.Month)
	}
	if r.Duration < 1 {
		return Record{}, fmt.Errorf("duration of illness must be at least 1 day, got %d", r.Duration)
	}
	for name, v := range in.Symptoms {
		if !IsSymptom(name) {
			return Record{}, fmt.Errorf("%w: %q", ErrUnknownSymptom, name)
		}
		if v {
			r.symptoms[name] = true
		}
	}
	if len(in.Groups) > 0 {
		enabled := map[int]bool{}
		for _, name := range in.Groups {
			g, ok := GroupByName(name)
			if !ok {
				return Record{}, fmt.Errorf("unknown symptom group %q", name)
			}
			enabled[symptomGroup[g.Symptoms[0]]] = true
		}
		for gi, g := range Groups {
			if enabled[gi] {
				r.symptoms[g.Symptoms[0]] = true
				continue
			}
			for _, s := range g.Symptoms {
				delete(r.symptoms, s)
			}
		}
	}
	// a sub-symptom implies its group is enabled
	for s := range r.symptoms {
		r.symptoms[Groups[symptomGroup[s]].Symptoms[0]] = true
	}
	return r, nil
}

func (r Record) Symptom(name string) bool { return r.symptoms[name] }

// Present returns the positive symptoms in schema order.
func (r Record) Present() []string {
	out := []string{}
	for _, s := range Symptoms() {
		if r.symptoms[s] {
			out = append(out, s)
		}
	}
	return out
}

// Value returns the raw (unencoded) value of a schema field. Categorical
// fields yield a string, numeric fields a float.
func (r Record) Value(name string) (string, float64) {
	switch name {
	case FieldState:
		return r.State, 0
	case FieldGender:
		return r.Gender, 0
	case FieldDuration:
		return "", float64(r.Duration)
	case FieldAge:
		return "", r.AgeYears
	case FieldMonth:
		return "", float64(r.Month)
	}
	if r.symptoms[name] {
		return Yes, 0
	}
	return No, 0
}

// Row returns every field as a string in schema order, the layout of the
// training CSV.
func (r Record) Row() []string {
	out := make([]string, len(Schema))
	for i, f := range Schema {
		s, v := r.Value(f.Name)
		if f.Kind == Numeric {
			s = formatNumber(v)
		}
		out[i] = s
	}
	return out
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// AgeFromDOB mirrors the form's calendar path: days/365.25, one decimal.
func AgeFromDOB(dob, today time.Time) float64 {
	days := math.Floor(today.Sub(dob).Hours() / 24)
	return math.Round(days/365.25*10) / 10
}

type Assessment struct {
	EnabledGroups       []string `json:"enabled_groups"`
	GroupsWithoutDetail []string `json:"groups_without_detail"`
	Predictable         bool     `json:"predictable"`
}

// Assess reports which groups are enabled and which of them carry no
// sub-symptom. A record with no enabled group, or where every enabled group
// lacks detail, is not predictable.
func Assess(r Record) Assessment {
	a := Assessment{EnabledGroups: []string{}, GroupsWithoutDetail: []string{}}
	for _, g := range Groups {
		if !r.symptoms[g.Symptoms[0]] {
			continue
		}
		a.EnabledGroups = append(a.EnabledGroups, g.Name)
		detail := false
		for _, s := range g.Symptoms[1:] {
			if r.symptoms[s] {
				detail = true
				break
			}
		}
		if !detail {
			a.GroupsWithoutDetail = append(a.GroupsWithoutDetail, g.Name)
		}
	}
	a.Predictable = len(a.EnabledGroups) > len(a.GroupsWithoutDetail)
	return a
}

// Notes renders an assessment as user-facing messages.
func (a Assessment) Notes() []string {
	notes := []string{}
	if len(a.EnabledGroups) == 0 {
		return append(notes, "no symptoms were selected; provide symptom details to get a virus prediction")
	}
	for _, g := range a.GroupsWithoutDetail {
		notes = append(notes, fmt.Sprintf("%s is enabled but no additional symptoms were selected", g))
	}
	if !a.Predictable {
		notes = append(notes, "no additional symptom details were provided for the enabled groups; no prediction can be made")
	}
	return notes
}

// FromRow is the inverse of Row. Unknown symptom values other than Yes
// read as No.
func FromRow(row []string) (Record, error) {
	if len(row) < len(Schema) {
		return Record{}, fmt.Errorf("row has %d columns, want %d", len(row), len(Schema))
	}
	r := Record{symptoms: map[string]bool{}}
	for i, f := range Schema {
		v := strings.TrimSpace(row[i])
		switch f.Name {
		case FieldState:
			r.State = v
		case FieldGender:
			r.Gender = v
		case FieldDuration, FieldAge, FieldMonth:
			var x float64
			if _, err := fmt.Sscan(v, &x); err != nil {
				return Record{}, fmt.Errorf("column %s: %w", f.Name, err)
			}
			switch f.Name {
			case FieldDuration:
				r.Duration = int(x)
			case FieldAge:
				r.AgeYears = x
			default:
				r.Month = int(x)
			}
		default:
			if strings.EqualFold(v, Yes) || v == "1" {
				r.symptoms[f.Name] = true
			}
		}
	}
	return r, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
