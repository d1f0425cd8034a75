package features

import "math"

// Unknown is the code assigned to categorical values never seen in training.
const Unknown = -1

// LabelEncoder maps string categories to their index in Classes. Fit sorts
// the classes; a hand-built encoder keeps whatever order it was given.
type LabelEncoder struct {
	Classes []string
}

func NewLabelEncoder(values []string) *LabelEncoder {
	le := &LabelEncoder{}
	le.Fit(values)
	return le
}

func (le *LabelEncoder) Fit(values []string) {
	set := map[string]struct{}{}
	for _, v := range values {
		set[v] = struct{}{}
	}
	le.Classes = sortedKeys(set)
}

// Transform returns the code for v, or Unknown and false for unseen values.
func (le *LabelEncoder) Transform(v string) (int, bool) {
	for i, c := range le.Classes {
		if c == v {
			return i, true
		}
	}
	return Unknown, false
}

func (le *LabelEncoder) Inverse(code int) (string, bool) {
	if code < 0 || code >= len(le.Classes) {
		return "", false
	}
	return le.Classes[code], true
}

func (le *LabelEncoder) Len() int { return len(le.Classes) }

// Encoding is the per-classifier input representation: one encoder per
// categorical field, and whether numeric fields are truncated to integers.
type Encoding struct {
	Categorical map[string]*LabelEncoder
	IntegerCast bool
}

// FitEncoding fits an encoder for every categorical field over records.
// Symptom encoders always know both Yes and No.
func FitEncoding(records []Record, integerCast bool) Encoding {
	enc := Encoding{Categorical: map[string]*LabelEncoder{}, IntegerCast: integerCast}
	for _, f := range Schema {
		if f.Kind != Categorical {
			continue
		}
		vals := make([]string, 0, len(records)+2)
		if IsSymptom(f.Name) {
			vals = append(vals, No, Yes)
		}
		for _, r := range records {
			s, _ := r.Value(f.Name)
			vals = append(vals, s)
		}
		enc.Categorical[f.Name] = NewLabelEncoder(vals)
	}
	return enc
}

// Encode turns a record into the numeric row a classifier expects. Values
// the encoders have never seen become Unknown and are listed in unseen
// instead of failing the row.
func (e Encoding) Encode(r Record) (vec []float64, unseen []string) {
	vec = make([]float64, len(Schema))
	for i, f := range Schema {
		s, v := r.Value(f.Name)
		if f.Kind == Numeric {
			if e.IntegerCast {
				v = math.Trunc(v)
			}
			vec[i] = v
			continue
		}
		le, ok := e.Categorical[f.Name]
		if !ok {
			if IsSymptom(f.Name) {
				vec[i] = boolToFloat(s == Yes)
				continue
			}
			vec[i] = Unknown
			unseen = append(unseen, f.Name)
			continue
		}
		code, ok := le.Transform(s)
		if !ok {
			unseen = append(unseen, f.Name)
		}
		vec[i] = float64(code)
	}
	return vec, unseen
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
