package features

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Categorical Kind = iota
	Numeric
)

type Field struct {
	Name string
	Kind Kind
}

const (
	FieldState    = "state_patient"
	FieldGender   = "gender"
	FieldDuration = "durationofillness"
	FieldAge      = "age_year"
	FieldMonth    = "month"
)

// Group is a symptom group; Symptoms[0] is the group toggle itself.
type Group struct {
	Name     string
	Symptoms []string
}

var Groups = []Group{
	{"Diarrheal Diseases", []string{"diarrhoea", "dia_fever", "dia_diarrhoea", "dia_dysentery", "dia_pain", "dia_vomiting"}},
	{"Respiratory Infections", []string{"respiratory_c", "res_sore", "res_cough", "res_rhinorrhoe", "res_breath", "res_fever"}},
	{"Fever and Inflammatory Responses", []string{"fev_fever", "fev_any_loc_sym", "rash_mac", "rash_papule", "rash_mac_pop", "rash_eschar", "rash_pustule", "rash_bullae", "rash_fev"}},
	{"Jaundice and Hepatic Issues", []string{"jaundice", "jau_fever", "jau_jaundice", "jau_urine", "jau_hep", "jau_nausea", "jau_vomiting", "jau_abpain"}},
	{"Neurological Symptoms (Encephalitis)", []string{"encephalitis", "enc_fever", "enc_seizures", "enc_rigidity", "enc_sensorium", "enc_ment_status", "enc_somnelen", "enc_irritab"}},
	{"Hemorrhagic Symptoms", []string{"hem_fever", "hem_rigors", "hem_headache", "hem_chills", "hem_malaise", "hem_artharalgia", "hem_myalgia", "hem_hemanifestat", "hem_retro_orbital"}},
	{"Conjunctivitis Symptoms", []string{"conjuctivities", "con_fever", "con_redness", "con_discharge", "con_scrusting"}},
}

var DisplayNames = map[string]string{
	"diarrhoea": "Diarrhoea", "dia_fever": "Fever", "dia_diarrhoea": "Diarrhoea", "dia_dysentery": "Dysentery",
	"dia_pain": "Abdominal Pain", "dia_vomiting": "Vomiting",
	"respiratory_c": "Respiratory Contact", "res_sore": "Sore Throat", "res_cough": "Cough",
	"res_rhinorrhoe": "Runny Nose", "res_breath": "Breathing Difficulty", "res_fever": "Fever",
	"fev_fever": "Fever", "fev_any_loc_sym": "Local Symptoms", "rash_mac": "Macular Rash", "rash_papule": "Papule",
	"rash_mac_pop": "Maculopapular Rash", "rash_eschar": "Eschar", "rash_pustule": "Pustular Rash",
	"rash_bullae": "Bullae", "rash_fev": "Fever Rash",
	"jaundice": "Jaundice", "jau_fever": "Fever", "jau_jaundice": "Jaundice", "jau_urine": "Dark Urine",
	"jau_hep": "Hepatic Pain", "jau_nausea": "Nausea", "jau_vomiting": "Vomiting", "jau_abpain": "Abdominal Pain",
	"encephalitis": "Encephalitis", "enc_fever": "Fever", "enc_seizures": "Seizures", "enc_rigidity": "Rigidity",
	"enc_sensorium": "Altered Sensorium", "enc_ment_status": "Mental Status Change", "enc_somnelen": "Somnolence",
	"enc_irritab": "Irritability",
	"hem_fever": "Fever", "hem_rigors": "Rigors", "hem_headache": "Headache", "hem_chills": "Chills",
	"hem_malaise": "Malaise", "hem_artharalgia": "Joint Pain", "hem_myalgia": "Muscle Pain",
	"hem_hemanifestat": "Hemorrhagic Manifestations", "hem_retro_orbital": "Retro Orbital Pain",
	"conjuctivities": "Conjunctivitis", "con_fever": "Fever", "con_redness": "Redness",
	"con_discharge": "Discharge", "con_scrusting": "Scrusting",
}

var States = []string{
	"Andaman And Nicobar Islands", "Andhra Pradesh", "Arunachal Pradesh", "Assam",
	"Bihar", "Chandigarh", "Chhattisgarh", "Delhi", "Goa", "Gujarat", "Haryana",
	"Himachal Pradesh", "Jammu And Kashmir", "Jharkhand", "Karnataka", "Kerala",
	"Ladakh", "Lakshadweep", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya",
	"Mizoram", "Nagaland", "Odisha", "Puducherry", "Punjab", "Rajasthan", "Sikkim",
	"Tamil Nadu", "Telangana", "The Dadra And Nagar Haveli And Daman And Diu",
	"Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
}

var Genders = []string{"Male", "Female"}

var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Schema is the column order the model artifacts were trained on.
// Changing it invalidates every serialized model.
var Schema = buildSchema()

var schemaIndex = func() map[string]int {
	m := make(map[string]int, len(Schema))
	for i, f := range Schema {
		m[f.Name] = i
	}
	return m
}()

var symptomGroup = func() map[string]int {
	m := map[string]int{}
	for gi, g := range Groups {
		for _, s := range g.Symptoms {
			m[s] = gi
		}
	}
	return m
}()

func buildSchema() []Field {
	out := []Field{
		{FieldState, Categorical},
		{FieldGender, Categorical},
		{FieldDuration, Numeric},
	}
	for _, g := range Groups {
		for _, s := range g.Symptoms {
			out = append(out, Field{s, Categorical})
		}
	}
	out = append(out, Field{FieldAge, Numeric}, Field{FieldMonth, Numeric})
	return out
}

func Names() []string {
	out := make([]string, len(Schema))
	for i, f := range Schema {
		out[i] = f.Name
	}
	return out
}

func Index(name string) (int, bool) {
	i, ok := schemaIndex[name]
	return i, ok
}

func IsSymptom(name string) bool {
	_, ok := symptomGroup[name]
	return ok
}

func Symptoms() []string {
	out := []string{}
	for _, g := range Groups {
		out = append(out, g.Symptoms...)
	}
	return out
}

func GroupByName(name string) (Group, bool) {
	for _, g := range Groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}

// ParseMonth accepts a month name ("March", "mar") or a number ("3").
func ParseMonth(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range 1-12", n)
		}
		return n, nil
	}
	if len(s) >= 3 {
		for i, m := range Months {
			if strings.EqualFold(m, s) || strings.EqualFold(m[:3], s) {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}
