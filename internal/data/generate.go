package data

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"virusscope/internal/features"
)

type profile struct {
	Virus  string
	Weight float64
	// probability that each symptom group is present, by group index
	Groups map[int]float64
	// probability of a sub-symptom inside a present group
	Sub float64
	// symptoms that are much more likely than Sub for this virus
	Hallmarks []string
	Peak      []int
	MaxAge    float64
}

var profiles = []profile{
	{Virus: "Dengue", Weight: 0.22, Groups: map[int]float64{2: 0.8, 5: 0.85}, Sub: 0.3,
		Hallmarks: []string{"hem_fever", "hem_headache", "hem_retro_orbital", "hem_myalgia", "hem_artharalgia", "rash_mac_pop"}, Peak: []int{7, 8, 9, 10}, MaxAge: 80},
	{Virus: "Chikungunya", Weight: 0.12, Groups: map[int]float64{2: 0.7, 5: 0.6}, Sub: 0.25,
		Hallmarks: []string{"hem_artharalgia", "fev_fever", "rash_mac"}, Peak: []int{8, 9, 10, 11}, MaxAge: 85},
	{Virus: "Hepatitis A", Weight: 0.1, Groups: map[int]float64{3: 0.9, 0: 0.3}, Sub: 0.3,
		Hallmarks: []string{"jau_jaundice", "jau_urine", "jau_nausea"}, Peak: []int{4, 5, 6}, MaxAge: 20},
	{Virus: "Hepatitis E", Weight: 0.08, Groups: map[int]float64{3: 0.9, 0: 0.2}, Sub: 0.3,
		Hallmarks: []string{"jau_jaundice", "jau_hep", "jau_abpain"}, Peak: []int{6, 7, 8}, MaxAge: 60},
	{Virus: "Influenza A", Weight: 0.16, Groups: map[int]float64{1: 0.95, 5: 0.3}, Sub: 0.3,
		Hallmarks: []string{"res_cough", "res_fever", "res_sore"}, Peak: []int{1, 2, 7, 8}, MaxAge: 90},
	{Virus: "Japanese Encephalitis", Weight: 0.06, Groups: map[int]float64{4: 0.95, 2: 0.3}, Sub: 0.3,
		Hallmarks: []string{"enc_fever", "enc_seizures", "enc_sensorium"}, Peak: []int{7, 8, 9}, MaxAge: 15},
	{Virus: "Rotavirus", Weight: 0.1, Groups: map[int]float64{0: 0.95}, Sub: 0.3,
		Hallmarks: []string{"dia_diarrhoea", "dia_vomiting", "dia_fever"}, Peak: []int{12, 1, 2}, MaxAge: 5},
	{Virus: "Norovirus", Weight: 0.06, Groups: map[int]float64{0: 0.9}, Sub: 0.3,
		Hallmarks: []string{"dia_vomiting", "dia_pain"}, Peak: []int{11, 12, 1}, MaxAge: 90},
	{Virus: "Measles", Weight: 0.05, Groups: map[int]float64{2: 0.9, 1: 0.5, 6: 0.5}, Sub: 0.25,
		Hallmarks: []string{"rash_mac_pop", "fev_fever", "con_redness"}, Peak: []int{2, 3, 4}, MaxAge: 15},
	{Virus: "Adenovirus", Weight: 0.05, Groups: map[int]float64{6: 0.9, 1: 0.5}, Sub: 0.3,
		Hallmarks: []string{"con_redness", "con_discharge", "res_sore"}, Peak: []int{3, 4, 5}, MaxAge: 40},
}

// Viruses lists the labels the generator can emit.
func Viruses() []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Virus
	}
	return out
}

func pickProfile(rng *rand.Rand) profile {
	total := 0.0
	for _, p := range profiles {
		total += p.Weight
	}
	x := rng.Float64() * total
	for _, p := range profiles {
		if x < p.Weight {
			return p
		}
		x -= p.Weight
	}
	return profiles[len(profiles)-1]
}

// SyntheticCase draws one labelled patient.
func SyntheticCase(rng *rand.Rand) (Case, error) {
	p := pickProfile(rng)
	hallmark := map[string]bool{}
	for _, s := range p.Hallmarks {
		hallmark[s] = true
	}
	symptoms := map[string]bool{}
	for gi, g := range features.Groups {
		prob := p.Groups[gi]
		if prob == 0 {
			prob = 0.04
		}
		if rng.Float64() >= prob {
			continue
		}
		symptoms[g.Symptoms[0]] = true
		for _, s := range g.Symptoms[1:] {
			q := p.Sub
			if hallmark[s] {
				q = 0.8
			}
			if rng.Float64() < q {
				symptoms[s] = true
			}
		}
	}

	month := rng.Intn(12) + 1
	if rng.Float64() < 0.6 {
		month = p.Peak[rng.Intn(len(p.Peak))]
	}
	age := float64(rng.Intn(int(p.MaxAge) + 1))
	if rng.Float64() < 0.15 {
		age = float64(rng.Intn(91))
	}
	in := features.Input{
		State:    features.States[rng.Intn(len(features.States))],
		Gender:   features.Genders[rng.Intn(len(features.Genders))],
		AgeYears: age,
		Month:    month,
		Duration: 1 + rng.Intn(14),
		Symptoms: symptoms,
	}
	rec, err := features.BuildRecord(in, time.Now())
	if err != nil {
		return Case{}, err
	}
	return Case{Record: rec, Virus: p.Virus}, nil
}

func GenerateSyntheticCases(n int, seed int64, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(Header()); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		c, err := SyntheticCase(rng)
		if err != nil {
			return fmt.Errorf("case %d: %w", i, err)
		}
		if err := w.Write(append(c.Record.Row(), c.Virus)); err != nil {
			return err
		}
	}
	return nil
}

func ReadCases(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no data rows", path)
	}
	want := len(Header())
	out := make([]Case, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != want {
			return nil, fmt.Errorf("%s line %d: %d columns, want %d", path, i+2, len(row), want)
		}
		rec, err := features.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		out = append(out, Case{Record: rec, Virus: row[want-1]})
	}
	return out, nil
}
