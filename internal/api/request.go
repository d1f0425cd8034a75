package api

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"virusscope/internal/features"
	"virusscope/internal/scorer"
)

// Month accepts either a month number or a month name in JSON.
type Month int

func (m *Month) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	n, err := features.ParseMonth(s)
	if err != nil {
		return err
	}
	*m = Month(n)
	return nil
}

type PredictRequest struct {
	State            string          `json:"state" binding:"required"`
	Gender           string          `json:"gender" binding:"required"`
	AgeYears         *float64        `json:"age_years" binding:"required_without=DOB,omitempty,gte=0,lte=200"`
	DOB              string          `json:"dob" binding:"omitempty,datetime=2006-01-02"`
	Month            Month           `json:"month" binding:"required,gte=1,lte=12"`
	DurationDays     int             `json:"duration_days" binding:"required,gte=1,lte=3000"`
	EnabledGroups    []string        `json:"enabled_groups" binding:"omitempty,dive,symptom_group"`
	Symptoms         map[string]bool `json:"symptoms" binding:"omitempty,symptom_names"`
	ThresholdPercent *float64        `json:"threshold_percent" binding:"omitempty,gte=0,lte=100"`
}

// Input converts the request into the record builder's input.
func (r PredictRequest) Input() (features.Input, error) {
	in := features.Input{
		State:    r.State,
		Gender:   r.Gender,
		Month:    int(r.Month),
		Duration: r.DurationDays,
		Groups:   r.EnabledGroups,
		Symptoms: r.Symptoms,
	}
	if r.AgeYears != nil {
		in.AgeYears = *r.AgeYears
	}
	if r.DOB != "" {
		dob, err := time.Parse("2006-01-02", r.DOB)
		if err != nil {
			return features.Input{}, fmt.Errorf("dob: %w", err)
		}
		in.DOB = &dob
	}
	return in, nil
}

func (r PredictRequest) Threshold() (*scorer.ThresholdPolicy, error) {
	if r.ThresholdPercent == nil {
		return nil, nil
	}
	p, err := scorer.Fixed(*r.ThresholdPercent)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RegisterValidators adds the symptom_names and symptom_group rules to
// gin's validator. Call it once before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	if err := v.RegisterValidation("symptom_names", validateSymptomNames); err != nil {
		return err
	}
	return v.RegisterValidation("symptom_group", validateSymptomGroup)
}

func validateSymptomNames(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Map {
		return false
	}
	for _, k := range f.MapKeys() {
		if k.Kind() != reflect.String || !features.IsSymptom(k.String()) {
			return false
		}
	}
	return true
}

func validateSymptomGroup(fl validator.FieldLevel) bool {
	_, ok := features.GroupByName(fl.Field().String())
	return ok
}

func formatMonth(m int) string {
	if m >= 1 && m <= 12 {
		return features.Months[m-1]
	}
	return strconv.Itoa(m)
}

// Validate runs the binding rules outside of a gin request.
func (r PredictRequest) Validate() error {
	return binding.Validator.ValidateStruct(r)
}
