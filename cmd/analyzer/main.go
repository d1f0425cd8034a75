package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"virusscope/internal/api"
	"virusscope/internal/config"
	"virusscope/internal/data"
	"virusscope/internal/features"
	"virusscope/internal/models"
	"virusscope/internal/scorer"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	patient := flag.String("patient", "", "Patient JSON file to score")
	dataPath := flag.String("data", "", "Labelled case CSV to evaluate the full pipeline on")
	limit := flag.Int("limit", 0, "Evaluate at most this many cases (0 = all)")
	flag.Parse()

	if (*patient == "") == (*dataPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -patient or -data is required")
		os.Exit(2)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	policy, _ := cfg.Policy()
	sc := scorer.New(cfg.Scoring.GatedLabel, policy, nil)
	src := api.RegistrySource{Registry: models.NewRegistry(cfg.Models.BinaryPath, cfg.Models.MulticlassPath, zap.NewNop())}

	if *patient != "" {
		if err := scorePatient(sc, src, *patient); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := evaluate(sc, src, *dataPath, *limit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scorePatient(sc *scorer.Scorer, src api.RegistrySource, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := api.RegisterValidators(); err != nil {
		return err
	}
	var req api.PredictRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid patient: %w", err)
	}
	in, err := req.Input()
	if err != nil {
		return err
	}
	threshold, err := req.Threshold()
	if err != nil {
		return err
	}
	rec, err := features.BuildRecord(in, time.Now())
	if err != nil {
		return err
	}
	a := features.Assess(rec)
	for _, n := range a.Notes() {
		fmt.Println("note:", n)
	}
	if !a.Predictable {
		return nil
	}

	binary, multi, loadErr := src.Predictors()
	if loadErr != nil {
		fmt.Println("warning:", loadErr)
	}
	res := sc.Score(scorer.Request{Record: rec, Binary: binary, Multiclass: multi, Threshold: threshold})

	fmt.Printf("status: %s (binary %s, multiclass %s)\n", res.Status, res.BinaryStatus, res.MulticlassStatus)
	fmt.Printf("gate verdict: %s\n", res.Verdict)
	fmt.Printf("threshold: %.2f%% (%s)\n", res.ThresholdPercent, res.ThresholdMode)
	fmt.Printf("presentation: %s\n", res.Presentation.Mode)
	for i, e := range res.Presentation.Entries {
		fmt.Printf("  %d. %-24s %6.2f%%\n", i+1, e.Label, e.Percent())
	}
	if len(res.UnseenFields) > 0 {
		fmt.Println("unseen values:", res.UnseenFields)
	}
	return nil
}

// evaluate runs every labelled case through the full scoring pipeline and
// reports how often the presented top entry matches the label.
func evaluate(sc *scorer.Scorer, src api.RegistrySource, path string, limit int) error {
	cases, err := data.ReadCases(path)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(cases) {
		cases = cases[:limit]
	}
	binary, multi, err := src.Predictors()
	if err != nil {
		return err
	}

	var hits, fallback, gated, skipped int
	modes := map[scorer.PresentationMode]int{}
	for _, c := range cases {
		if !features.Assess(c.Record).Predictable {
			skipped++
			continue
		}
		res := sc.Score(scorer.Request{Record: c.Record, Binary: binary, Multiclass: multi})
		modes[res.Presentation.Mode]++
		if res.Presentation.Mode == scorer.TopPrediction {
			fallback++
		}
		if len(res.Filtered) < len(res.Ranked) {
			gated++
		}
		if len(res.Presentation.Entries) > 0 && res.Presentation.Entries[0].Label == c.Virus {
			hits++
		}
	}
	scored := len(cases) - skipped
	if scored == 0 {
		return fmt.Errorf("%s: no predictable cases", path)
	}
	fmt.Printf("cases: %d scored, %d skipped (no symptom detail)\n", scored, skipped)
	fmt.Printf("top-1 accuracy: %.3f\n", float64(hits)/float64(scored))
	fmt.Printf("gate removed %s: %d (%.1f%%)\n", sc.GatedLabel(), gated, 100*float64(gated)/float64(scored))
	fmt.Printf("top-prediction fallback: %d (%.1f%%)\n", fallback, 100*float64(fallback)/float64(scored))
	writeModes(os.Stdout, modes)
	return nil
}

func writeModes(w io.Writer, modes map[scorer.PresentationMode]int) {
	for _, m := range []scorer.PresentationMode{scorer.AboveThreshold, scorer.TopPrediction, scorer.NoPrediction} {
		fmt.Fprintf(w, "  %-16s %d\n", m, modes[m])
	}
}
