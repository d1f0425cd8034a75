package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.uber.org/zap"

	"virusscope/internal/data"
	"virusscope/internal/features"
	"virusscope/internal/models"
	"virusscope/pkg/utils"
)

type dataset struct {
	X [][]float64
	y []int
}

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	regen := flag.Bool("regen", true, "Regenerate the synthetic dataset")
	n := flag.Int("n", 20000, "Number of synthetic cases")
	seed := flag.Int64("seed", 42, "Random seed for generation and splitting")
	out := flag.String("out", "data/synthetic.csv", "Dataset CSV path")
	algo := flag.String("algo", "rf", "Multiclass algorithm: dt|rf|bagging|gb")
	binAlgo := flag.String("binary_algo", "gb", "Binary gate algorithm: dt|rf|bagging|gb")
	gated := flag.String("gated", "Dengue", "Label the binary gate separates from the rest")
	estimators := flag.Int("estimators", 30, "Number of ensemble estimators (rf/bagging/gb)")
	maxDepth := flag.Int("max_depth", 8, "Maximum tree depth")
	minSamples := flag.Int("min_samples", 20, "Minimum samples to split")
	lr := flag.Float64("lr", 0.1, "GradientBoosting learning rate")
	binOut := flag.String("binary_out", "models/binary_model.gob", "Binary artifact path")
	multiOut := flag.String("multiclass_out", "models/multiclass_model.gob", "Multiclass artifact path")
	curve := flag.Bool("curve", true, "Write a multiclass learning curve (PNG and CSV)")
	curvePoints := flag.Int("curve_points", 8, "Number of points on the curve")
	curveImg := flag.String("curve_out_img", "data/learning_curve.png", "Curve PNG path")
	curveCsv := flag.String("curve_out_csv", "data/learning_curve.csv", "Curve CSV path")
	curveMin := flag.Int("curve_min", 200, "Smallest training size on the curve")
	curveLog := flag.Bool("curve_log", true, "Space curve sizes logarithmically")
	flag.Parse()

	if *regen {
		logger.Info("generating synthetic cases", zap.Int("n", *n), zap.String("out", *out))
		if err := data.GenerateSyntheticCases(*n, *seed, *out); err != nil {
			logger.Fatal("generate dataset", zap.Error(err))
		}
	}

	cases, err := data.ReadCases(*out)
	if err != nil {
		logger.Fatal("read dataset", zap.Error(err))
	}
	rng := rand.New(rand.NewSource(*seed))

	labels := make([]string, len(cases))
	for i, c := range cases {
		labels[i] = c.Virus
	}
	target := features.NewLabelEncoder(labels)
	y := make([]int, len(cases))
	counts := map[string]int{}
	for i, l := range labels {
		y[i], _ = target.Transform(l)
		counts[l]++
	}
	logger.Info("class distribution", zap.Any("counts", counts))
	if _, ok := target.Transform(*gated); !ok {
		logger.Fatal("gated label not present in dataset", zap.String("gated", *gated))
	}

	trainIdx, testIdx := stratifiedSplit(y, target.Len(), 0.8, rng)
	trainRecs := make([]features.Record, len(trainIdx))
	for i, j := range trainIdx {
		trainRecs[i] = cases[j].Record
	}

	multiEnc, binEnc := fitEncodings(trainRecs)

	// Multiclass: every virus.
	multiTrain, multiTest := encodeSplit(cases, y, trainIdx, testIdx, multiEnc)
	multi, err := models.NewModel(*algo, *estimators, *maxDepth, *minSamples, *lr)
	if err != nil {
		logger.Fatal("build multiclass model", zap.Error(err))
	}
	if err := multi.Fit(multiTrain.X, multiTrain.y, target.Len()); err != nil {
		logger.Fatal("train multiclass model", zap.Error(err))
	}
	report(logger, "multiclass", multi, multiTest, target.Len())
	multiArt := models.NewArtifact(*algo, multi, multiEnc, *target)
	if err := multiArt.Save(*multiOut); err != nil {
		logger.Fatal("save multiclass model", zap.Error(err))
	}
	logger.Info("model saved", zap.String("kind", models.KindMulticlass), zap.String("path", *multiOut))

	// Binary gate: class 0 is the gated label, class 1 everything else.
	gate := features.LabelEncoder{Classes: []string{*gated, "Non-" + *gated}}
	gateLabel := func(i int) int {
		if labels[i] == *gated {
			return 0
		}
		return 1
	}
	binTrain, binTest := encodeSplit(cases, nil, trainIdx, testIdx, binEnc)
	for i, j := range trainIdx {
		binTrain.y[i] = gateLabel(j)
	}
	for i, j := range testIdx {
		binTest.y[i] = gateLabel(j)
	}
	bin, err := models.NewModel(*binAlgo, *estimators, *maxDepth, *minSamples, *lr)
	if err != nil {
		logger.Fatal("build binary model", zap.Error(err))
	}
	if err := bin.Fit(binTrain.X, binTrain.y, 2); err != nil {
		logger.Fatal("train binary model", zap.Error(err))
	}
	report(logger, "binary", bin, binTest, 2)
	binArt := models.NewArtifact(*binAlgo, bin, binEnc, gate)
	if err := binArt.Save(*binOut); err != nil {
		logger.Fatal("save binary model", zap.Error(err))
	}
	logger.Info("model saved", zap.String("kind", models.KindBinary), zap.String("path", *binOut))
	fmt.Println("Binary:", bin.Name(), "| Multiclass:", multi.Name())

	if *curve {
		sizes := computeCurveSizes(len(multiTrain.X), *curvePoints, *curveMin, *curveLog)
		trainAcc := make([]float64, len(sizes))
		testAcc := make([]float64, len(sizes))
		trainF1 := make([]float64, len(sizes))
		testF1 := make([]float64, len(sizes))
		for k, s := range sizes {
			sub := dataset{X: multiTrain.X[:s], y: multiTrain.y[:s]}
			cm, err := models.NewModel(*algo, *estimators, *maxDepth, *minSamples, *lr)
			if err != nil {
				logger.Fatal("build curve model", zap.Error(err))
			}
			if err := cm.Fit(sub.X, sub.y, target.Len()); err != nil {
				logger.Fatal("train curve point", zap.Int("size", s), zap.Error(err))
			}
			pTrain := cm.Predict(sub.X)
			pTest := cm.Predict(multiTest.X)
			trainAcc[k] = models.Accuracy(sub.y, pTrain)
			testAcc[k] = models.Accuracy(multiTest.y, pTest)
			_, _, trainF1[k] = models.MacroPRF1(sub.y, pTrain, target.Len())
			_, _, testF1[k] = models.MacroPRF1(multiTest.y, pTest, target.Len())
		}
		if err := writeCurveCSV(*curveCsv, sizes, trainAcc, testAcc, trainF1, testF1); err != nil {
			logger.Warn("write curve csv", zap.Error(err))
		}
		if err := plotCurvePNG(*curveImg, sizes, trainAcc, testAcc, trainF1, testF1); err != nil {
			logger.Warn("write curve png", zap.Error(err))
		} else {
			logger.Info("learning curve written", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
		}
	}
}

// stratifiedSplit shuffles each class separately so both sides keep the
// class proportions.
func stratifiedSplit(y []int, k int, frac float64, rng *rand.Rand) (train, test []int) {
	byClass := make([][]int, k)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	for _, idx := range byClass {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		cut := int(frac * float64(len(idx)))
		if cut == len(idx) && cut > 1 {
			cut--
		}
		train = append(train, idx[:cut]...)
		test = append(test, idx[cut:]...)
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test
}

// encodeSplit encodes both sides of a split. y may be nil, in which case
// the label slices are allocated but left zero.
func encodeSplit(cases []data.Case, y []int, trainIdx, testIdx []int, enc features.Encoding) (dataset, dataset) {
	build := func(idx []int) dataset {
		d := dataset{X: make([][]float64, len(idx)), y: make([]int, len(idx))}
		for i, j := range idx {
			d.X[i], _ = enc.Encode(cases[j].Record)
			if y != nil {
				d.y[i] = y[j]
			}
		}
		return d
	}
	return build(trainIdx), build(testIdx)
}

func report(logger *zap.Logger, kind string, m models.Model, test dataset, k int) {
	preds := m.Predict(test.X)
	prec, rec, f1 := models.MacroPRF1(test.y, preds, k)
	logger.Info("holdout metrics",
		zap.String("kind", kind),
		zap.String("model", m.Name()),
		zap.Int("test_size", len(test.y)),
		zap.Float64("accuracy", models.Accuracy(test.y, preds)),
		zap.Float64("macro_precision", prec),
		zap.Float64("macro_recall", rec),
		zap.Float64("macro_f1", f1),
	)
}

func writeCurveCSV(path string, sizes []int, trainAcc, testAcc, trainF1, testF1 []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"size", "train_acc", "test_acc", "train_f1", "test_f1"}); err != nil {
		return err
	}
	for i := range sizes {
		rec := []string{
			strconv.Itoa(sizes[i]),
			fmt.Sprintf("%.6f", trainAcc[i]), fmt.Sprintf("%.6f", testAcc[i]),
			fmt.Sprintf("%.6f", trainF1[i]), fmt.Sprintf("%.6f", testF1[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func plotCurvePNG(path string, sizes []int, trainAcc, testAcc, trainF1, testF1 []float64) error {
	p := plot.New()
	p.Title.Text = "Multiclass learning curve"
	p.X.Label.Text = "Training cases"
	p.Y.Label.Text = "Metric"
	p.Y.Min = 0
	p.Y.Max = 1

	toXY := func(xs []int, ys []float64) plotter.XYs {
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = float64(xs[i])
			pts[i].Y = ys[i]
		}
		return pts
	}
	if err := plotutil.AddLinePoints(p,
		"Train (acc)", toXY(sizes, trainAcc),
		"Test (acc)", toXY(sizes, testAcc),
		"Train (macro F1)", toXY(sizes, trainF1),
		"Test (macro F1)", toXY(sizes, testF1),
	); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func computeCurveSizes(totalTrain, points, min int, useLog bool) []int {
	if points <= 1 {
		points = 2
	}
	if min < 10 {
		min = 10
	}
	if min > totalTrain {
		min = int(math.Max(10, float64(totalTrain)/2))
	}
	sizes := make([]int, 0, points)
	if useLog {
		ratio := math.Pow(float64(totalTrain)/float64(min), 1.0/float64(points-1))
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)*math.Pow(ratio, float64(i)))))
		}
	} else {
		step := float64(totalTrain-min) / float64(points-1)
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)+float64(i)*step)))
		}
	}
	cleaned := make([]int, 0, len(sizes))
	last := -1
	for _, s := range sizes {
		if s <= last {
			s = last + 1
		}
		if s > totalTrain {
			s = totalTrain
		}
		if s != last {
			cleaned = append(cleaned, s)
			last = s
		}
	}
	cleaned[len(cleaned)-1] = totalTrain
	return cleaned
}

// fitEncodings returns the multiclass encoding, which keeps numeric values as
// floats, and the binary gate encoding, which truncates them to integers.
func fitEncodings(recs []features.Record) (multi, binary features.Encoding) {
	return features.FitEncoding(recs, false), features.FitEncoding(recs, true)
}
