// Command hdlogit fits and applies high-dimensional logistic regression
// models from CSV files.
//
//	hdlogit fit -data train.csv [-config fit.yaml] [-out model.json] [-plot hdic.png] [-tune]
//	hdlogit predict -model model.json -data test.csv
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/hdlogit/core/model"
	"github.com/YuminosukeSato/hdlogit/metrics"
	"github.com/YuminosukeSato/hdlogit/pkg/errors"
	"github.com/YuminosukeSato/hdlogit/pkg/log"
	"github.com/YuminosukeSato/hdlogit/preprocessing"
	"github.com/YuminosukeSato/hdlogit/sklearn/linear_model"
)

const usage = `usage:
  hdlogit fit -data FILE [-config FILE] [-out FILE] [-plot FILE] [-tune]
  hdlogit predict -model FILE -data FILE`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("hdlogit failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "fit":
		return runFit(args[1:], stdout, stderr)
	case "predict":
		return runPredict(args[1:], stdout, stderr)
	default:
		fmt.Fprintln(stderr, usage)
		return errors.Newf("unknown command %q", args[0])
	}
}

// setupLogging routes slog records and library warnings to stderr.
func setupLogging(stderr io.Writer, level string) error {
	if err := log.SetupLoggerTo(stderr, level); err != nil {
		return err
	}
	zl := zerolog.New(stderr).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(func(w error) {
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			zl.Warn().EmbedObject(m).Msg(w.Error())
			return
		}
		zl.Warn().Msg(w.Error())
	})
	return nil
}

type selectedFeature struct {
	Index int     `json:"index"`
	Name  string  `json:"name,omitempty"`
	Coef  float64 `json:"coef"`
}

type fitSummary struct {
	Samples     int               `json:"n_samples"`
	Features    int               `json:"n_features"`
	Criterion   string            `json:"ic"`
	Wn          float64           `json:"wn"`
	Intercept   float64           `json:"intercept"`
	Selected    []selectedFeature `json:"selected"`
	Removed     []int             `json:"removed"`
	PathLength  int               `json:"path_length"`
	Loss        float64           `json:"loss"`
	HammingLoss float64           `json:"hamming_loss"`
	Accuracy    float64           `json:"accuracy"`
	LogLoss     float64           `json:"log_loss"`
	AUC         float64           `json:"auc"`
}

func runFit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataPath := fs.String("data", "", "training CSV (required)")
	configPath := fs.String("config", "", "YAML fit configuration; defaults when missing")
	outPath := fs.String("out", "", "write the model weights JSON to this path")
	plotPath := fs.String("plot", "", "save the HDIC trajectory as an image (png, svg, pdf)")
	tune := fs.Bool("tune", false, "tune wn over the configured grid after fitting")
	ic := fs.String("ic", "", "information criterion: HQIC, AIC or BIC (overrides the config)")
	wn := fs.Float64("wn", 0, "HDIC penalty weight (overrides the config)")
	method := fs.String("method", "", "minimizer (overrides the config)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides the config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataPath == "" {
		return errors.New("fit: -data is required")
	}

	cfg, err := LoadFitConfig(*configPath)
	if err != nil {
		return err
	}
	// 明示的に指定されたフラグだけが設定ファイルを上書きする
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ic":
			cfg.IC = *ic
		case "wn":
			cfg.Wn = *wn
		case "method":
			cfg.Method = *method
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(stderr, cfg.LogLevel); err != nil {
		return err
	}
	defer errors.SetZerologWarnFunc(nil)

	ds, err := loadDataset(*dataPath, cfg.Header, cfg.LabelColumn, 0)
	if err != nil {
		return err
	}
	if ds.y == nil {
		return errors.New("fit: the data has no label column")
	}

	b := &bundle{
		est:         linear_model.NewHDLogisticRegression(cfg.Options()...),
		features:    ds.features,
		header:      cfg.Header,
		labelColumn: cfg.LabelColumn,
	}
	var X mat.Matrix = ds.X
	if cfg.Standardize {
		b.scaler = preprocessing.NewStandardScalerDefault()
		if X, err = b.scaler.FitTransform(ds.X); err != nil {
			return err
		}
	}

	y := mat.NewDense(len(ds.y), 1, ds.y)
	if err := b.est.Fit(X, y); err != nil {
		return err
	}
	if *tune {
		if _, err := b.est.TuneWn(X, y, cfg.Tune.IC, cfg.Tune.Grid); err != nil {
			return err
		}
	}

	summary, err := summarize(b, X, y)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}

	if *outPath != "" {
		if err := model.SaveWeights(b, *outPath); err != nil {
			return err
		}
	}
	if *plotPath != "" {
		if err := plotHDIC(b.est.Result(), *plotPath); err != nil {
			return err
		}
	}
	return nil
}

func summarize(b *bundle, X mat.Matrix, y *mat.Dense) (*fitSummary, error) {
	est := b.est
	proba, err := est.PredictProba(X)
	if err != nil {
		return nil, err
	}
	hamming, err := est.Score(X, y)
	if err != nil {
		return nil, err
	}
	labels, err := est.Predict(X)
	if err != nil {
		return nil, err
	}
	n, p := X.Dims()
	// [0, 1] の確率ラベルは Score と同じく 0.5 で二値化して評価する
	yv := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if y.At(i, 0) > 0.5 {
			yv.SetVec(i, 1)
		}
	}
	pv := mat.NewVecDense(n, mat.Col(nil, 0, proba))
	logLoss, err := metrics.BinaryLogLoss(yv, pv)
	if err != nil {
		return nil, err
	}
	auc, err := metrics.AUCMatrix(yv, proba)
	if err != nil {
		return nil, err
	}
	accuracy, err := metrics.Accuracy(yv, mat.NewVecDense(n, mat.Col(nil, 0, labels)))
	if err != nil {
		return nil, err
	}

	res := est.Result()
	params := est.GetParams()
	s := &fitSummary{
		Samples:     n,
		Features:    p,
		Criterion:   params["ic"].(string),
		Wn:          est.Wn(),
		Intercept:   est.Intercept(),
		Selected:    make([]selectedFeature, 0, len(res.Model)),
		Removed:     append([]int{}, res.Removed...),
		PathLength:  res.IterCGA,
		Loss:        est.Loss(),
		HammingLoss: hamming,
		Accuracy:    accuracy,
		LogLoss:     logLoss,
		AUC:         auc,
	}
	for _, j := range res.Model {
		f := selectedFeature{Index: j, Coef: res.Coef[j]}
		if j < len(b.features) {
			f.Name = b.features[j]
		}
		s.Selected = append(s.Selected, f)
	}
	return s, nil
}

func runPredict(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelPath := fs.String("model", "", "model weights JSON written by fit (required)")
	dataPath := fs.String("data", "", "CSV to score (required)")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" || *dataPath == "" {
		return errors.New("predict: -model and -data are required")
	}
	if err := setupLogging(stderr, *logLevel); err != nil {
		return err
	}
	defer errors.SetZerologWarnFunc(nil)

	b := &bundle{est: linear_model.NewHDLogisticRegression()}
	if err := model.LoadWeights(b, *modelPath); err != nil {
		return err
	}
	nFeatures := len(b.est.Coef())

	ds, err := loadDataset(*dataPath, b.header, b.labelColumn, nFeatures)
	if err != nil {
		return err
	}
	var X mat.Matrix = ds.X
	if b.scaler != nil {
		if X, err = b.scaler.Transform(ds.X); err != nil {
			return err
		}
	}

	proba, err := b.est.PredictProba(X)
	if err != nil {
		return err
	}
	labels, err := b.est.Predict(X)
	if err != nil {
		return err
	}
	if ds.y != nil {
		score, err := b.est.Score(X, mat.NewDense(len(ds.y), 1, ds.y))
		if err != nil {
			return err
		}
		slog.Info("scored labeled data", log.OperationKey, log.OperationScore, log.ScoreKey, score)
	}
	return writePredictions(stdout, proba, labels)
}

func loadDataset(path string, header bool, labelColumn, nFeatures int) (*dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return readDataset(f, header, labelColumn, nFeatures)
}
