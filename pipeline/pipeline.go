// Package pipeline wires the dataset, feature selection, OLS fit and
// prediction into the contract the presentation layer calls.
//
// Every interaction re-runs the whole select → clean → fit sequence from
// the immutable loaded table; there is no incremental recomputation and no
// cached model state. A Report is immutable once Train returns and is
// discarded whenever the feature selection changes.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/macroquant/btcmacro/dataset"
	"github.com/macroquant/btcmacro/linear"
	"github.com/macroquant/btcmacro/metrics"
	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
	"github.com/macroquant/btcmacro/pkg/log"
	"github.com/macroquant/btcmacro/preprocessing"
)

// TargetColumn is the regression target.
const TargetColumn = "btc_price_usd"

// MacroFeatures is the fixed, ordered catalog of candidate macro indicator
// columns. Feature selection preserves this order.
var MacroFeatures = []string{
	"gold_price_usd",
	"SP500",
	"fed_funds_rate",
	"US_inflation",
	"US_M2_money_supply_in_billions",
}

// AvailableFeatures intersects the candidate catalog with the columns
// actually present in the table, preserving catalog order. An empty
// intersection is a configuration error whose message lists the columns
// the dataset does have.
func AvailableFeatures(t *dataset.Table) ([]string, error) {
	if t == nil || t.IsEmpty() {
		return nil, bmErrors.NewDataError(bmErrors.KindDataUnavailable,
			"pipeline.AvailableFeatures", "dataset is empty or missing")
	}

	var out []string
	for _, f := range MacroFeatures {
		if t.HasColumn(f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, bmErrors.NewDataError(bmErrors.KindNoFeatures,
			"pipeline.AvailableFeatures",
			"none of the candidate macro features are in the dataset; available columns: "+
				strings.Join(t.Columns(), ", ")).
			WithDetails(map[string]any{"available_columns": t.Columns()})
	}
	return out, nil
}

// SliderSpec bounds one feature's input control: [Min, Max] from the
// cleaned training data, Default at the median, Step = (Max-Min)/100.
type SliderSpec struct {
	Feature string  `json:"feature"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

// Coefficient pairs a feature with its fitted coefficient. Standardized is
// the coefficient scaled by the feature's standard deviation, so features
// in different units can be ranked by influence.
type Coefficient struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"coefficient"`
	Standardized float64 `json:"standardized"`
}

// Report is the outcome of one training run.
type Report struct {
	Features     []string      `json:"features"`
	Coefficients []Coefficient `json:"coefficients"`
	Intercept    float64       `json:"intercept"`
	RSquared     float64       `json:"r_squared"`
	RMSE         float64       `json:"rmse"`
	Rows         int           `json:"rows"`
	Sliders      []SliderSpec  `json:"sliders"`

	model  *linear.Regression
	clean  *dataset.Table
	fitted []float64
}

// Model returns the fitted OLS model.
func (r *Report) Model() *linear.Regression { return r.model }

// Clean returns the NaN-free table the model was fitted on.
func (r *Report) Clean() *dataset.Table { return r.clean }

// Fitted returns the in-sample fitted values, aligned with Clean's rows.
func (r *Report) Fitted() []float64 { return r.fitted }

// Predict evaluates the fitted line at a single feature vector given in
// the report's feature order. Out-of-range values extrapolate; the UI's
// slider bounds are the only clamp.
func (r *Report) Predict(values []float64) (float64, error) {
	return Predict(r.model, values)
}

// Predict evaluates model at one feature vector:
// intercept + Σ coefficient_i × value_i.
func Predict(model *linear.Regression, values []float64) (float64, error) {
	if model == nil {
		return 0, bmErrors.NewValueError("pipeline.Predict", "model is nil")
	}
	return model.PredictOne(values)
}

// buildSliders derives one input-control spec per feature from the cleaned
// training data. A feature that is constant on the cleaned rows would give a
// zero step, which range inputs reject, so the step is floored at 1.
func buildSliders(clean *dataset.Table, features []string) ([]SliderSpec, error) {
	sliders := make([]SliderSpec, len(features))
	for j, f := range features {
		stats, err := clean.Stats(f)
		if err != nil {
			return nil, err
		}
		step := (stats.Max - stats.Min) / 100
		if step == 0 {
			step = 1
		}
		sliders[j] = SliderSpec{
			Feature: f,
			Min:     stats.Min,
			Max:     stats.Max,
			Default: stats.Median,
			Step:    step,
		}
	}
	return sliders, nil
}

// Train fits an OLS regression of the BTC price on the selected features.
//
// Rows with a missing value in the target or any selected feature are
// dropped first; R² and RMSE are computed in-sample on the same cleaned
// data the model was fitted on. Errors:
//
//   - empty table: data-unavailable
//   - empty selection: user must select at least one feature
//   - selection naming an absent column: value error
//   - cleaning leaves no rows, or the target is absent or constant:
//     training failure
func Train(t *dataset.Table, features []string) (_ *Report, err error) {
	defer bmErrors.Recover(&err, "pipeline.Train")

	logger := log.GetLoggerWithName("pipeline").With(log.ComponentKey, "train")
	start := time.Now()

	if t == nil || t.IsEmpty() {
		return nil, bmErrors.NewDataError(bmErrors.KindDataUnavailable,
			"pipeline.Train", "dataset is empty or missing")
	}
	if len(features) == 0 {
		return nil, bmErrors.NewDataError(bmErrors.KindEmptySelection,
			"pipeline.Train", "select at least one feature for prediction")
	}
	for _, f := range features {
		if !t.HasColumn(f) {
			return nil, bmErrors.NewValueError("pipeline.Train", "unknown feature column "+f)
		}
	}
	if !t.HasColumn(TargetColumn) {
		return nil, bmErrors.NewDataError(bmErrors.KindTrainingFailed,
			"pipeline.Train", "dataset has no "+TargetColumn+" column")
	}

	checked := append([]string{TargetColumn}, features...)
	clean := t.DropNA(checked...)
	if clean.NumRows() == 0 {
		return nil, bmErrors.NewDataError(bmErrors.KindTrainingFailed,
			"pipeline.Train", "no rows remain after dropping missing values")
	}

	X, err := clean.Matrix(features)
	if err != nil {
		return nil, err
	}
	y, err := clean.Vector(TargetColumn)
	if err != nil {
		return nil, err
	}

	model := linear.NewRegression()
	if err := model.Fit(X, y); err != nil {
		return nil, bmErrors.NewDataError(bmErrors.KindTrainingFailed,
			"pipeline.Train", fmt.Sprintf("could not fit model: %v", err))
	}

	predMat, err := model.Predict(X)
	if err != nil {
		return nil, err
	}

	n := clean.NumRows()
	yVec := mat.NewVecDense(n, nil)
	predVec := mat.NewVecDense(n, nil)
	fitted := make([]float64, n)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, predMat.At(i, 0))
		fitted[i] = predMat.At(i, 0)
	}

	r2, err := metrics.R2Score(yVec, predVec)
	if err != nil {
		return nil, bmErrors.NewDataError(bmErrors.KindTrainingFailed,
			"pipeline.Train", fmt.Sprintf("could not evaluate model: %v", err))
	}
	rmse, err := metrics.RMSE(yVec, predVec)
	if err != nil {
		return nil, err
	}

	// Standardized coefficients for the influence ranking. The fit itself
	// runs on raw feature units.
	scaler := preprocessing.NewStandardScaler(true, true)
	if err := scaler.Fit(X); err != nil {
		return nil, err
	}

	coefs := model.Coefficients()
	coefficients := make([]Coefficient, len(features))
	for j, f := range features {
		coefficients[j] = Coefficient{
			Feature:      f,
			Value:        coefs[j],
			Standardized: coefs[j] * scaler.Scale[j],
		}
	}

	sliders, err := buildSliders(clean, features)
	if err != nil {
		return nil, err
	}

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, len(features),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Report{
		Features:     append([]string(nil), features...),
		Coefficients: coefficients,
		Intercept:    model.Intercept(),
		RSquared:     r2,
		RMSE:         rmse,
		Rows:         n,
		Sliders:      sliders,
		model:        model,
		clean:        clean,
		fitted:       fitted,
	}, nil
}
