// Package linear implements ordinary least-squares regression.
//
// Regression fits a linear model with intercept by solving the normal
// equations (Xᵀ X) w = Xᵀ y over gonum matrices. The coefficients minimize
// the sum of squared residuals; the model is immutable after Fit and is
// refit from scratch whenever the feature set changes.
//
// Example:
//
//	reg := linear.NewRegression()
//	if err := reg.Fit(X, y); err != nil {
//	    return err
//	}
//	pred, err := reg.Predict(XNew)
package linear

import (
	"encoding/json"
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/macroquant/btcmacro/core/model"
	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
	"github.com/macroquant/btcmacro/pkg/log"
)

// Regression is an ordinary least-squares linear regression model.
type Regression struct {
	state     *model.StateManager
	weights   *mat.VecDense // one coefficient per feature
	intercept float64
	nFeatures int
	logger    log.Logger
}

// NewRegression creates an untrained OLS regression model.
func NewRegression() *Regression {
	r := &Regression{
		state: model.NewStateManager(),
	}
	r.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "Regression",
		log.ComponentKey, "linear",
	)
	return r
}

// Fit trains the regression model on the provided training data.
//
// An intercept column is prepended to X and the normal equations
// (Xᵀ X) w = Xᵀ y are solved by inverting Xᵀ X. The resulting coefficients
// minimize the sum of squared residuals; after a successful fit the model's
// fitted state is set and the training dimensions are recorded.
//
// Parameters:
//   - X: Feature matrix of shape (n_samples, n_features)
//   - y: Target matrix of shape (n_samples, 1)
//
// Returns:
//   - error: nil if training succeeds, otherwise an error describing the failure
//
// Errors:
//   - ErrEmptyData: if X has no rows or no columns
//   - ErrDimensionMismatch: if the number of samples in X and y don't match
//   - ErrSingularMatrix: if Xᵀ X cannot be inverted, e.g. a constant or
//     duplicated feature column
//
// Example:
//
//	X := mat.NewDense(121, 5, nil) // 121 months, 5 macro features
//	y := mat.NewDense(121, 1, nil) // BTC price per month
//	if err := reg.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
func (lr *Regression) Fit(X, y mat.Matrix) (err error) {
	defer bmErrors.Recover(&err, "Regression.Fit")

	start := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	lr.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	if r == 0 || c == 0 {
		return bmErrors.NewModelError("Regression.Fit", "empty data", bmErrors.ErrEmptyData)
	}
	if ry != r {
		return bmErrors.NewDimensionError("Regression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return bmErrors.NewValueError("Regression.Fit", "y must be a column vector")
	}

	lr.nFeatures = c

	// Design matrix with a leading column of ones for the intercept.
	design := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		design.Set(i, 0, 1.0)
		for j := 0; j < c; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	var xt mat.Dense
	xt.CloneFrom(design.T())

	var xtx mat.Dense
	xtx.Mul(&xt, design)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return bmErrors.NewModelError("Regression.Fit", "singular matrix", bmErrors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var xty mat.VecDense
	xty.MulVec(&xt, yVec)

	// w = (Xᵀ X)⁻¹ Xᵀ y; w[0] is the intercept.
	w := mat.NewVecDense(c+1, nil)
	w.MulVec(&xtxInv, &xty)

	lr.intercept = w.AtVec(0)
	lr.weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.weights.SetVec(j, w.AtVec(j+1))
	}

	lr.state.SetFitted()
	lr.state.SetDimensions(c, r)

	lr.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Predict generates predictions for the input feature matrix using the
// trained model.
//
// Each row is evaluated as y_pred = intercept + X · weights. The model must
// be fitted before calling this method, otherwise it returns an error.
//
// Parameters:
//   - X: Feature matrix of shape (n_samples, n_features) for prediction
//
// Returns:
//   - mat.Matrix: Prediction matrix of shape (n_samples, 1)
//   - error: nil if prediction succeeds, otherwise an error describing the failure
//
// Errors:
//   - ErrNotFitted: if the model hasn't been trained yet
//   - ErrDimensionMismatch: if X has a different number of features than the
//     training data
//
// Example:
//
//	pred, err := reg.Predict(X)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("First prediction: %.2f\n", pred.At(0, 0))
func (lr *Regression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bmErrors.Recover(&err, "Regression.Predict")

	if !lr.state.IsFitted() {
		return nil, bmErrors.NewNotFittedError("Regression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.nFeatures {
		return nil, bmErrors.NewDimensionError("Regression.Predict", lr.nFeatures, c, 1)
	}

	lr.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
	)

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.weights.AtVec(j)
		}
		out.Set(i, 0, pred)
	}

	lr.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, r,
	)
	return out, nil
}

// PredictOne evaluates the fitted line at a single feature vector. Values
// outside the training range are allowed; the line extrapolates without
// clamping.
func (lr *Regression) PredictOne(values []float64) (float64, error) {
	if !lr.state.IsFitted() {
		return 0, bmErrors.NewNotFittedError("Regression", "PredictOne")
	}
	if len(values) != lr.nFeatures {
		return 0, bmErrors.NewDimensionError("Regression.PredictOne", lr.nFeatures, len(values), 1)
	}

	pred := lr.intercept
	for j, v := range values {
		pred += v * lr.weights.AtVec(j)
	}
	return pred, nil
}

// Score returns the coefficient of determination R² on (X, y).
func (lr *Regression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer bmErrors.Recover(&err, "Regression.Score")

	if !lr.state.IsFitted() {
		return 0, bmErrors.NewNotFittedError("Regression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yt := y.At(i, 0)
		yp := yPred.At(i, 0)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yp) * (yt - yp)
	}

	if tss == 0 {
		return 0, bmErrors.NewValueError("Regression.Score", "total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// Coefficients returns a copy of the fitted coefficients, one per feature,
// in training feature order. Returns nil before Fit.
func (lr *Regression) Coefficients() []float64 {
	if lr.weights == nil {
		return nil
	}
	out := make([]float64, lr.weights.Len())
	for i := range out {
		out[i] = lr.weights.AtVec(i)
	}
	return out
}

// Intercept returns the fitted intercept, or 0 before Fit.
func (lr *Regression) Intercept() float64 {
	if !lr.state.IsFitted() {
		return 0
	}
	return lr.intercept
}

// NFeatures returns the number of features the model was trained on.
func (lr *Regression) NFeatures() int { return lr.nFeatures }

// IsFitted reports whether Fit has completed successfully.
func (lr *Regression) IsFitted() bool { return lr.state.IsFitted() }

// Snapshot is the serialized form of a fitted model.
type Snapshot struct {
	Model        string    `json:"model"`
	Features     []string  `json:"features,omitempty"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// ExportJSON writes a JSON snapshot of the fitted model to w. The feature
// names are recorded alongside the coefficients so the snapshot is
// self-describing.
func (lr *Regression) ExportJSON(w io.Writer, features []string) error {
	if !lr.state.IsFitted() {
		return bmErrors.NewNotFittedError("Regression", "ExportJSON")
	}

	snap := Snapshot{
		Model:        "Regression",
		Features:     features,
		Coefficients: lr.Coefficients(),
		Intercept:    lr.intercept,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&snap)
}
