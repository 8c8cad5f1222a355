// Package metrics provides regression evaluation metrics.
//
// The model report surfaces R² and RMSE; MAE and explained variance are
// available for the CLI's verbose output. All functions take gonum vectors
// and validate shapes before computing.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
)

// MSE returns the mean squared error between true and predicted values.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, bmErrors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, bmErrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE returns the root mean squared error, in the target's original units
// (USD for the BTC price target).
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, bmErrors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, bmErrors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination between true and
// predicted values.
//
// R² = 1 - RSS/TSS measures the proportion of variance in the target that
// the model explains. The best possible score is 1.0 (perfect fit); a model
// no better than predicting the mean scores 0, and worse models go negative.
//
// Parameters:
//   - yTrue: True target values as a vector
//   - yPred: Predicted values as a vector
//
// Returns:
//   - float64: R² value (at most 1.0, unbounded below)
//   - error: nil if successful, otherwise an error describing the failure
//
// Errors:
//   - ValueError: if the input vectors are empty, or if yTrue has no
//     variance (R² is undefined there)
//   - DimensionError: if yTrue and yPred have different lengths
//
// Example:
//
//	r2, err := metrics.R2Score(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("R²: %.4f\n", r2)
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, bmErrors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, bmErrors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		yp := yPred.AtVec(i)
		tss += (yt - yMean) * (yt - yMean)
		rss += (yt - yp) * (yt - yp)
	}

	if tss == 0 {
		return 0, bmErrors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// ExplainedVariance returns the explained variance regression score,
// 1 - Var(yTrue - yPred) / Var(yTrue). Unlike R² it ignores a systematic
// offset in the predictions.
func ExplainedVariance(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, bmErrors.NewValueError("ExplainedVariance", "empty vector")
	}
	if yPred.Len() != n {
		return 0, bmErrors.NewDimensionError("ExplainedVariance", n, yPred.Len(), 0)
	}

	var yMean, diffMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
		diffMean += yTrue.AtVec(i) - yPred.AtVec(i)
	}
	yMean /= float64(n)
	diffMean /= float64(n)

	var varY, varDiff float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		d := yt - yPred.AtVec(i)
		varY += (yt - yMean) * (yt - yMean)
		varDiff += (d - diffMean) * (d - diffMean)
	}
	varY /= float64(n)
	varDiff /= float64(n)

	if varY == 0 {
		return 0, bmErrors.NewValueError("ExplainedVariance", "no variance in yTrue")
	}
	return 1 - varDiff/varY, nil
}
