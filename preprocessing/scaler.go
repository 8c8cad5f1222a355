// Package preprocessing provides feature scaling utilities.
//
// StandardScaler standardizes features to zero mean and unit variance. The
// training pipeline uses its fitted statistics to express coefficients in
// comparable units (coefficient × feature standard deviation) for the
// influence ranking in the model report; the regression itself runs on raw
// feature units.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/macroquant/btcmacro/core/model"
	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
)

// StandardScaler standardizes features by removing the mean and scaling to
// unit variance: X_scaled = (X - mean) / scale.
type StandardScaler struct {
	state *model.StateManager

	// Mean holds the per-feature mean computed by Fit.
	Mean []float64
	// Scale holds the per-feature standard deviation computed by Fit.
	Scale []float64
	// NFeatures is the feature count seen by Fit.
	NFeatures int

	// WithMean controls whether the mean is subtracted.
	WithMean bool
	// WithStd controls whether values are divided by the standard deviation.
	WithStd bool
}

// NewStandardScaler creates a StandardScaler. With both flags true the
// output is a z-score; disabling a flag skips that part of the transform.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// Fit computes per-feature mean and standard deviation from X.
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer bmErrors.Recover(&err, "StandardScaler.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return bmErrors.NewModelError("StandardScaler.Fit", "empty data", bmErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		if s.WithMean {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}

		if s.WithStd {
			sumSq := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - s.Mean[j]
				sumSq += diff * diff
			}
			s.Scale[j] = math.Sqrt(sumSq / float64(r))
			// Constant columns get scale 1 so Transform stays finite.
			if math.Abs(s.Scale[j]) < 1e-8 {
				s.Scale[j] = 1.0
			}
		} else {
			s.Scale[j] = 1.0
		}
	}

	s.state.SetFitted()
	s.state.SetDimensions(c, r)
	return nil
}

// Transform standardizes X using the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bmErrors.Recover(&err, "StandardScaler.Transform")

	if !s.state.IsFitted() {
		return nil, bmErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, bmErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return out, nil
}

// FitTransform fits the scaler on X and returns the transformed X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer bmErrors.Recover(&err, "StandardScaler.InverseTransform")

	if !s.state.IsFitted() {
		return nil, bmErrors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, bmErrors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return out, nil
}

// IsFitted reports whether Fit has completed successfully.
func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }

// String returns a short description of the scaler configuration.
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
