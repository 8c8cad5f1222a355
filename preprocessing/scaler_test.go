package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler_Fit(t *testing.T) {
	scaler := NewStandardScaler(true, true)

	X := mat.NewDense(4, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
		4.0, 40.0,
	})

	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !scaler.IsFitted() {
		t.Fatal("scaler should be fitted")
	}

	wantMean := []float64{2.5, 25.0}
	// Population standard deviation.
	wantScale := []float64{math.Sqrt(1.25), math.Sqrt(125.0)}
	for j := range wantMean {
		if math.Abs(scaler.Mean[j]-wantMean[j]) > 1e-10 {
			t.Errorf("Mean[%d] = %v, want %v", j, scaler.Mean[j], wantMean[j])
		}
		if math.Abs(scaler.Scale[j]-wantScale[j]) > 1e-10 {
			t.Errorf("Scale[%d] = %v, want %v", j, scaler.Scale[j], wantScale[j])
		}
	}
}

func TestStandardScaler_Transform(t *testing.T) {
	scaler := NewStandardScaler(true, true)

	X := mat.NewDense(3, 1, []float64{1.0, 2.0, 3.0})
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	// z-scores must have mean 0 and unit variance.
	r, _ := scaled.Dims()
	var sum, sumSq float64
	for i := 0; i < r; i++ {
		sum += scaled.At(i, 0)
		sumSq += scaled.At(i, 0) * scaled.At(i, 0)
	}
	if math.Abs(sum/float64(r)) > 1e-10 {
		t.Errorf("scaled mean = %v, want 0", sum/float64(r))
	}
	if math.Abs(sumSq/float64(r)-1.0) > 1e-10 {
		t.Errorf("scaled variance = %v, want 1", sumSq/float64(r))
	}
}

func TestStandardScaler_InverseTransform(t *testing.T) {
	scaler := NewStandardScaler(true, true)

	X := mat.NewDense(4, 2, []float64{
		5.0, 100.0,
		6.0, 150.0,
		7.0, 125.0,
		8.0, 175.0,
	})

	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform: %v", err)
	}

	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(restored.At(i, j)-X.At(i, j)) > 1e-9 {
				t.Errorf("restored[%d,%d] = %v, want %v", i, j, restored.At(i, j), X.At(i, j))
			}
		}
	}
}

func TestStandardScaler_Errors(t *testing.T) {
	scaler := NewStandardScaler(true, true)

	if _, err := scaler.Transform(mat.NewDense(1, 1, []float64{1.0})); err == nil {
		t.Error("expected not-fitted error")
	}
	if err := scaler.Fit(&mat.Dense{}); err == nil {
		t.Error("expected empty-data error")
	}

	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := scaler.Transform(mat.NewDense(2, 3, nil)); err == nil {
		t.Error("expected dimension error for wrong feature count")
	}
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	scaler := NewStandardScaler(true, true)

	X := mat.NewDense(3, 1, []float64{7.0, 7.0, 7.0})
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	// Constant columns map to zero instead of NaN.
	for i := 0; i < 3; i++ {
		if v := scaled.At(i, 0); v != 0 {
			t.Errorf("scaled[%d] = %v, want 0", i, v)
		}
	}
}
