package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macroquant/btcmacro/dataset"
	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
)

// fullTable builds a table containing the target and all five macro
// columns, with the price an exact linear combination of the features so
// the fit is perfect by construction.
func fullTable(t *testing.T, rows int) *dataset.Table {
	t.Helper()

	tbl := dataset.New(nil)
	cols := map[string][]float64{}
	for _, f := range MacroFeatures {
		cols[f] = make([]float64, rows)
	}
	price := make([]float64, rows)

	for i := 0; i < rows; i++ {
		x := float64(i + 1)
		cols["gold_price_usd"][i] = 1200 + 10*x
		cols["SP500"][i] = 2000 + 25*x + 3*math.Mod(x, 5)
		cols["fed_funds_rate"][i] = 0.1 + 0.03*x + 0.02*math.Mod(x, 4)
		cols["US_inflation"][i] = 1.5 + 0.05*math.Mod(x, 7)
		cols["US_M2_money_supply_in_billions"][i] = 12000 + 80*x + 5*math.Mod(x, 3)

		price[i] = 500 +
			5*cols["gold_price_usd"][i] +
			27*cols["SP500"][i] -
			3400*cols["fed_funds_rate"][i] +
			540*cols["US_inflation"][i] -
			2.7*cols["US_M2_money_supply_in_billions"][i]
	}

	require.NoError(t, tbl.AddColumn(TargetColumn, price))
	for _, f := range MacroFeatures {
		require.NoError(t, tbl.AddColumn(f, cols[f]))
	}
	return tbl
}

func TestAvailableFeatures_FullCatalog(t *testing.T) {
	tbl := fullTable(t, 24)

	got, err := AvailableFeatures(tbl)
	require.NoError(t, err)
	// All five candidates, in the declared catalog order.
	assert.Equal(t, MacroFeatures, got)
}

func TestAvailableFeatures_Subset(t *testing.T) {
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn(TargetColumn, []float64{1, 2, 3}))
	// Insert out of catalog order; the result must follow the catalog.
	require.NoError(t, tbl.AddColumn("fed_funds_rate", []float64{0.1, 0.2, 0.3}))
	require.NoError(t, tbl.AddColumn("gold_price_usd", []float64{1200, 1210, 1220}))

	got, err := AvailableFeatures(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"gold_price_usd", "fed_funds_rate"}, got)
}

func TestAvailableFeatures_NonePresent(t *testing.T) {
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn(TargetColumn, []float64{1, 2, 3}))
	require.NoError(t, tbl.AddColumn("unrelated", []float64{1, 2, 3}))

	_, err := AvailableFeatures(tbl)
	require.Error(t, err)

	var dataErr *bmErrors.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bmErrors.KindNoFeatures, dataErr.Kind)
	// The message lists what the dataset does have.
	assert.Contains(t, dataErr.Message, "unrelated")
}

func TestAvailableFeatures_EmptyTable(t *testing.T) {
	_, err := AvailableFeatures(dataset.New(nil))
	require.Error(t, err)

	var dataErr *bmErrors.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bmErrors.KindDataUnavailable, dataErr.Kind)
}

func TestTrain_EmptySelection(t *testing.T) {
	_, err := Train(fullTable(t, 12), nil)
	require.Error(t, err)

	var dataErr *bmErrors.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bmErrors.KindEmptySelection, dataErr.Kind)
}

func TestTrain_EmptyDataset(t *testing.T) {
	_, err := Train(dataset.New(nil), []string{"gold_price_usd"})
	require.Error(t, err)

	var dataErr *bmErrors.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bmErrors.KindDataUnavailable, dataErr.Kind)
}

func TestTrain_UnknownFeature(t *testing.T) {
	_, err := Train(fullTable(t, 12), []string{"not_a_column"})
	require.Error(t, err)

	var valueErr *bmErrors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}

func TestTrain_AllRowsDropped(t *testing.T) {
	nan := math.NaN()
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn(TargetColumn, []float64{nan, nan, nan}))
	require.NoError(t, tbl.AddColumn("gold_price_usd", []float64{1200, 1210, 1220}))

	_, err := Train(tbl, []string{"gold_price_usd"})
	require.Error(t, err)

	var dataErr *bmErrors.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, bmErrors.KindTrainingFailed, dataErr.Kind)
}

func TestTrain_PerfectFit(t *testing.T) {
	tbl := fullTable(t, 36)

	report, err := Train(tbl, MacroFeatures)
	require.NoError(t, err)

	// The price is an exact linear combination, so the fit is perfect.
	assert.InDelta(t, 1.0, report.RSquared, 1e-6)
	assert.InDelta(t, 0.0, report.RMSE, 1e-2)
	assert.GreaterOrEqual(t, report.RMSE, 0.0)
	assert.Equal(t, 36, report.Rows)
	assert.Len(t, report.Coefficients, 5)
}

func TestTrain_Deterministic(t *testing.T) {
	tbl := fullTable(t, 36)
	features := []string{"gold_price_usd", "fed_funds_rate"}

	first, err := Train(tbl, features)
	require.NoError(t, err)
	second, err := Train(tbl, features)
	require.NoError(t, err)

	assert.Equal(t, first.RSquared, second.RSquared)
	assert.Equal(t, first.RMSE, second.RMSE)
	assert.Equal(t, first.Intercept, second.Intercept)
	for i := range first.Coefficients {
		assert.Equal(t, first.Coefficients[i].Value, second.Coefficients[i].Value)
	}
}

func TestTrain_MinimalSyntheticDataset(t *testing.T) {
	// x = [1, 2, 3], y = [10, 20, 30]: coefficient 10, intercept 0.
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn(TargetColumn, []float64{10, 20, 30}))
	require.NoError(t, tbl.AddColumn("gold_price_usd", []float64{1, 2, 3}))

	report, err := Train(tbl, []string{"gold_price_usd"})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, report.Coefficients[0].Value, 1e-6)
	assert.InDelta(t, 0.0, report.Intercept, 1e-6)
	assert.InDelta(t, 1.0, report.RSquared, 1e-9)

	price, err := report.Predict([]float64{4})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, price, 1e-6)
}

func TestPredict_Linearity(t *testing.T) {
	report, err := Train(fullTable(t, 24), MacroFeatures)
	require.NoError(t, err)

	// Prediction equals intercept + dot(coefficients, v) for any vector,
	// including ones far outside the training range. No clamping.
	vectors := [][]float64{
		{1300, 2500, 1.0, 2.0, 14000},
		{0, 0, 0, 0, 0},
		{10000, 99999, 25, -5, 1e6},
	}
	for _, v := range vectors {
		want := report.Intercept
		for i, c := range report.Coefficients {
			want += c.Value * v[i]
		}
		got, err := report.Predict(v)
		require.NoError(t, err)
		assert.InDelta(t, want, got, math.Abs(want)*1e-9+1e-6)
	}

	_, err = report.Predict([]float64{1, 2})
	assert.Error(t, err, "short vector must be rejected")
}

func TestTrain_DropsMissingRows(t *testing.T) {
	nan := math.NaN()
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn(TargetColumn, []float64{10, 20, nan, 40, 50}))
	require.NoError(t, tbl.AddColumn("gold_price_usd", []float64{1, 2, 3, nan, 5}))

	report, err := Train(tbl, []string{"gold_price_usd"})
	require.NoError(t, err)

	// Rows 3 and 4 have a missing value somewhere and must be gone.
	assert.Equal(t, 3, report.Rows)
	assert.InDelta(t, 10.0, report.Coefficients[0].Value, 1e-6)
}

func TestTrain_SliderSpecs(t *testing.T) {
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn(TargetColumn, []float64{10, 20, 30, 40, 50}))
	require.NoError(t, tbl.AddColumn("gold_price_usd", []float64{100, 200, 300, 400, 500}))

	report, err := Train(tbl, []string{"gold_price_usd"})
	require.NoError(t, err)

	require.Len(t, report.Sliders, 1)
	s := report.Sliders[0]
	assert.Equal(t, "gold_price_usd", s.Feature)
	assert.Equal(t, 100.0, s.Min)
	assert.Equal(t, 500.0, s.Max)
	assert.Equal(t, 300.0, s.Default)
	assert.InDelta(t, 4.0, s.Step, 1e-10) // (max-min)/100
}

func TestBuildSliders_ConstantFeature(t *testing.T) {
	// A feature constant on the cleaned rows collapses min and max; the
	// step must still be positive or the range input is invalid.
	tbl := dataset.New(nil)
	require.NoError(t, tbl.AddColumn("fed_funds_rate", []float64{0.25, 0.25, 0.25}))

	sliders, err := buildSliders(tbl, []string{"fed_funds_rate"})
	require.NoError(t, err)
	require.Len(t, sliders, 1)

	s := sliders[0]
	assert.Equal(t, s.Min, s.Max)
	assert.Equal(t, 0.25, s.Default)
	assert.Greater(t, s.Step, 0.0)
}

func TestTrain_StandardizedCoefficients(t *testing.T) {
	report, err := Train(fullTable(t, 24), MacroFeatures)
	require.NoError(t, err)

	// Standardized = coefficient × feature std dev; sign must carry over.
	for _, c := range report.Coefficients {
		if c.Value != 0 {
			assert.Equal(t, math.Signbit(c.Value), math.Signbit(c.Standardized),
				"sign flipped for %s", c.Feature)
		}
	}
}
