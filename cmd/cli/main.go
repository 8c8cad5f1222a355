// Command cli runs the training pipeline once in a terminal and optionally
// evaluates a what-if scenario given as feature=value pairs.
//
//	cli -data data/btc_macro_monthly.csv \
//	    -features gold_price_usd,fed_funds_rate \
//	    -at gold_price_usd=2400,fed_funds_rate=4.5
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/macroquant/btcmacro/dataset"
	"github.com/macroquant/btcmacro/pipeline"
	"github.com/macroquant/btcmacro/pkg/log"
)

func main() {
	dataPath := flag.String("data", "data/btc_macro_monthly.csv", "path to the historical dataset CSV")
	featuresFlag := flag.String("features", "", "comma-separated feature subset (default: all available)")
	atFlag := flag.String("at", "", "comma-separated feature=value pairs to predict at (default: medians)")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	_ = godotenv.Load()
	log.SetupLogger(*logLevel)

	table, err := dataset.Load(*dataPath)
	if err != nil {
		fail(err)
	}

	available, err := pipeline.AvailableFeatures(table)
	if err != nil {
		fail(err)
	}

	selected := available
	if *featuresFlag != "" {
		selected = splitList(*featuresFlag)
	}

	report, err := pipeline.Train(table, selected)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Fitted OLS on %d monthly observations\n\n", report.Rows)
	fmt.Printf("R-squared: %.4f\n", report.RSquared)
	fmt.Printf("RMSE:      $%.2f\n", report.RMSE)
	fmt.Printf("Intercept: %.2f\n\n", report.Intercept)

	fmt.Println("Coefficients (standardized in parentheses):")
	for _, c := range report.Coefficients {
		fmt.Printf("  %-34s %12.2f  (%.0f)\n", c.Feature, c.Value, c.Standardized)
	}
	fmt.Println()

	values, err := scenarioValues(report, *atFlag)
	if err != nil {
		fail(err)
	}

	price, err := report.Predict(values)
	if err != nil {
		fail(err)
	}

	fmt.Println("Scenario:")
	for i, f := range report.Features {
		fmt.Printf("  %-34s %12.2f\n", f, values[i])
	}
	fmt.Printf("\nEstimated BTC price: $%.2f\n", price)
}

// scenarioValues starts from the per-feature medians and applies any
// feature=value overrides from the -at flag.
func scenarioValues(report *pipeline.Report, at string) ([]float64, error) {
	values := make([]float64, len(report.Features))
	for i, s := range report.Sliders {
		values[i] = s.Default
	}
	if at == "" {
		return values, nil
	}

	for _, pair := range splitList(at) {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("bad -at entry %q: want feature=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("bad -at value for %s: %q", name, raw)
		}
		idx := -1
		for i, f := range report.Features {
			if f == strings.TrimSpace(name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("-at names %q, which is not in the selected features", name)
		}
		values[idx] = v
	}
	return values, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
