package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
)

// DateColumn is the name of the date index column in the historical CSV.
const DateColumn = "date"

// Load reads the historical dataset from a CSV file. A missing or empty
// file is a data-unavailable error: the session cannot proceed and no retry
// is attempted.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bmErrors.NewDataError(bmErrors.KindDataUnavailable,
			"dataset.Load", fmt.Sprintf("cannot open dataset %s: %v", path, err))
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Read parses CSV data into a Table. The first row is the header and must
// contain a "date" column; remaining columns are numeric, with empty cells
// read as NaN so DropNA can remove them before fitting.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, bmErrors.NewDataError(bmErrors.KindDataUnavailable,
			"dataset.Read", "dataset is empty")
	}
	if err != nil {
		return nil, bmErrors.NewValueError("dataset.Read", "bad header: "+err.Error())
	}

	dateIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == DateColumn {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, bmErrors.NewValueError("dataset.Read", "header has no date column")
	}

	var dates []time.Time
	values := make([][]float64, len(header))

	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, bmErrors.NewValueError("dataset.Read",
				fmt.Sprintf("row %d: %v", row, err))
		}
		if len(rec) != len(header) {
			return nil, bmErrors.NewDimensionError("dataset.Read", len(header), len(rec), 1)
		}

		d, err := parseDate(rec[dateIdx])
		if err != nil {
			return nil, bmErrors.NewValueError("dataset.Read",
				fmt.Sprintf("row %d: bad date %q", row, rec[dateIdx]))
		}
		dates = append(dates, d)

		for i, cell := range rec {
			if i == dateIdx {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				values[i] = append(values[i], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, bmErrors.NewValueError("dataset.Read",
					fmt.Sprintf("row %d, column %s: bad number %q", row, header[i], cell))
			}
			values[i] = append(values[i], v)
		}
		row++
	}

	if len(dates) == 0 {
		return nil, bmErrors.NewDataError(bmErrors.KindDataUnavailable,
			"dataset.Read", "dataset has no data rows")
	}

	t := New(dates)
	for i, name := range header {
		if i == dateIdx {
			continue
		}
		if err := t.AddColumn(strings.TrimSpace(name), values[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseDate accepts the monthly YYYY-MM form used by the historical
// dataset, plus full dates for ad hoc inputs.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse("2006-01", s); err == nil {
		return d, nil
	}
	return time.Parse("2006-01-02", s)
}
