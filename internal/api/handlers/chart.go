package handlers

import (
	"bytes"
	"image/color"
	"net/http"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/macroquant/btcmacro/internal/api/models"
	"github.com/macroquant/btcmacro/pipeline"
)

// Chart handles GET /api/v1/chart: a PNG time series of the actual BTC
// price against the model's in-sample fitted values for the requested
// feature selection.
func (h *ModelHandler) Chart(c *gin.Context) {
	_, report, ok := h.train(c)
	if !ok {
		return
	}

	png, err := renderChart(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()},
		})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func renderChart(report *pipeline.Report) ([]byte, error) {
	clean := report.Clean()
	dates := clean.Dates()
	actual, _ := clean.Column(pipeline.TargetColumn)
	fitted := report.Fitted()

	p := plot.New()
	p.Title.Text = "BTC price: actual vs fitted"
	p.X.Label.Text = "month"
	p.Y.Label.Text = "USD"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	actualPts := make(plotter.XYs, len(actual))
	fittedPts := make(plotter.XYs, len(fitted))
	for i := range actual {
		x := float64(i)
		if dates != nil {
			x = float64(dates[i].Unix())
		}
		actualPts[i] = plotter.XY{X: x, Y: actual[i]}
		fittedPts[i] = plotter.XY{X: x, Y: fitted[i]}
	}

	actualLine, err := plotter.NewLine(actualPts)
	if err != nil {
		return nil, err
	}
	actualLine.Color = color.RGBA{R: 0xf7, G: 0x93, B: 0x1a, A: 0xff}

	fittedLine, err := plotter.NewLine(fittedPts)
	if err != nil {
		return nil, err
	}
	fittedLine.Color = color.RGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff}
	fittedLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(actualLine, fittedLine)
	p.Legend.Add("actual", actualLine)
	p.Legend.Add("fitted", fittedLine)
	p.Legend.Top = true

	var buf bytes.Buffer
	w, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
