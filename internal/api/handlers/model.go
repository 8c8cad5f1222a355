// Package handlers implements the HTTP handlers of the interactive tool.
//
// The handlers are stateless: each request re-runs the select → clean →
// fit pipeline against the immutable table loaded at startup, mirroring the
// page's re-run-everything interaction model. No model survives between
// requests.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/macroquant/btcmacro/dataset"
	"github.com/macroquant/btcmacro/internal/api/models"
	"github.com/macroquant/btcmacro/pipeline"
	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
)

// ModelHandler serves training, prediction and export requests over one
// read-only dataset.
type ModelHandler struct {
	table *dataset.Table
}

// NewModelHandler creates a handler over the loaded dataset.
func NewModelHandler(table *dataset.Table) *ModelHandler {
	return &ModelHandler{table: table}
}

// GetModel handles GET /api/v1/model. The optional features query
// parameter is a comma-separated subset of the available features; when
// omitted, every available feature is used (the page's default-checked
// state).
func (h *ModelHandler) GetModel(c *gin.Context) {
	available, report, ok := h.train(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.ModelResponse{
		AvailableFeatures: available,
		Report:            report,
	})
}

// Predict handles POST /api/v1/predict. The model is refit for the
// requested feature set and evaluated at the supplied vector; values
// outside the historical range extrapolate without clamping.
func (h *ModelHandler) Predict(c *gin.Context) {
	var req models.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}
	if len(req.Values) != len(req.Features) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "features and values must have the same length",
			},
		})
		return
	}

	report, err := pipeline.Train(h.table, req.Features)
	if err != nil {
		writeError(c, err)
		return
	}

	price, err := report.Predict(req.Values)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PredictResponse{Price: price})
}

// Export handles GET /api/v1/model/export: a downloadable JSON snapshot of
// the fitted model for the requested feature set.
func (h *ModelHandler) Export(c *gin.Context) {
	_, report, ok := h.train(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="btc_macro_model.json"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := report.Model().ExportJSON(c.Writer, report.Features); err != nil {
		_ = c.Error(err)
	}
}

// train runs the pipeline for the request's feature selection and writes
// the error response itself on failure.
func (h *ModelHandler) train(c *gin.Context) ([]string, *pipeline.Report, bool) {
	available, err := pipeline.AvailableFeatures(h.table)
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}

	// An absent features parameter means the page's default-checked state
	// (every available feature); a present-but-empty one means the user
	// deselected everything, which Train rejects.
	selected := available
	if raw, ok := c.GetQuery("features"); ok {
		selected = nil
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				selected = append(selected, f)
			}
		}
	}

	report, err := pipeline.Train(h.table, selected)
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	return available, report, true
}

// writeError maps pipeline errors to the response envelope. Expected kinds
// get stable codes; anything else is INTERNAL_ERROR with the full
// diagnostic trace.
func writeError(c *gin.Context, err error) {
	var dataErr *bmErrors.DataError
	if errors.As(err, &dataErr) {
		status := http.StatusInternalServerError
		code := "INTERNAL_ERROR"
		switch dataErr.Kind {
		case bmErrors.KindDataUnavailable:
			status, code = http.StatusServiceUnavailable, "DATA_UNAVAILABLE"
		case bmErrors.KindNoFeatures:
			status, code = http.StatusInternalServerError, "NO_FEATURES"
		case bmErrors.KindEmptySelection:
			status, code = http.StatusBadRequest, "EMPTY_SELECTION"
		case bmErrors.KindTrainingFailed:
			status, code = http.StatusUnprocessableEntity, "TRAINING_FAILED"
		}
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{Code: code, Message: dataErr.Message, Details: dataErr.Details},
		})
		return
	}

	var valueErr *bmErrors.ValueError
	var dimErr *bmErrors.DimensionError
	if errors.As(err, &valueErr) || errors.As(err, &dimErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
			Trace:   bmErrors.Trace(err),
		},
	})
}
