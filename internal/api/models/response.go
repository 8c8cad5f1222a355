// Package models defines the JSON request and response shapes of the API.
package models

import "github.com/macroquant/btcmacro/pipeline"

// ErrorDetail is the error payload. Trace carries the full diagnostic
// trace for unexpected failures and is empty for expected error kinds.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Trace   string         `json:"trace,omitempty"`
}

// ErrorResponse is the envelope for every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ModelResponse carries one training run plus the feature checkboxes'
// source of truth.
type ModelResponse struct {
	AvailableFeatures []string         `json:"available_features"`
	Report            *pipeline.Report `json:"report"`
}

// PredictRequest asks for a prediction at one feature vector. Values are
// given in the same order as Features.
type PredictRequest struct {
	Features []string  `json:"features" binding:"required"`
	Values   []float64 `json:"values" binding:"required"`
}

// PredictResponse is a single estimated BTC price in USD.
type PredictResponse struct {
	Price float64 `json:"price"`
}
