// Package model provides the shared estimator state machinery.
//
// Every estimator in this repository (the OLS regression, the scaler)
// composes a StateManager to track whether it has been fitted and with what
// data shape. Methods that require a trained model consult IsFitted and
// return a NotFittedError otherwise.
package model

// StateManager tracks the fitted state and training dimensions of an
// estimator. The zero value is a valid, not-fitted state.
type StateManager struct {
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager in the not-fitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether the estimator has been trained.
func (s *StateManager) IsFitted() bool {
	return s.fitted
}

// SetFitted marks the estimator as trained. Called by estimator
// implementations at the end of a successful Fit.
func (s *StateManager) SetFitted() {
	s.fitted = true
}

// SetDimensions records the training data shape.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// NFeatures returns the number of features seen during Fit.
func (s *StateManager) NFeatures() int { return s.nFeatures }

// NSamples returns the number of samples seen during Fit.
func (s *StateManager) NSamples() int { return s.nSamples }

// Reset returns the estimator to the not-fitted state.
func (s *StateManager) Reset() {
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}
