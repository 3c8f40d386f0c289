package exercise

import (
	"sync"

	"github.com/ayusman/physioflow/internal/engine"
)

// Registry owns one live detector per exercise. Detectors are created
// lazily and kept until disposed, so rep counts and phase state survive
// across frames and API calls. Threshold overrides from a calibration
// replace the exercise defaults and rebuild the detector.
type Registry struct {
	mu         sync.RWMutex
	detectors  map[engine.Exercise]engine.Detector
	thresholds map[engine.Exercise]engine.Thresholds
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors:  make(map[engine.Exercise]engine.Detector),
		thresholds: make(map[engine.Exercise]engine.Thresholds),
	}
}

// Get returns the live detector for an exercise, creating it on first use.
// Returns ErrUnknownExercise for unsupported exercises.
func (r *Registry) Get(ex engine.Exercise) (engine.Detector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.detectors[ex]; ok {
		return d, nil
	}

	d, err := r.build(ex)
	if err != nil {
		return nil, err
	}
	r.detectors[ex] = d
	return d, nil
}

// Thresholds returns the thresholds the exercise's detector runs with: the
// calibration override when one is set, the exercise defaults otherwise.
func (r *Registry) Thresholds(ex engine.Exercise) (engine.Thresholds, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if th, ok := r.thresholds[ex]; ok {
		return th, nil
	}

	strategy, err := NewStrategy(ex)
	if err != nil {
		return engine.Thresholds{}, err
	}
	return strategy.Thresholds(), nil
}

// SetThresholds installs calibrated thresholds for an exercise and rebuilds
// its detector. Invalid thresholds are rejected and the previous detector
// keeps running.
func (r *Registry) SetThresholds(ex engine.Exercise, th engine.Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := NewDetectorWith(ex, th)
	if err != nil {
		return err
	}

	r.thresholds[ex] = th
	r.detectors[ex] = d
	return nil
}

// ClearThresholds removes a calibration override and rebuilds the detector
// on the exercise defaults. A no-op when no override is set.
func (r *Registry) ClearThresholds(ex engine.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.thresholds[ex]; !ok {
		return nil
	}
	delete(r.thresholds, ex)

	d, err := NewDetector(ex)
	if err != nil {
		return err
	}
	r.detectors[ex] = d
	return nil
}

// Reset returns the exercise's detector to its initial state without
// discarding it. A reset on an exercise with no live detector is a no-op.
func (r *Registry) Reset(ex engine.Exercise) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.detectors[ex]; ok {
		d.Reset()
	}
}

// ResetAll resets every live detector.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.detectors {
		d.Reset()
	}
}

// Dispose removes the exercise's detector; the next Get rebuilds it fresh.
func (r *Registry) Dispose(ex engine.Exercise) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.detectors, ex)
}

// Close discards every live detector and calibration override. The registry
// stays usable; subsequent Gets rebuild on the exercise defaults.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detectors = make(map[engine.Exercise]engine.Detector)
	r.thresholds = make(map[engine.Exercise]engine.Thresholds)
}

// build must be called with the write lock held.
func (r *Registry) build(ex engine.Exercise) (engine.Detector, error) {
	if th, ok := r.thresholds[ex]; ok {
		return NewDetectorWith(ex, th)
	}
	return NewDetector(ex)
}
