package engine

import (
	"time"

	"github.com/ayusman/physioflow/internal/pose"
)

// Strategy encapsulates what is exercise-specific: which joints to measure,
// the default movement thresholds, and the coaching copy. The phase
// machines in this package supply everything else.
type Strategy interface {
	// Exercise returns the identifier this strategy detects.
	Exercise() Exercise

	// Name returns the human-readable exercise name.
	Name() string

	// Thresholds returns the default movement thresholds.
	Thresholds() Thresholds

	// Measure extracts the tracked joint angle from a frame. Returns
	// false when the required landmarks are not visible.
	Measure(f *pose.Frame) (Measurement, bool)

	// Feedback returns the coaching cue for the current phase and
	// progress through the range of motion.
	Feedback(phase Phase, progress float64) string

	// CompletionFeedback returns the cue shown after a completed rep or
	// hold, graded by its accuracy.
	CompletionFeedback(accuracy float64) string
}

// Detector consumes a landmark stream for one exercise and emits per-frame
// telemetry. Implementations are not safe for concurrent use; callers feed
// frames from a single goroutine.
type Detector interface {
	// Exercise returns the identifier this detector counts.
	Exercise() Exercise

	// ProcessFrame advances the detector with one frame observed at the
	// given time and returns the resulting telemetry.
	ProcessFrame(f *pose.Frame, at time.Time) DetectionResult

	// Reset returns the detector to its initial state, clearing counts,
	// accuracy history and signal filters.
	Reset()
}
