// Package session runs exercise sessions: it feeds pose frames to the
// active detector, tracks live telemetry, and turns a finished session into
// a persisted summary.
package session

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/physioflow/internal/engine"
)

// Summary is the outcome of one finished session.
type Summary struct {
	ID             string          `json:"id"`
	Exercise       engine.Exercise `json:"exercise"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        time.Time       `json:"ended_at"`
	Reps           int             `json:"reps"`
	CompletedHolds int             `json:"completed_holds"`
	BrokenAttempts int             `json:"broken_attempts"`
	LongestHold    time.Duration   `json:"longest_hold"`
	MeanAccuracy   float64         `json:"mean_accuracy"`
	AccuracyStdDev float64         `json:"accuracy_stddev"`
	RepAccuracies  []float64       `json:"rep_accuracies,omitempty"`
}

// accuracyStats computes the mean and standard deviation of the per-rep
// scores. A single rep has no spread; no reps have no stats at all.
func accuracyStats(accuracies []float64) (mean, stddev float64) {
	if len(accuracies) == 0 {
		return 0, 0
	}
	mean = stat.Mean(accuracies, nil)
	if len(accuracies) > 1 {
		stddev = stat.StdDev(accuracies, nil)
	}
	return mean, stddev
}
