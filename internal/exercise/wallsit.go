package exercise

import (
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

// wallSitStrategy measures the wall sit hold: back against a wall, knees
// kept near ninety degrees for the target duration.
type wallSitStrategy struct{}

func (wallSitStrategy) Exercise() engine.Exercise { return WallSit }
func (wallSitStrategy) Name() string              { return "Wall Sit" }

func (wallSitStrategy) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:     engine.Band(170, 8),
		Target:    90,
		Tolerance: 15,
		HoldTime:  30 * time.Second,
	}
}

func (wallSitStrategy) Measure(f *pose.Frame) (engine.Measurement, bool) {
	return bilateralAngle(f,
		pose.LeftHip, pose.LeftKnee, pose.LeftAnkle,
		pose.RightHip, pose.RightKnee, pose.RightAnkle)
}

func (wallSitStrategy) Feedback(phase engine.Phase, progress float64) string {
	switch phase {
	case engine.PhaseWaiting:
		return "Slide down the wall to a seated position"
	case engine.PhasePositioning:
		return "Settle with knees at ninety degrees"
	case engine.PhaseHolding:
		return "Stay low, keep your back on the wall"
	case engine.PhaseBroken:
		return "You came up, slide back down"
	case engine.PhaseCompleted:
		return "Wall sit complete"
	default:
		return ""
	}
}

func (wallSitStrategy) CompletionFeedback(accuracy float64) string {
	return gradeCompletion(accuracy,
		"Strong wall sit!",
		"Hold complete, try to stay a little lower",
		"Hold complete, keep the knees at ninety next time")
}
