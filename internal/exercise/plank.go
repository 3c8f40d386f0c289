package exercise

import (
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

// plankStrategy measures the plank hold: shoulders, hips and ankles kept in
// a straight line. Sagging or piking hips pull the alignment angle out of
// the target band.
type plankStrategy struct{}

func (plankStrategy) Exercise() engine.Exercise { return Plank }
func (plankStrategy) Name() string              { return "Plank" }

func (plankStrategy) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:     engine.Band(140, 10),
		Target:    175,
		Tolerance: 8,
		HoldTime:  30 * time.Second,
	}
}

func (plankStrategy) Measure(f *pose.Frame) (engine.Measurement, bool) {
	return bilateralAngle(f,
		pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle,
		pose.RightShoulder, pose.RightHip, pose.RightAnkle)
}

func (plankStrategy) Feedback(phase engine.Phase, progress float64) string {
	switch phase {
	case engine.PhaseWaiting:
		return "Get onto your forearms, body straight"
	case engine.PhasePositioning:
		return "Settle into a straight line"
	case engine.PhaseHolding:
		return "Hold that line, keep breathing"
	case engine.PhaseBroken:
		return "Hips dropped, straighten back out"
	case engine.PhaseCompleted:
		return "Plank complete"
	default:
		return ""
	}
}

func (plankStrategy) CompletionFeedback(accuracy float64) string {
	return gradeCompletion(accuracy,
		"Rock-solid plank!",
		"Hold complete, watch the hip sag",
		"Hold complete, keep the hips level next time")
}
