package exercise

import (
	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

// wallPushStrategy detects the wall push-up: standing at arm's length from
// a wall, elbows bend from near-extension down toward ninety degrees and
// back.
type wallPushStrategy struct{}

func (wallPushStrategy) Exercise() engine.Exercise { return WallPush }
func (wallPushStrategy) Name() string              { return "Wall Push-Up" }

func (wallPushStrategy) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:     engine.Band(162, 12),
		Target:    90,
		Tolerance: 15,
	}
}

func (wallPushStrategy) Measure(f *pose.Frame) (engine.Measurement, bool) {
	return bilateralAngle(f,
		pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist,
		pose.RightShoulder, pose.RightElbow, pose.RightWrist)
}

func (wallPushStrategy) Feedback(phase engine.Phase, progress float64) string {
	switch phase {
	case engine.PhaseIdle, engine.PhaseReady:
		return "Hands on the wall, arms straight"
	case engine.PhaseMoving:
		if progress < 0.5 {
			return "Bend your elbows, lean in"
		}
		return "Keep going, chest toward the wall"
	case engine.PhaseHolding:
		return "Nice depth"
	case engine.PhaseReturning:
		return "Push back to straight arms"
	default:
		return ""
	}
}

func (wallPushStrategy) CompletionFeedback(accuracy float64) string {
	return gradeCompletion(accuracy,
		"Perfect push!",
		"Good rep, bend a touch deeper",
		"Rep counted, try to reach a full bend")
}
