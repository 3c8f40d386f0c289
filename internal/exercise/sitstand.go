package exercise

import (
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

// sitToStandStrategy detects the sit-to-stand: from seated, the knees
// extend to a full stand, pause briefly upright, then sit back down.
type sitToStandStrategy struct{}

func (sitToStandStrategy) Exercise() engine.Exercise { return SitToStand }
func (sitToStandStrategy) Name() string              { return "Sit to Stand" }

func (sitToStandStrategy) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:     engine.Band(95, 15),
		Target:    170,
		Tolerance: 10,
		HoldTime:  500 * time.Millisecond,
	}
}

func (sitToStandStrategy) Measure(f *pose.Frame) (engine.Measurement, bool) {
	return bilateralAngle(f,
		pose.LeftHip, pose.LeftKnee, pose.LeftAnkle,
		pose.RightHip, pose.RightKnee, pose.RightAnkle)
}

func (sitToStandStrategy) Feedback(phase engine.Phase, progress float64) string {
	switch phase {
	case engine.PhaseIdle, engine.PhaseReady:
		return "Sit tall near the front of the chair"
	case engine.PhaseMoving:
		if progress < 0.5 {
			return "Push through your heels and stand"
		}
		return "Straighten all the way up"
	case engine.PhaseHolding:
		return "Stand tall for a moment"
	case engine.PhaseReturning:
		return "Sit back down slowly"
	default:
		return ""
	}
}

func (sitToStandStrategy) CompletionFeedback(accuracy float64) string {
	return gradeCompletion(accuracy,
		"Perfect stand!",
		"Good rep, stand up fully before sitting",
		"Rep counted, try not to rush the sit")
}
