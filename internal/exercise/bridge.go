package exercise

import (
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

// bridgeStrategy detects the glute bridge: lying supine with knees bent,
// hips driven up until the shoulder-hip-knee line is nearly straight, a
// short squeeze at the top, then back down.
type bridgeStrategy struct{}

func (bridgeStrategy) Exercise() engine.Exercise { return GluteBridge }
func (bridgeStrategy) Name() string              { return "Glute Bridge" }

func (bridgeStrategy) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:     engine.Band(60, 15),
		Target:    165,
		Tolerance: 15,
		HoldTime:  500 * time.Millisecond,
	}
}

func (bridgeStrategy) Measure(f *pose.Frame) (engine.Measurement, bool) {
	return bilateralAngle(f,
		pose.LeftShoulder, pose.LeftHip, pose.LeftKnee,
		pose.RightShoulder, pose.RightHip, pose.RightKnee)
}

func (bridgeStrategy) Feedback(phase engine.Phase, progress float64) string {
	switch phase {
	case engine.PhaseIdle, engine.PhaseReady:
		return "Lie on your back with knees bent, feet flat"
	case engine.PhaseMoving:
		if progress < 0.5 {
			return "Drive your hips up"
		}
		return "Almost there, squeeze at the top"
	case engine.PhaseHolding:
		return "Hold it right there"
	case engine.PhaseReturning:
		return "Lower back down with control"
	default:
		return ""
	}
}

func (bridgeStrategy) CompletionFeedback(accuracy float64) string {
	return gradeCompletion(accuracy,
		"Perfect bridge!",
		"Good rep, try to lift a little higher",
		"Rep counted, focus on full hip extension")
}
