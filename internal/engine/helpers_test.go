package engine

import (
	"fmt"
	"time"

	"github.com/ayusman/physioflow/internal/pose"
)

// hipStrategy is a minimal strategy for machine tests: it tracks the left
// shoulder-hip-knee angle and parrots the phase back as feedback.
type hipStrategy struct {
	thresholds Thresholds
}

func (s hipStrategy) Exercise() Exercise { return "test_hip_hinge" }
func (s hipStrategy) Name() string       { return "Test Hip Hinge" }

func (s hipStrategy) Thresholds() Thresholds { return s.thresholds }

func (s hipStrategy) Measure(f *pose.Frame) (Measurement, bool) {
	p1, vertex, p3, ok := f.Triple(pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
	if !ok {
		return Measurement{}, false
	}
	return JointAngle(p1, vertex, p3)
}

func (s hipStrategy) Feedback(phase Phase, progress float64) string {
	return string(phase)
}

func (s hipStrategy) CompletionFeedback(accuracy float64) string {
	return fmt.Sprintf("completed at %.0f", accuracy)
}

// bridgeThresholds models a glute bridge: rest at 60°, extend to 165°±15°,
// hold half a second.
func bridgeThresholds() Thresholds {
	return Thresholds{
		Start:     Band(60, 15),
		Target:    165,
		Tolerance: 15,
		HoldTime:  500 * time.Millisecond,
	}
}

// squatThresholds models a decreasing movement: standing at 170°, descend
// to 90°±15°, no hold.
func squatThresholds() Thresholds {
	return Thresholds{
		Start:     Band(170, 10),
		Target:    90,
		Tolerance: 15,
	}
}

// feed runs one hip-angle frame through the detector.
func feed(d Detector, angle float64, at time.Time) DetectionResult {
	return d.ProcessFrame(pose.HipAngleFrame(angle), at)
}
