package exercise

import (
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

const alternateFeedback = "Switch legs, lift the other knee"

// marchStrategy measures one side of the seated march: the hip angle
// closes as the knee lifts toward the chest.
type marchStrategy struct {
	side pose.Side
}

func (s marchStrategy) Exercise() engine.Exercise { return SeatedMarch }

func (s marchStrategy) Name() string {
	if s.side == pose.SideLeft {
		return "Seated March (left)"
	}
	return "Seated March (right)"
}

func (marchStrategy) Thresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:     engine.Band(90, 12),
		Target:    50,
		Tolerance: 10,
	}
}

func (s marchStrategy) Measure(f *pose.Frame) (engine.Measurement, bool) {
	if s.side == pose.SideLeft {
		return measureTriple(f, pose.LeftShoulder, pose.LeftHip, pose.LeftKnee)
	}
	return measureTriple(f, pose.RightShoulder, pose.RightHip, pose.RightKnee)
}

func (marchStrategy) Feedback(phase engine.Phase, progress float64) string {
	switch phase {
	case engine.PhaseIdle, engine.PhaseReady:
		return "Sit tall, feet flat on the floor"
	case engine.PhaseMoving:
		return "Lift that knee up"
	case engine.PhaseHolding:
		return "Good height"
	case engine.PhaseReturning:
		return "Lower your foot back down"
	default:
		return ""
	}
}

func (marchStrategy) CompletionFeedback(accuracy float64) string {
	return gradeCompletion(accuracy,
		"Great lift!",
		"Lift counted, bring the knee a bit higher",
		"Lift counted, aim for knee toward chest")
}

// MarchDetector runs one rep machine per leg and merges their telemetry.
// It remembers which leg completed the last lift so it can prompt the user
// to alternate.
type MarchDetector struct {
	left     *engine.RepDetector
	right    *engine.RepDetector
	lastSide pose.Side
	haveLast bool
}

// NewMarchDetector builds the two-sided seated march detector. Both legs
// run against the same thresholds.
func NewMarchDetector(thresholds engine.Thresholds) (*MarchDetector, error) {
	left, err := engine.NewRepDetectorWith(marchStrategy{side: pose.SideLeft}, thresholds, engine.DefaultRepConfig())
	if err != nil {
		return nil, err
	}
	right, err := engine.NewRepDetectorWith(marchStrategy{side: pose.SideRight}, thresholds, engine.DefaultRepConfig())
	if err != nil {
		return nil, err
	}
	return &MarchDetector{left: left, right: right}, nil
}

// Exercise returns the seated march identifier.
func (d *MarchDetector) Exercise() engine.Exercise { return SeatedMarch }

// RepCount returns the combined lift count across both legs.
func (d *MarchDetector) RepCount() int {
	return d.left.RepCount() + d.right.RepCount()
}

// SideRepCounts returns the per-leg lift counts.
func (d *MarchDetector) SideRepCounts() (left, right int) {
	return d.left.RepCount(), d.right.RepCount()
}

// CurrentSide returns the leg that completed the last lift. The second
// return is false before the first lift.
func (d *MarchDetector) CurrentSide() (pose.Side, bool) {
	return d.lastSide, d.haveLast
}

// Accuracies returns the per-lift accuracy scores of both legs, left leg
// first.
func (d *MarchDetector) Accuracies() []float64 {
	return append(d.left.Accuracies(), d.right.Accuracies()...)
}

// Reset clears both legs and the alternation memory.
func (d *MarchDetector) Reset() {
	d.left.Reset()
	d.right.Reset()
	d.haveLast = false
}

// ProcessFrame feeds the frame to both leg machines. The reported phase and
// angle follow the more advanced leg, with the left leg breaking ties so
// the output never flips between equal legs.
func (d *MarchDetector) ProcessFrame(f *pose.Frame, at time.Time) engine.DetectionResult {
	leftResult := d.left.ProcessFrame(f, at)
	rightResult := d.right.ProcessFrame(f, at)

	result := leftResult
	side := pose.SideLeft
	if rightResult.Progress > leftResult.Progress {
		result = rightResult
		side = pose.SideRight
	}

	completedSide := side
	switch {
	case leftResult.RepCompleted:
		result, completedSide = leftResult, pose.SideLeft
	case rightResult.RepCompleted:
		result, completedSide = rightResult, pose.SideRight
	}

	if result.RepCompleted {
		if d.haveLast && completedSide == d.lastSide {
			result.Feedback = alternateFeedback
		}
		d.lastSide = completedSide
		d.haveLast = true
	}

	result.Accuracy = combinedMean(d.left.Accuracies(), d.right.Accuracies())
	result.Confidence = maxFloat(leftResult.Confidence, rightResult.Confidence)
	return result
}

func combinedMean(groups ...[]float64) float64 {
	var total float64
	var n int
	for _, vals := range groups {
		for _, v := range vals {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
