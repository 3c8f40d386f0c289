package engine

import (
	"math"
	"time"

	"github.com/ayusman/physioflow/internal/pose"
)

// Hold machine constants. The settle debounce keeps a drive-by through the
// target band from starting the clock; the deviation penalty grades frames
// outside the band by how far outside they are.
const (
	holdSettleTime         = 500 * time.Millisecond
	deviationPenaltyPerDeg = 2.0
)

// holdState is the full mutable state of a hold detector.
type holdState struct {
	phase    Phase
	angle    float64
	lastSeen time.Time

	bandEnteredAt time.Time
	holdStart     time.Time

	current        time.Duration
	longest        time.Duration
	brokenAttempts int
	completed      int
}

// HoldDetector measures sustained isometric holds: the user must keep the
// tracked angle inside the target band continuously for the full target
// duration. Leaving the band before the target voids the attempt entirely;
// there is no partial credit, though the longest attempt is retained for
// stats.
type HoldDetector struct {
	strategy   Strategy
	thresholds Thresholds
	targetHold time.Duration
	smoother   *AngleSmoother
	state      holdState
}

// NewHoldDetector builds a hold detector around a strategy with the given
// required hold duration.
func NewHoldDetector(strategy Strategy, targetHold time.Duration) (*HoldDetector, error) {
	return NewHoldDetectorWith(strategy, strategy.Thresholds(), targetHold)
}

// NewHoldDetectorWith builds a hold detector with explicit thresholds,
// typically from a user calibration.
func NewHoldDetectorWith(strategy Strategy, thresholds Thresholds, targetHold time.Duration) (*HoldDetector, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if targetHold <= 0 {
		return nil, ErrInvalidHoldTarget
	}

	d := &HoldDetector{
		strategy:   strategy,
		thresholds: thresholds,
		targetHold: targetHold,
		smoother:   NewAngleSmoother(),
	}
	d.state.phase = PhaseWaiting
	return d, nil
}

// Exercise returns the identifier this detector measures.
func (d *HoldDetector) Exercise() Exercise {
	return d.strategy.Exercise()
}

// Thresholds returns the thresholds the detector runs with.
func (d *HoldDetector) Thresholds() Thresholds {
	return d.thresholds
}

// Phase returns the current phase.
func (d *HoldDetector) Phase() Phase {
	return d.state.phase
}

// SetTargetHoldTime changes the required hold duration for subsequent
// attempts. An in-flight hold keeps accumulating against the new target.
func (d *HoldDetector) SetTargetHoldTime(target time.Duration) error {
	if target <= 0 {
		return ErrInvalidHoldTarget
	}
	d.targetHold = target
	return nil
}

// Stats returns a snapshot of the hold attempt history.
func (d *HoldDetector) Stats() HoldStats {
	return HoldStats{
		Current:        d.state.current,
		Longest:        d.state.longest,
		Target:         d.targetHold,
		BrokenAttempts: d.state.brokenAttempts,
		Completed:      d.state.completed,
	}
}

// Reset clears stats, filters and the phase.
func (d *HoldDetector) Reset() {
	d.state = holdState{phase: PhaseWaiting}
	d.smoother.Reset()
}

// ProcessFrame advances the machine with one frame.
func (d *HoldDetector) ProcessFrame(f *pose.Frame, at time.Time) DetectionResult {
	m, ok := d.strategy.Measure(f)
	if !ok {
		return d.lowConfidenceResult(at)
	}

	st := &d.state
	st.angle = d.smoother.Update(m.Angle)
	st.lastSeen = at

	inBand := math.Abs(st.angle-d.thresholds.Target) <= d.thresholds.Tolerance
	completed := false

	switch st.phase {
	case PhaseWaiting, PhaseBroken:
		if inBand {
			st.phase = PhasePositioning
			st.bandEnteredAt = at
		}

	case PhasePositioning:
		if !inBand {
			st.phase = PhaseWaiting
		} else if at.Sub(st.bandEnteredAt) >= holdSettleTime {
			st.phase = PhaseHolding
			st.holdStart = at
			st.current = 0
		}

	case PhaseHolding:
		if !inBand {
			// Attempt voided. The elapsed time counts toward the
			// longest-hold stat but earns no completion.
			if st.current > st.longest {
				st.longest = st.current
			}
			st.current = 0
			st.brokenAttempts++
			st.phase = PhaseBroken
			break
		}
		st.current = at.Sub(st.holdStart)
		if st.current >= d.targetHold {
			if st.current > st.longest {
				st.longest = st.current
			}
			st.completed++
			st.current = 0
			st.phase = PhaseCompleted
			completed = true
		}

	case PhaseCompleted:
		// Completion was reported last frame; a fresh attempt starts
		// from scratch, settle time included.
		if inBand {
			st.phase = PhasePositioning
			st.bandEnteredAt = at
		} else {
			st.phase = PhaseWaiting
		}
	}

	return d.result(m.Confidence, inBand, completed)
}

// lowConfidenceResult reports an unmeasurable frame. A brief occlusion does
// not break the hold by itself, but after lostPoseTimeout an in-flight
// attempt is voided the same way leaving the band would.
func (d *HoldDetector) lowConfidenceResult(at time.Time) DetectionResult {
	st := &d.state
	if !st.lastSeen.IsZero() && at.Sub(st.lastSeen) > lostPoseTimeout {
		if st.phase == PhaseHolding {
			if st.current > st.longest {
				st.longest = st.current
			}
			st.current = 0
			st.brokenAttempts++
			st.phase = PhaseBroken
		} else if st.phase == PhasePositioning {
			st.phase = PhaseWaiting
		}
	}

	r := d.result(0, false, false)
	r.Feedback = lowConfidenceFeedback
	return r
}

func (d *HoldDetector) result(confidence float64, inBand, completed bool) DetectionResult {
	st := &d.state

	accuracy := 100.0
	if !inBand {
		deviation := math.Abs(st.angle-d.thresholds.Target) - d.thresholds.Tolerance
		accuracy = 100 - deviationPenaltyPerDeg*deviation
		if accuracy < 0 {
			accuracy = 0
		}
	}

	holdProgress := 0.0
	if d.targetHold > 0 {
		holdProgress = float64(st.current) / float64(d.targetHold)
		if holdProgress > 1 {
			holdProgress = 1
		}
	}
	if st.phase == PhaseCompleted {
		holdProgress = 1
	}

	feedback := d.strategy.Feedback(st.phase, d.thresholds.Progress(st.angle))
	if completed {
		feedback = d.strategy.CompletionFeedback(accuracy)
	}

	return DetectionResult{
		Exercise:     d.strategy.Exercise(),
		Phase:        st.phase,
		RepCompleted: completed,
		Angle:        st.angle,
		TargetAngle:  d.thresholds.Target,
		Progress:     d.thresholds.Progress(st.angle),
		Accuracy:     math.Round(accuracy),
		Confidence:   confidence,
		Feedback:     feedback,
		HoldProgress: holdProgress,
	}
}
