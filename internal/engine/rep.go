package engine

import (
	"math"
	"time"

	"github.com/ayusman/physioflow/internal/pose"
)

// Movement gating constants. Velocities are in degrees per second after
// smoothing.
const (
	minMoveVelocity    = 10.0
	earlyReturnSpeed   = 15.0
	nearTargetFactor   = 2.0
	lostPoseTimeout    = 2 * time.Second
	repHistoryDepth    = 5
	angleAccuracyShare = 0.6
	holdAccuracyShare  = 0.4
)

// Rep duration baselines for the adaptive cooldown. A user averaging
// fastRepDuration per rep gets the minimum cooldown; slowRepDuration or
// slower gets the maximum.
const (
	fastRepDuration = 1500 * time.Millisecond
	slowRepDuration = 5 * time.Second
)

const lowConfidenceFeedback = "Can't see you clearly — step back so your whole body is in frame"

// RepConfig bounds the adaptive cooldown between repetitions.
type RepConfig struct {
	MinCooldown time.Duration
	MaxCooldown time.Duration
}

// DefaultRepConfig returns the standard cooldown bounds.
func DefaultRepConfig() RepConfig {
	return RepConfig{
		MinCooldown: 500 * time.Millisecond,
		MaxCooldown: 2 * time.Second,
	}
}

func (c RepConfig) validate() error {
	if c.MinCooldown <= 0 || c.MaxCooldown < c.MinCooldown {
		return ErrInvalidCooldown
	}
	return nil
}

// repState is the full mutable state of a rep detector, kept in one value
// so Reset can wipe it atomically.
type repState struct {
	phase    Phase
	angle    float64
	velocity float64
	lastSeen time.Time

	repCount   int
	accuracies []float64
	durations  []time.Duration

	// in-flight rep
	peakAngle float64
	moveStart time.Time
	holdStart time.Time
	held      time.Duration
	holdMet   bool

	cooldownUntil  time.Time
	lastCompletion string
}

// RepDetector counts discrete repetitions of one exercise by driving a
// phase machine over the smoothed joint angle stream. Within each phase the
// target-side condition is evaluated before the start-side one, so a frame
// satisfying both advances the rep rather than aborting it.
type RepDetector struct {
	strategy   Strategy
	thresholds Thresholds
	config     RepConfig
	smoother   *AngleSmoother
	velocity   *VelocityEstimator
	state      repState
}

// NewRepDetector builds a detector around a strategy using its default
// thresholds and the default cooldown bounds.
func NewRepDetector(strategy Strategy) (*RepDetector, error) {
	return NewRepDetectorWith(strategy, strategy.Thresholds(), DefaultRepConfig())
}

// NewRepDetectorWith builds a detector with explicit thresholds (typically
// from a user calibration) and cooldown bounds.
func NewRepDetectorWith(strategy Strategy, thresholds Thresholds, config RepConfig) (*RepDetector, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	d := &RepDetector{
		strategy:   strategy,
		thresholds: thresholds,
		config:     config,
		smoother:   NewAngleSmoother(),
		velocity:   NewVelocityEstimator(),
	}
	d.state.phase = PhaseIdle
	return d, nil
}

// Exercise returns the identifier this detector counts.
func (d *RepDetector) Exercise() Exercise {
	return d.strategy.Exercise()
}

// Thresholds returns the thresholds the detector runs with.
func (d *RepDetector) Thresholds() Thresholds {
	return d.thresholds
}

// Phase returns the current phase.
func (d *RepDetector) Phase() Phase {
	return d.state.phase
}

// RepCount returns the number of completed repetitions.
func (d *RepDetector) RepCount() int {
	return d.state.repCount
}

// Accuracies returns a copy of the per-rep accuracy scores in completion
// order.
func (d *RepDetector) Accuracies() []float64 {
	out := make([]float64, len(d.state.accuracies))
	copy(out, d.state.accuracies)
	return out
}

// Reset clears counts, accuracy history, filters and the phase.
func (d *RepDetector) Reset() {
	d.state = repState{phase: PhaseIdle}
	d.smoother.Reset()
	d.velocity.Reset()
}

// ProcessFrame advances the machine with one frame.
func (d *RepDetector) ProcessFrame(f *pose.Frame, at time.Time) DetectionResult {
	m, ok := d.strategy.Measure(f)
	if !ok {
		return d.lowConfidenceResult(at)
	}

	st := &d.state
	st.angle = d.smoother.Update(m.Angle)
	st.velocity = d.velocity.Update(st.angle, at)
	st.lastSeen = at

	completed := false
	switch st.phase {
	case PhaseIdle:
		if d.thresholds.Start.Contains(st.angle) {
			st.phase = PhaseReady
		}

	case PhaseReady:
		if d.isMovingTowardTarget(st.angle, st.velocity) {
			st.phase = PhaseMoving
			st.moveStart = at
			st.peakAngle = st.angle
			st.held = 0
			st.holdMet = false
		}

	case PhaseMoving:
		d.trackPeak(st.angle)
		if d.hasReachedTarget(st.angle) {
			st.phase = PhaseHolding
			st.holdStart = at
		} else if d.thresholds.Start.Contains(st.angle) {
			// Movement fizzled back to the start without reaching the
			// target: no rep, wait for the next attempt.
			st.phase = PhaseReady
		}

	case PhaseHolding:
		d.trackPeak(st.angle)
		if d.hasReachedTarget(st.angle) {
			st.held = at.Sub(st.holdStart)
		}
		if st.held >= d.thresholds.HoldTime {
			st.holdMet = true
		}
		if st.holdMet || d.isReturningEarly(st.angle, st.velocity) {
			st.phase = PhaseReturning
		}

	case PhaseReturning:
		if d.thresholds.Start.Contains(st.angle) {
			d.completeRep(at)
			completed = true
			st.phase = PhaseCooldown
		}

	case PhaseCooldown:
		if !at.Before(st.cooldownUntil) {
			st.phase = PhaseReady
		}
	}

	return d.result(m.Confidence, completed)
}

// isMovingTowardTarget requires the angle to have left the start band on the
// target side and the velocity to point at the target. Jitter around the
// start position satisfies neither.
func (d *RepDetector) isMovingTowardTarget(angle, velocity float64) bool {
	dir := d.thresholds.direction()
	edge := d.thresholds.Start.Max
	if dir < 0 {
		edge = d.thresholds.Start.Min
	}
	return dir*(angle-edge) > 0 && dir*velocity > minMoveVelocity
}

// hasReachedTarget reports whether the angle has crossed into the target
// tolerance band from the movement side.
func (d *RepDetector) hasReachedTarget(angle float64) bool {
	dir := d.thresholds.direction()
	return dir*(angle-d.thresholds.Target) >= -d.thresholds.Tolerance
}

// isReturningEarly detects a return that begins before the hold requirement
// is met: the angle is still near the target but moving away fast.
func (d *RepDetector) isReturningEarly(angle, velocity float64) bool {
	near := math.Abs(angle-d.thresholds.Target) <= nearTargetFactor*d.thresholds.Tolerance
	return near && d.thresholds.direction()*velocity < -earlyReturnSpeed
}

func (d *RepDetector) trackPeak(angle float64) {
	if d.thresholds.direction()*(angle-d.state.peakAngle) > 0 {
		d.state.peakAngle = angle
	}
}

func (d *RepDetector) completeRep(at time.Time) {
	st := &d.state

	accuracy := d.repAccuracy()
	st.repCount++
	st.accuracies = append(st.accuracies, accuracy)

	st.durations = append(st.durations, at.Sub(st.moveStart))
	if len(st.durations) > repHistoryDepth {
		st.durations = st.durations[1:]
	}

	cooldown := d.adaptiveCooldown()
	st.cooldownUntil = at.Add(cooldown)
	st.lastCompletion = d.strategy.CompletionFeedback(accuracy)
}

// repAccuracy grades the finished rep on how close the peak came to the
// target and how much of the required hold was achieved.
func (d *RepDetector) repAccuracy() float64 {
	st := &d.state
	th := d.thresholds

	shortfall := th.direction() * (th.Target - st.peakAngle)
	angleScore := 1.0
	if shortfall > 0 {
		angleScore = 1 - shortfall/(2*th.Tolerance)
		if angleScore < 0 {
			angleScore = 0
		}
	}

	holdScore := 1.0
	if th.HoldTime > 0 {
		holdScore = float64(st.held) / float64(th.HoldTime)
		if holdScore > 1 {
			holdScore = 1
		}
	}

	return math.Round(100 * (angleAccuracyShare*angleScore + holdAccuracyShare*holdScore))
}

// adaptiveCooldown interpolates between the configured bounds based on the
// user's demonstrated rep speed. Fast movers get short cooldowns so counting
// keeps up; slow movers get long ones so a wobble at the start position is
// not counted twice.
func (d *RepDetector) adaptiveCooldown() time.Duration {
	durations := d.state.durations
	if len(durations) == 0 {
		return d.config.MaxCooldown
	}

	var total time.Duration
	for _, dur := range durations {
		total += dur
	}
	avg := total / time.Duration(len(durations))

	ratio := float64(avg-fastRepDuration) / float64(slowRepDuration-fastRepDuration)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	return d.config.MinCooldown + time.Duration(ratio*float64(d.config.MaxCooldown-d.config.MinCooldown))
}

// lowConfidenceResult reports a frame on which the tracked joints could not
// be measured. The phase is preserved so a brief occlusion does not void an
// in-flight rep; only after lostPoseTimeout does the machine fall back to
// idle, keeping counts and accuracy history.
func (d *RepDetector) lowConfidenceResult(at time.Time) DetectionResult {
	st := &d.state
	if !st.lastSeen.IsZero() && at.Sub(st.lastSeen) > lostPoseTimeout && st.phase != PhaseIdle {
		st.phase = PhaseIdle
		d.smoother.Reset()
		d.velocity.Reset()
	}

	r := d.result(0, false)
	r.Feedback = lowConfidenceFeedback
	return r
}

func (d *RepDetector) result(confidence float64, completed bool) DetectionResult {
	st := &d.state
	progress := d.thresholds.Progress(st.angle)

	feedback := d.strategy.Feedback(st.phase, progress)
	if st.phase == PhaseCooldown && st.lastCompletion != "" {
		feedback = st.lastCompletion
	}

	return DetectionResult{
		Exercise:     d.strategy.Exercise(),
		Phase:        st.phase,
		RepCompleted: completed,
		Angle:        st.angle,
		TargetAngle:  d.thresholds.Target,
		Progress:     progress,
		Accuracy:     meanOf(st.accuracies),
		Confidence:   confidence,
		Feedback:     feedback,
	}
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return total / float64(len(vals))
}
