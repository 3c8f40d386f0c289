package engine

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTolerance indicates a non-positive angle tolerance.
	ErrInvalidTolerance = errors.New("tolerance must be positive")
	// ErrInvalidStartBand indicates a start band whose bounds do not
	// enclose its center.
	ErrInvalidStartBand = errors.New("start band bounds must enclose center")
	// ErrAmbiguousPolarity indicates a target angle inside the start band,
	// which leaves the movement direction undefined.
	ErrAmbiguousPolarity = errors.New("target angle must lie outside the start band")
	// ErrInvalidHoldTime indicates a negative hold requirement.
	ErrInvalidHoldTime = errors.New("hold time must not be negative")
	// ErrInvalidCooldown indicates cooldown bounds that are non-positive
	// or inverted.
	ErrInvalidCooldown = errors.New("cooldown bounds must be positive and ordered")
	// ErrInvalidHoldTarget indicates a non-positive target hold duration.
	ErrInvalidHoldTarget = errors.New("target hold duration must be positive")
)

// AngleBand is a range of acceptable joint angles around a center value,
// all in degrees.
type AngleBand struct {
	Center float64 `json:"center"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Contains reports whether the angle falls inside the band, inclusive.
func (b AngleBand) Contains(angle float64) bool {
	return angle >= b.Min && angle <= b.Max
}

// Band returns the symmetric band of the given half-width around center.
func Band(center, halfWidth float64) AngleBand {
	return AngleBand{Center: center, Min: center - halfWidth, Max: center + halfWidth}
}

// Thresholds parameterizes a detector: the resting position band, the target
// angle with its tolerance, and the required hold at the target. Thresholds
// come either from an exercise's defaults or from a per-user calibration; in
// the latter case ComputedAt records when the calibration ran.
type Thresholds struct {
	Start      AngleBand     `json:"start"`
	Target     float64       `json:"target"`
	Tolerance  float64       `json:"tolerance"`
	HoldTime   time.Duration `json:"hold_time"`
	ComputedAt time.Time     `json:"computed_at,omitempty"`
}

// Validate checks internal consistency. Detector constructors reject
// thresholds that fail validation so a misconfigured detector can never
// start counting.
func (t Thresholds) Validate() error {
	if t.Tolerance <= 0 {
		return ErrInvalidTolerance
	}
	if t.Start.Min > t.Start.Center || t.Start.Center > t.Start.Max {
		return ErrInvalidStartBand
	}
	if t.Start.Contains(t.Target) {
		return ErrAmbiguousPolarity
	}
	if t.HoldTime < 0 {
		return ErrInvalidHoldTime
	}
	return nil
}

// Increasing reports whether the movement raises the joint angle toward the
// target. The polarity is fixed by the threshold geometry, never guessed
// from the stream.
func (t Thresholds) Increasing() bool {
	return t.Target > t.Start.Center
}

// TotalROM returns the range of motion from the start center to the target,
// in degrees.
func (t Thresholds) TotalROM() float64 {
	rom := t.Target - t.Start.Center
	if rom < 0 {
		return -rom
	}
	return rom
}

// Progress maps an angle onto [0, 1] between the start center and the
// target. Values beyond either end are clamped, so progress is monotonic in
// movement toward the target.
func (t Thresholds) Progress(angle float64) float64 {
	span := t.Target - t.Start.Center
	if span == 0 {
		return 0
	}
	p := (angle - t.Start.Center) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// direction returns +1 for increasing movements, -1 for decreasing ones.
// Multiplying angles or velocities by it folds both polarities into one
// "toward the target is positive" frame.
func (t Thresholds) direction() float64 {
	if t.Increasing() {
		return 1
	}
	return -1
}
