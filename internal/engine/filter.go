package engine

import "time"

// Adaptive smoothing constants. Small frame-to-frame changes are treated as
// jitter and damped hard; changes beyond fastThreshold are treated as real
// movement and tracked closely.
const (
	smootherFastThreshold = 10.0 // degrees
	smootherFastGain      = 0.7
	smootherSlowGain      = 0.3
)

// AngleSmoother is an exponential moving average with a step-dependent gain.
// Raw joint angles jitter a few degrees frame to frame even when the subject
// is still; a fixed low gain would also lag behind genuine movement, so the
// gain switches up when the input jumps.
type AngleSmoother struct {
	value       float64
	initialized bool
}

// NewAngleSmoother returns a smoother with no history.
func NewAngleSmoother() *AngleSmoother {
	return &AngleSmoother{}
}

// Update feeds a raw angle and returns the smoothed value.
func (s *AngleSmoother) Update(raw float64) float64 {
	if !s.initialized {
		s.value = raw
		s.initialized = true
		return s.value
	}

	delta := raw - s.value
	gain := smootherSlowGain
	if delta > smootherFastThreshold || delta < -smootherFastThreshold {
		gain = smootherFastGain
	}
	s.value += gain * delta
	return s.value
}

// Value returns the current smoothed angle, or 0 before the first update.
func (s *AngleSmoother) Value() float64 {
	return s.value
}

// Reset discards all history.
func (s *AngleSmoother) Reset() {
	s.value = 0
	s.initialized = false
}

// VelocityEstimator derives angular velocity in degrees per second from
// consecutive smoothed angle samples.
type VelocityEstimator struct {
	lastValue float64
	lastAt    time.Time
	velocity  float64
	primed    bool
}

// NewVelocityEstimator returns an estimator with no history.
func NewVelocityEstimator() *VelocityEstimator {
	return &VelocityEstimator{}
}

// Update feeds an angle sample and returns the current velocity estimate.
// The first sample and samples with non-advancing timestamps yield the
// previous estimate.
func (v *VelocityEstimator) Update(value float64, at time.Time) float64 {
	if !v.primed {
		v.lastValue = value
		v.lastAt = at
		v.primed = true
		return 0
	}

	dt := at.Sub(v.lastAt).Seconds()
	if dt > 0 {
		v.velocity = (value - v.lastValue) / dt
		v.lastValue = value
		v.lastAt = at
	}
	return v.velocity
}

// Velocity returns the last computed velocity in degrees per second.
func (v *VelocityEstimator) Velocity() float64 {
	return v.velocity
}

// Reset discards all history.
func (v *VelocityEstimator) Reset() {
	*v = VelocityEstimator{}
}
