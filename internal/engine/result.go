package engine

import "time"

// Exercise identifies an exercise type.
type Exercise string

// Phase is a detector state exposed to clients. Repetition detectors move
// through the idle→cooldown cycle; hold detectors through waiting→completed
// with broken as the excursion state. Holding is shared: it means "at the
// target" in both machines.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseReady     Phase = "ready"
	PhaseMoving    Phase = "moving"
	PhaseHolding   Phase = "holding"
	PhaseReturning Phase = "returning"
	PhaseCooldown  Phase = "cooldown"

	PhaseWaiting     Phase = "waiting"
	PhasePositioning Phase = "positioning"
	PhaseCompleted   Phase = "completed"
	PhaseBroken      Phase = "broken"
)

// DetectionResult is the per-frame output of a detector.
type DetectionResult struct {
	Exercise     Exercise `json:"exercise"`
	Phase        Phase    `json:"phase"`
	RepCompleted bool     `json:"rep_completed"`
	Angle        float64  `json:"angle"`
	TargetAngle  float64  `json:"target_angle"`
	Progress     float64  `json:"progress"`
	Accuracy     float64  `json:"accuracy"`
	Confidence   float64  `json:"confidence"`
	Feedback     string   `json:"feedback"`
	HoldProgress float64  `json:"hold_progress,omitempty"`
}

// HoldStats summarizes an isometric hold attempt history.
type HoldStats struct {
	Current        time.Duration `json:"current"`
	Longest        time.Duration `json:"longest"`
	Target         time.Duration `json:"target"`
	BrokenAttempts int           `json:"broken_attempts"`
	Completed      int           `json:"completed"`
}
