// Package exercise defines the supported rehabilitation exercises: their
// detection strategies, default thresholds and coaching copy, plus the
// registry that owns one live detector per exercise.
package exercise

import (
	"errors"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
)

// ErrUnknownExercise is returned when a requested exercise is not supported.
var ErrUnknownExercise = errors.New("unknown exercise")

const (
	GluteBridge engine.Exercise = "glute_bridge"
	WallPush    engine.Exercise = "wall_push"
	SitToStand  engine.Exercise = "sit_to_stand"
	SeatedMarch engine.Exercise = "seated_march"
	Plank       engine.Exercise = "plank"
	WallSit     engine.Exercise = "wall_sit"
)

// All returns the supported exercises in a stable order.
func All() []engine.Exercise {
	return []engine.Exercise{GluteBridge, WallPush, SitToStand, SeatedMarch, Plank, WallSit}
}

// IsHold reports whether the exercise is an isometric hold rather than a
// counted repetition movement.
func IsHold(ex engine.Exercise) bool {
	return ex == Plank || ex == WallSit
}

// NewStrategy returns the detection strategy for an exercise.
func NewStrategy(ex engine.Exercise) (engine.Strategy, error) {
	switch ex {
	case GluteBridge:
		return bridgeStrategy{}, nil
	case WallPush:
		return wallPushStrategy{}, nil
	case SitToStand:
		return sitToStandStrategy{}, nil
	case SeatedMarch:
		return marchStrategy{side: pose.SideLeft}, nil
	case Plank:
		return plankStrategy{}, nil
	case WallSit:
		return wallSitStrategy{}, nil
	default:
		return nil, ErrUnknownExercise
	}
}

// NewDetector builds a detector for the exercise with its default
// thresholds.
func NewDetector(ex engine.Exercise) (engine.Detector, error) {
	strategy, err := NewStrategy(ex)
	if err != nil {
		return nil, err
	}
	return NewDetectorWith(ex, strategy.Thresholds())
}

// NewDetectorWith builds a detector with explicit thresholds, typically
// from a stored calibration. Hold exercises get a hold detector whose
// target duration is the thresholds' hold time; the seated march gets its
// side-tracking wrapper; everything else gets a rep detector.
func NewDetectorWith(ex engine.Exercise, thresholds engine.Thresholds) (engine.Detector, error) {
	if ex == SeatedMarch {
		return NewMarchDetector(thresholds)
	}

	strategy, err := NewStrategy(ex)
	if err != nil {
		return nil, err
	}

	if IsHold(ex) {
		return engine.NewHoldDetectorWith(strategy, thresholds, thresholds.HoldTime)
	}
	return engine.NewRepDetectorWith(strategy, thresholds, engine.DefaultRepConfig())
}

// measureTriple extracts the depth-adjusted angle at a landmark triple.
func measureTriple(f *pose.Frame, a, vertex, c int) (engine.Measurement, bool) {
	p1, v, p3, ok := f.Triple(a, vertex, c)
	if !ok {
		return engine.Measurement{}, false
	}
	return engine.DepthAdjustedAngle(p1, v, p3)
}

// bilateralAngle measures the same joint on both sides and aggregates via
// the fixed both-average/one-side rule.
func bilateralAngle(f *pose.Frame, lA, lV, lC, rA, rV, rC int) (engine.Measurement, bool) {
	left, leftOK := measureTriple(f, lA, lV, lC)
	right, rightOK := measureTriple(f, rA, rV, rC)
	return engine.AverageSides(left, leftOK, right, rightOK)
}

// gradeCompletion picks the completion cue for an accuracy score.
func gradeCompletion(accuracy float64, perfect, good, poor string) string {
	switch {
	case accuracy >= 90:
		return perfect
	case accuracy >= 70:
		return good
	default:
		return poor
	}
}
