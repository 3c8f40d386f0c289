// Package engine provides the exercise detection engine: joint angle
// geometry, signal conditioning, and the repetition and hold phase machines
// that turn a stream of body landmarks into exercise telemetry.
package engine

import (
	"math"

	"github.com/ayusman/physioflow/internal/pose"
)

// Measurement is a joint angle in degrees with the confidence of the
// landmarks it was derived from.
type Measurement struct {
	Angle      float64
	Confidence float64
}

// depthBlendSpread is the z-spread at which the depth-adjusted angle relies
// fully on the 3D measurement. Below it the 2D and 3D angles are blended
// proportionally.
const depthBlendSpread = 0.15

// JointAngle computes the angle in degrees at the vertex between the rays
// vertex→p1 and vertex→p3, using the image-plane projection. Confidence is
// the minimum visibility of the three landmarks. Returns false when a
// landmark is missing or a ray is degenerate.
func JointAngle(p1, vertex, p3 pose.Landmark) (Measurement, bool) {
	if !p1.Visible() || !vertex.Visible() || !p3.Visible() {
		return Measurement{}, false
	}

	angle, ok := angle2D(p1, vertex, p3)
	if !ok {
		return Measurement{}, false
	}

	return Measurement{
		Angle:      angle,
		Confidence: minVisibility(p1, vertex, p3),
	}, true
}

// DepthAdjustedAngle computes the joint angle blending the image-plane
// projection with the full 3D angle. When a limb bends toward or away from
// the camera the 2D projection forecloses the true angle; the blend weight
// grows with the z-spread of the three points so the 3D measurement takes
// over exactly when the projection is unreliable.
func DepthAdjustedAngle(p1, vertex, p3 pose.Landmark) (Measurement, bool) {
	if !p1.Visible() || !vertex.Visible() || !p3.Visible() {
		return Measurement{}, false
	}

	flat, ok := angle2D(p1, vertex, p3)
	if !ok {
		return Measurement{}, false
	}
	deep, ok := angle3D(p1, vertex, p3)
	if !ok {
		return Measurement{}, false
	}

	zs := []float64{p1.Z, vertex.Z, p3.Z}
	spread := maxOf(zs) - minOf(zs)
	weight := math.Min(1, spread/depthBlendSpread)

	return Measurement{
		Angle:      (1-weight)*flat + weight*deep,
		Confidence: minVisibility(p1, vertex, p3),
	}, true
}

func angle2D(p1, vertex, p3 pose.Landmark) (float64, bool) {
	v1x, v1y := p1.X-vertex.X, p1.Y-vertex.Y
	v2x, v2y := p3.X-vertex.X, p3.Y-vertex.Y

	len1 := math.Hypot(v1x, v1y)
	len2 := math.Hypot(v2x, v2y)
	if len1 < 1e-9 || len2 < 1e-9 {
		return 0, false
	}

	cos := (v1x*v2x + v1y*v2y) / (len1 * len2)
	// Clamp against floating-point drift before acos
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, true
}

func angle3D(p1, vertex, p3 pose.Landmark) (float64, bool) {
	v1x, v1y, v1z := p1.X-vertex.X, p1.Y-vertex.Y, p1.Z-vertex.Z
	v2x, v2y, v2z := p3.X-vertex.X, p3.Y-vertex.Y, p3.Z-vertex.Z

	len1 := math.Sqrt(v1x*v1x + v1y*v1y + v1z*v1z)
	len2 := math.Sqrt(v2x*v2x + v2y*v2y + v2z*v2z)
	if len1 < 1e-9 || len2 < 1e-9 {
		return 0, false
	}

	cos := (v1x*v2x + v1y*v2y + v1z*v2z) / (len1 * len2)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, true
}

// AverageSides combines a left and a right joint measurement into one value:
// the average when both sides are measurable, the visible side when only one
// is. The rule is fixed so the tracked angle never jumps from aggregation
// changes frame to frame. Returns false when neither side is measurable.
func AverageSides(left Measurement, leftOK bool, right Measurement, rightOK bool) (Measurement, bool) {
	switch {
	case leftOK && rightOK:
		return Measurement{
			Angle:      (left.Angle + right.Angle) / 2,
			Confidence: math.Min(left.Confidence, right.Confidence),
		}, true
	case leftOK:
		return left, true
	case rightOK:
		return right, true
	default:
		return Measurement{}, false
	}
}

func minVisibility(points ...pose.Landmark) float64 {
	min := 1.0
	for _, p := range points {
		if p.Visibility < min {
			min = p.Visibility
		}
	}
	return min
}

func maxOf(vals []float64) float64 {
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func minOf(vals []float64) float64 {
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
