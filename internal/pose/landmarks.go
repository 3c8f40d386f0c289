// Package pose provides body pose detection interfaces and the landmark
// model consumed by the exercise detection engine.
package pose

import "math"

// Body landmark indices following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// MinVisibility is the visibility score below which a landmark is treated
// as absent by the engine.
const MinVisibility = 0.5

// Side identifies one half of the body for bilateral measurements.
type Side string

const (
	// SideLeft is the left side of the body.
	SideLeft Side = "left"
	// SideRight is the right side of the body.
	SideRight Side = "right"
)

// Landmark represents one tracked body point. X and Y are normalized to the
// visible frame, Z is a depth estimate relative to the hip midpoint, and
// Visibility is the tracker's confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Visible reports whether the landmark is confident enough to measure from.
func (l Landmark) Visible() bool {
	return l.Visibility >= MinVisibility
}

// Frame represents one captured set of body landmarks.
// Individual points may be absent or low-confidence; consumers must check
// visibility before measuring.
type Frame struct {
	Points      [NumLandmarks]Landmark `json:"points"`
	TimestampMs int64                  `json:"timestamp_ms"`
	Score       float64                `json:"score"`
}

// Point returns the landmark at the given index and whether it is visible.
func (f *Frame) Point(i int) (Landmark, bool) {
	if f == nil || i < 0 || i >= NumLandmarks {
		return Landmark{}, false
	}
	p := f.Points[i]
	return p, p.Visible()
}

// Triple returns three landmarks at once, reporting false if any of them
// is missing. Used for joint angle measurements (two rays and a vertex).
func (f *Frame) Triple(a, vertex, c int) (Landmark, Landmark, Landmark, bool) {
	p1, ok1 := f.Point(a)
	p2, ok2 := f.Point(vertex)
	p3, ok3 := f.Point(c)
	return p1, p2, p3, ok1 && ok2 && ok3
}

// distance3D calculates the Euclidean distance between two landmarks.
func distance3D(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize normalizes the frame relative to the hip midpoint and torso
// length: the hip midpoint moves to the origin and distances are scaled so
// that the hip-to-shoulder midline is 1.0. Returns a new Frame.
// Visibility scores are preserved.
func (f *Frame) Normalize() *Frame {
	if f == nil {
		return nil
	}

	normalized := &Frame{
		TimestampMs: f.TimestampMs,
		Score:       f.Score,
	}

	midHip := midpoint(f.Points[LeftHip], f.Points[RightHip])
	midShoulder := midpoint(f.Points[LeftShoulder], f.Points[RightShoulder])

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Landmark{
			X:          f.Points[i].X - midHip.X,
			Y:          f.Points[i].Y - midHip.Y,
			Z:          f.Points[i].Z - midHip.Z,
			Visibility: f.Points[i].Visibility,
		}
	}

	scale := distance3D(midHip, midShoulder)
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}

func midpoint(a, b Landmark) Landmark {
	return Landmark{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}
