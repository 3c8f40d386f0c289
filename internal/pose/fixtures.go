package pose

import "math"

// Synthetic pose fixtures for tests. Each builder returns a full-body frame
// in which the joints an exercise measures are placed at an exact angle,
// so detector tests can drive the phase machines with known trajectories.

const (
	fixtureVisibility = 0.95
	fixtureRayLength  = 0.18
)

// NeutralFrame returns a standing figure seen from the side, every landmark
// visible. Coordinates are normalized screen space (y grows downward).
func NeutralFrame() *Frame {
	f := &Frame{Score: fixtureVisibility}

	place := func(i int, x, y float64) {
		f.Points[i] = Landmark{X: x, Y: y, Visibility: fixtureVisibility}
	}

	// Head
	place(Nose, 0.50, 0.10)
	place(LeftEyeInner, 0.49, 0.09)
	place(LeftEye, 0.48, 0.09)
	place(LeftEyeOuter, 0.47, 0.09)
	place(RightEyeInner, 0.51, 0.09)
	place(RightEye, 0.52, 0.09)
	place(RightEyeOuter, 0.53, 0.09)
	place(LeftEar, 0.46, 0.10)
	place(RightEar, 0.54, 0.10)
	place(MouthLeft, 0.49, 0.12)
	place(MouthRight, 0.51, 0.12)

	// Torso
	place(LeftShoulder, 0.46, 0.22)
	place(RightShoulder, 0.54, 0.22)
	place(LeftHip, 0.47, 0.48)
	place(RightHip, 0.53, 0.48)

	// Arms hanging down
	place(LeftElbow, 0.44, 0.34)
	place(RightElbow, 0.56, 0.34)
	place(LeftWrist, 0.43, 0.46)
	place(RightWrist, 0.57, 0.46)
	place(LeftPinky, 0.43, 0.49)
	place(RightPinky, 0.57, 0.49)
	place(LeftIndex, 0.42, 0.49)
	place(RightIndex, 0.58, 0.49)
	place(LeftThumb, 0.44, 0.48)
	place(RightThumb, 0.56, 0.48)

	// Legs straight
	place(LeftKnee, 0.47, 0.68)
	place(RightKnee, 0.53, 0.68)
	place(LeftAnkle, 0.47, 0.88)
	place(RightAnkle, 0.53, 0.88)
	place(LeftHeel, 0.46, 0.91)
	place(RightHeel, 0.54, 0.91)
	place(LeftFootIndex, 0.50, 0.92)
	place(RightFootIndex, 0.56, 0.92)

	return f
}

// EmptyFrame returns a frame in which every landmark has zero visibility,
// simulating a subject out of view.
func EmptyFrame() *Frame {
	return &Frame{}
}

// SetJointAngle repositions landmarks a and c around the vertex so that the
// angle at the vertex is exactly deg (in the image plane, z untouched).
// Landmark a is placed straight above the vertex, c rotated deg from it.
func SetJointAngle(f *Frame, a, vertex, c int, deg float64) {
	v := f.Points[vertex]
	rad := deg * math.Pi / 180

	f.Points[a] = Landmark{
		X:          v.X,
		Y:          v.Y - fixtureRayLength,
		Visibility: f.Points[a].Visibility,
	}
	f.Points[c] = Landmark{
		X:          v.X + fixtureRayLength*math.Sin(rad),
		Y:          v.Y - fixtureRayLength*math.Cos(rad),
		Visibility: f.Points[c].Visibility,
	}
}

// HipAngleFrame returns a frame whose shoulder-hip-knee angle is deg on
// both sides. Drives the hip-hinge detectors.
func HipAngleFrame(deg float64) *Frame {
	f := NeutralFrame()
	SetJointAngle(f, LeftShoulder, LeftHip, LeftKnee, deg)
	SetJointAngle(f, RightShoulder, RightHip, RightKnee, deg)
	return f
}

// KneeAngleFrame returns a frame whose hip-knee-ankle angle is deg on both
// sides. Drives the sit-to-stand and wall-sit detectors.
func KneeAngleFrame(deg float64) *Frame {
	f := NeutralFrame()
	SetJointAngle(f, LeftHip, LeftKnee, LeftAnkle, deg)
	SetJointAngle(f, RightHip, RightKnee, RightAnkle, deg)
	return f
}

// ElbowAngleFrame returns a frame whose shoulder-elbow-wrist angle is deg
// on both sides. Drives the wall-push detector.
func ElbowAngleFrame(deg float64) *Frame {
	f := NeutralFrame()
	SetJointAngle(f, LeftShoulder, LeftElbow, LeftWrist, deg)
	SetJointAngle(f, RightShoulder, RightElbow, RightWrist, deg)
	return f
}

// AlignmentFrame returns a frame whose shoulder-hip-ankle alignment angle is
// deg on both sides. Drives the plank detector.
func AlignmentFrame(deg float64) *Frame {
	f := NeutralFrame()
	SetJointAngle(f, LeftShoulder, LeftHip, LeftAnkle, deg)
	SetJointAngle(f, RightShoulder, RightHip, RightAnkle, deg)
	return f
}

// MarchFrame returns a frame in which the lifting side's hip angle is
// liftedDeg while the other side stays at restDeg. Drives the seated-march
// detector's side tracking.
func MarchFrame(lifting Side, liftedDeg, restDeg float64) *Frame {
	f := NeutralFrame()
	if lifting == SideLeft {
		SetJointAngle(f, LeftShoulder, LeftHip, LeftKnee, liftedDeg)
		SetJointAngle(f, RightShoulder, RightHip, RightKnee, restDeg)
	} else {
		SetJointAngle(f, LeftShoulder, LeftHip, LeftKnee, restDeg)
		SetJointAngle(f, RightShoulder, RightHip, RightKnee, liftedDeg)
	}
	return f
}

// HideSide zeroes the visibility of every limb landmark on one side,
// simulating partial occlusion.
func HideSide(f *Frame, side Side) {
	left := []int{LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftKnee, LeftAnkle, LeftHeel, LeftFootIndex}
	right := []int{RightShoulder, RightElbow, RightWrist, RightHip, RightKnee, RightAnkle, RightHeel, RightFootIndex}

	indices := left
	if side == SideRight {
		indices = right
	}
	for _, i := range indices {
		f.Points[i].Visibility = 0
	}
}
