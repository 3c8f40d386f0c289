package app

import (
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/physioflow/internal/capture"
	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
	"github.com/ayusman/physioflow/internal/store"
)

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return New(Config{Store: s, MotionThresh: 0.05}), s
}

func TestApp_LoadCalibrations(t *testing.T) {
	a, s := newTestApp(t)

	saved := engine.Thresholds{
		Start:      engine.Band(58, 14),
		Target:     162,
		Tolerance:  13,
		HoldTime:   700 * time.Millisecond,
		ComputedAt: time.Now(),
	}
	err := s.Calibrations().Upsert(&store.Calibration{Exercise: "glute_bridge", Thresholds: saved})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := a.LoadCalibrations(); err != nil {
		t.Fatalf("LoadCalibrations() error = %v", err)
	}

	th, err := a.Registry().Thresholds("glute_bridge")
	if err != nil {
		t.Fatalf("Thresholds() error = %v", err)
	}
	if th.Target != 162 || th.Start.Center != 58 {
		t.Errorf("loaded thresholds = %+v, want saved calibration", th)
	}

	// Uncalibrated exercises keep their defaults
	th, err = a.Registry().Thresholds("wall_push")
	if err != nil {
		t.Fatalf("Thresholds() error = %v", err)
	}
	if th.ComputedAt.IsZero() == false {
		t.Errorf("wall_push should keep default thresholds, got %+v", th)
	}
}

func TestApp_CoachingSession(t *testing.T) {
	a, s := newTestApp(t)
	controller := a.Controller()

	start := time.Now()
	id, err := controller.Start("glute_bridge", start)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// One full bridge rep: lift to extension, hold, return to rest
	angles := []float64{60, 90, 130, 166, 166, 166, 150, 90, 60}
	at := start
	for _, deg := range angles {
		at = at.Add(500 * time.Millisecond)
		if _, err := controller.Feed(pose.HipAngleFrame(deg), at); err != nil {
			t.Fatalf("Feed() error = %v", err)
		}
	}

	summary, err := controller.Stop(at)
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if summary.Reps != 1 {
		t.Errorf("summary.Reps = %d, want 1", summary.Reps)
	}

	persisted, err := s.Sessions().GetByID(id)
	if err != nil {
		t.Fatalf("session should be persisted: %v", err)
	}
	if persisted.Reps != 1 {
		t.Errorf("persisted.Reps = %d, want 1", persisted.Reps)
	}
}

func TestApp_Pipeline_FeedsActiveSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, s := newTestApp(t)

	// Alternating black and white frames keep the motion detector firing
	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()

	a.camera = capture.NewMockCamera([]*gocv.Mat{&black, &white}, true)

	provider := pose.NewMockProvider()
	provider.SetFrame(pose.HipAngleFrame(60))
	a.SetProvider(provider)

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	id, err := a.Controller().Start("glute_bridge", time.Now())
	if err != nil {
		t.Fatalf("session start error = %v", err)
	}

	// Let the pipeline tick through motion detection into pose feeding
	deadline := time.After(3 * time.Second)
	for {
		result := a.Controller().LastResult()
		if result.Exercise == "glute_bridge" && result.Confidence > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("pipeline never fed the active session")
		case <-time.After(50 * time.Millisecond):
		}
	}

	// Stop tears down the pipeline and persists the session
	a.Stop()

	if _, err := s.Sessions().GetByID(id); err != nil {
		t.Errorf("session should be persisted after Stop: %v", err)
	}
}
