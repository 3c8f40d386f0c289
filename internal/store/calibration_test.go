package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/physioflow/internal/engine"
)

func testThresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:      engine.Band(60, 15),
		Target:     165,
		Tolerance:  15,
		HoldTime:   500 * time.Millisecond,
		ComputedAt: time.Now().Truncate(time.Second),
	}
}

func TestCalibrationRepository_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Calibrations()

	cal := &Calibration{
		Exercise:   "glute_bridge",
		Thresholds: testThresholds(),
	}

	if err := repo.Upsert(cal); err != nil {
		t.Fatalf("failed to upsert calibration: %v", err)
	}

	got, err := repo.Get("glute_bridge")
	if err != nil {
		t.Fatalf("failed to get calibration: %v", err)
	}

	if got.Thresholds.Start.Center != 60 {
		t.Errorf("expected start center 60, got %f", got.Thresholds.Start.Center)
	}
	if got.Thresholds.Target != 165 {
		t.Errorf("expected target 165, got %f", got.Thresholds.Target)
	}
	if got.Thresholds.HoldTime != 500*time.Millisecond {
		t.Errorf("expected hold time 500ms, got %v", got.Thresholds.HoldTime)
	}
}

func TestCalibrationRepository_UpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	repo := s.Calibrations()

	cal := &Calibration{Exercise: "wall_sit", Thresholds: testThresholds()}
	if err := repo.Upsert(cal); err != nil {
		t.Fatalf("failed to upsert calibration: %v", err)
	}

	cal.Thresholds.Target = 95
	if err := repo.Upsert(cal); err != nil {
		t.Fatalf("failed to upsert replacement: %v", err)
	}

	got, err := repo.Get("wall_sit")
	if err != nil {
		t.Fatalf("failed to get calibration: %v", err)
	}
	if got.Thresholds.Target != 95 {
		t.Errorf("expected replaced target 95, got %f", got.Thresholds.Target)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list calibrations: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 calibration after replace, got %d", len(all))
	}
}

func TestCalibrationRepository_GetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Calibrations().Get("plank")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCalibrationRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Calibrations()

	cal := &Calibration{Exercise: "sit_to_stand", Thresholds: testThresholds()}
	if err := repo.Upsert(cal); err != nil {
		t.Fatalf("failed to upsert calibration: %v", err)
	}

	if err := repo.Delete("sit_to_stand"); err != nil {
		t.Fatalf("failed to delete calibration: %v", err)
	}

	if _, err := repo.Get("sit_to_stand"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete("sit_to_stand"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}
