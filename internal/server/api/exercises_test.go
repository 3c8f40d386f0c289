package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "physioflow-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestExerciseHandler_List(t *testing.T) {
	handler := NewExerciseHandler(exercise.NewRegistry(), newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/exercises", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listExercisesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Exercises) != len(exercise.All()) {
		t.Errorf("expected %d exercises, got %d", len(exercise.All()), len(response.Exercises))
	}

	kinds := map[string]string{}
	for _, ex := range response.Exercises {
		kinds[ex.Exercise] = ex.Kind
	}
	if kinds["glute_bridge"] != "reps" {
		t.Errorf("expected glute_bridge to be a reps exercise, got %q", kinds["glute_bridge"])
	}
	if kinds["wall_sit"] != "hold" {
		t.Errorf("expected wall_sit to be a hold exercise, got %q", kinds["wall_sit"])
	}
}

func TestExerciseHandler_Get(t *testing.T) {
	handler := NewExerciseHandler(exercise.NewRegistry(), newTestStore(t))

	t.Run("known exercise", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/exercises/glute_bridge", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var resp exerciseResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Name != "Glute Bridge" {
			t.Errorf("expected name Glute Bridge, got %q", resp.Name)
		}
		if resp.Thresholds.Target != 165 {
			t.Errorf("expected default target 165, got %f", resp.Thresholds.Target)
		}
		if resp.Calibrated {
			t.Error("expected uncalibrated exercise")
		}
	})

	t.Run("unknown exercise", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/exercises/juggling", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestExerciseHandler_SetThresholds(t *testing.T) {
	s := newTestStore(t)
	registry := exercise.NewRegistry()
	handler := NewExerciseHandler(registry, s)

	t.Run("valid thresholds are applied and persisted", func(t *testing.T) {
		payload := thresholdsPayload{
			StartCenter: 70, StartMin: 58, StartMax: 82,
			Target: 150, Tolerance: 12, HoldTimeMs: 1000,
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPut, "/api/exercises/glute_bridge/thresholds", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		var resp exerciseResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Thresholds.Target != 150 {
			t.Errorf("expected target 150, got %f", resp.Thresholds.Target)
		}
		if !resp.Calibrated {
			t.Error("expected exercise to be marked calibrated")
		}

		cal, err := s.Calibrations().Get("glute_bridge")
		if err != nil {
			t.Fatalf("calibration should be persisted: %v", err)
		}
		if cal.Thresholds.Target != 150 {
			t.Errorf("expected persisted target 150, got %f", cal.Thresholds.Target)
		}
	})

	t.Run("invalid thresholds are rejected", func(t *testing.T) {
		payload := thresholdsPayload{
			StartCenter: 60, StartMin: 45, StartMax: 75,
			Target: 70, Tolerance: 15, // target inside the start band
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPut, "/api/exercises/glute_bridge/thresholds", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("delete reverts to defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/exercises/glute_bridge/thresholds", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/exercises/glute_bridge", nil)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var resp exerciseResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Thresholds.Target != 165 {
			t.Errorf("expected default target 165 after delete, got %f", resp.Thresholds.Target)
		}
	})
}

func TestExerciseHandler_Reset(t *testing.T) {
	handler := NewExerciseHandler(exercise.NewRegistry(), newTestStore(t))

	req := httptest.NewRequest(http.MethodPost, "/api/exercises/wall_sit/reset", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/exercises/juggling/reset", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for unknown exercise, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestExerciseHandler_MethodNotAllowed(t *testing.T) {
	handler := NewExerciseHandler(exercise.NewRegistry(), newTestStore(t))

	req := httptest.NewRequest(http.MethodDelete, "/api/exercises", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
