// Package api provides HTTP API handlers for the PhysioFlow exercise
// coaching system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/store"
)

// ExerciseHandler handles HTTP requests for exercise resources: the
// supported exercise catalog and per-exercise calibration thresholds.
type ExerciseHandler struct {
	registry *exercise.Registry
	store    *store.Store
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(registry *exercise.Registry, s *store.Store) *ExerciseHandler {
	return &ExerciseHandler{registry: registry, store: s}
}

// ServeHTTP routes exercise requests.
// Expected paths: /api/exercises, /api/exercises/{exercise},
// /api/exercises/{exercise}/thresholds, /api/exercises/{exercise}/reset.
func (h *ExerciseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/exercises")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	name, rest, _ := strings.Cut(path, "/")
	ex := engine.Exercise(name)

	switch rest {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w, r, ex)
	case "thresholds":
		switch r.Method {
		case http.MethodPut:
			h.setThresholds(w, r, ex)
		case http.MethodDelete:
			h.clearThresholds(w, r, ex)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.reset(w, r, ex)
	default:
		writeError(w, http.StatusNotFound, "Unknown resource")
	}
}

// Request and response types

type thresholdsPayload struct {
	StartCenter float64 `json:"start_center"`
	StartMin    float64 `json:"start_min"`
	StartMax    float64 `json:"start_max"`
	Target      float64 `json:"target"`
	Tolerance   float64 `json:"tolerance"`
	HoldTimeMs  int64   `json:"hold_time_ms"`
}

type exerciseResponse struct {
	Exercise   string            `json:"exercise"`
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Thresholds thresholdsPayload `json:"thresholds"`
	Calibrated bool              `json:"calibrated"`
}

type listExercisesResponse struct {
	Exercises []exerciseResponse `json:"exercises"`
}

func (p thresholdsPayload) toThresholds() engine.Thresholds {
	return engine.Thresholds{
		Start:      engine.AngleBand{Center: p.StartCenter, Min: p.StartMin, Max: p.StartMax},
		Target:     p.Target,
		Tolerance:  p.Tolerance,
		HoldTime:   time.Duration(p.HoldTimeMs) * time.Millisecond,
		ComputedAt: time.Now(),
	}
}

func toThresholdsPayload(th engine.Thresholds) thresholdsPayload {
	return thresholdsPayload{
		StartCenter: th.Start.Center,
		StartMin:    th.Start.Min,
		StartMax:    th.Start.Max,
		Target:      th.Target,
		Tolerance:   th.Tolerance,
		HoldTimeMs:  th.HoldTime.Milliseconds(),
	}
}

func (h *ExerciseHandler) toResponse(ex engine.Exercise) (exerciseResponse, error) {
	strategy, err := exercise.NewStrategy(ex)
	if err != nil {
		return exerciseResponse{}, err
	}

	th, err := h.registry.Thresholds(ex)
	if err != nil {
		return exerciseResponse{}, err
	}

	kind := "reps"
	if exercise.IsHold(ex) {
		kind = "hold"
	}

	return exerciseResponse{
		Exercise:   string(ex),
		Name:       strategy.Name(),
		Kind:       kind,
		Thresholds: toThresholdsPayload(th),
		Calibrated: !th.ComputedAt.IsZero(),
	}, nil
}

// list handles GET /api/exercises.
func (h *ExerciseHandler) list(w http.ResponseWriter, r *http.Request) {
	response := listExercisesResponse{
		Exercises: make([]exerciseResponse, 0, len(exercise.All())),
	}

	for _, ex := range exercise.All() {
		resp, err := h.toResponse(ex)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list exercises")
			return
		}
		response.Exercises = append(response.Exercises, resp)
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/exercises/{exercise}.
func (h *ExerciseHandler) get(w http.ResponseWriter, r *http.Request, ex engine.Exercise) {
	resp, err := h.toResponse(ex)
	if err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// setThresholds handles PUT /api/exercises/{exercise}/thresholds. The new
// thresholds take effect immediately and are persisted as the exercise's
// calibration.
func (h *ExerciseHandler) setThresholds(w http.ResponseWriter, r *http.Request, ex engine.Exercise) {
	var payload thresholdsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	th := payload.toThresholds()
	if err := th.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registry.SetThresholds(ex, th); err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.store != nil {
		cal := &store.Calibration{Exercise: ex, Thresholds: th}
		if err := h.store.Calibrations().Upsert(cal); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist calibration")
			return
		}
	}

	resp, err := h.toResponse(ex)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// clearThresholds handles DELETE /api/exercises/{exercise}/thresholds,
// returning the exercise to its default thresholds.
func (h *ExerciseHandler) clearThresholds(w http.ResponseWriter, r *http.Request, ex engine.Exercise) {
	if err := h.registry.ClearThresholds(ex); err != nil {
		if errors.Is(err, exercise.ErrUnknownExercise) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to clear calibration")
		return
	}

	if h.store != nil {
		if err := h.store.Calibrations().Delete(ex); err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "Failed to delete calibration")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// reset handles POST /api/exercises/{exercise}/reset, zeroing the live
// detector's counts and phase.
func (h *ExerciseHandler) reset(w http.ResponseWriter, r *http.Request, ex engine.Exercise) {
	if _, err := exercise.NewStrategy(ex); err != nil {
		writeError(w, http.StatusNotFound, "Exercise not found")
		return
	}

	h.registry.Reset(ex)
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
