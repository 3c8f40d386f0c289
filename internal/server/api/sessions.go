package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/session"
	"github.com/ayusman/physioflow/internal/store"
)

// SessionHandler handles HTTP requests for session resources: starting and
// stopping the live session and browsing the session history.
type SessionHandler struct {
	controller *session.Controller
	store      *store.Store
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(controller *session.Controller, s *store.Store) *SessionHandler {
	return &SessionHandler{controller: controller, store: s}
}

// ServeHTTP routes session requests.
// Expected paths: /api/sessions, /api/sessions/start, /api/sessions/stop,
// /api/sessions/active, /api/sessions/{id}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
	case "start":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.start(w, r)
	case "stop":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stop(w, r)
	case "active":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.active(w, r)
	default:
		id := path
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type startSessionRequest struct {
	Exercise string `json:"exercise"`
}

type startSessionResponse struct {
	ID       string `json:"id"`
	Exercise string `json:"exercise"`
}

type activeSessionResponse struct {
	Active   bool   `json:"active"`
	ID       string `json:"id,omitempty"`
	Exercise string `json:"exercise,omitempty"`
}

type sessionResponse struct {
	ID             string    `json:"id"`
	Exercise       string    `json:"exercise"`
	StartedAt      string    `json:"started_at"`
	EndedAt        string    `json:"ended_at"`
	Reps           int       `json:"reps"`
	CompletedHolds int       `json:"completed_holds"`
	BrokenAttempts int       `json:"broken_attempts"`
	LongestHoldMs  int64     `json:"longest_hold_ms"`
	MeanAccuracy   float64   `json:"mean_accuracy"`
	AccuracyStdDev float64   `json:"accuracy_stddev"`
	RepAccuracies  []float64 `json:"rep_accuracies,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:             s.ID,
		Exercise:       string(s.Exercise),
		StartedAt:      s.StartedAt.Format(time.RFC3339),
		EndedAt:        s.EndedAt.Format(time.RFC3339),
		Reps:           s.Reps,
		CompletedHolds: s.CompletedHolds,
		BrokenAttempts: s.BrokenAttempts,
		LongestHoldMs:  s.LongestHold.Milliseconds(),
		MeanAccuracy:   s.MeanAccuracy,
		AccuracyStdDev: s.AccuracyStdDev,
		RepAccuracies:  s.RepAccuracies,
	}
}

// start handles POST /api/sessions/start.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "Exercise is required")
		return
	}

	id, err := h.controller.Start(engine.Exercise(req.Exercise), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, exercise.ErrUnknownExercise):
			writeError(w, http.StatusNotFound, "Exercise not found")
		case errors.Is(err, session.ErrSessionActive):
			writeError(w, http.StatusConflict, "A session is already active")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to start session")
		}
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{ID: id, Exercise: req.Exercise})
}

// stop handles POST /api/sessions/stop and returns the session summary.
func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request) {
	summary, err := h.controller.Stop(time.Now())
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			writeError(w, http.StatusConflict, "No active session")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to stop session")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// active handles GET /api/sessions/active.
func (h *SessionHandler) active(w http.ResponseWriter, r *http.Request) {
	ex, id, running := h.controller.Active()

	resp := activeSessionResponse{Active: running}
	if running {
		resp.ID = id
		resp.Exercise = string(ex)
	}
	writeJSON(w, http.StatusOK, resp)
}

// list handles GET /api/sessions with optional exercise and limit query
// parameters.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	ex := engine.Exercise(r.URL.Query().Get("exercise"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	sessions, err := h.store.Sessions().List(ex, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
