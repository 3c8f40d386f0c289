package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/pose"
	"github.com/ayusman/physioflow/internal/server"
	"github.com/ayusman/physioflow/internal/session"
	"github.com/ayusman/physioflow/internal/store"
)

func newStack(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	registry := exercise.NewRegistry()
	controller := session.NewController(registry, s.Sessions())

	srv := server.New(server.Config{
		Store:      s,
		Registry:   registry,
		Controller: controller,
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return ts, s
}

// detectMessage mirrors the wire format of the /api/detect endpoint.
type detectMessage struct {
	Type        string                  `json:"type"`
	Exercise    string                  `json:"exercise,omitempty"`
	TimestampMs int64                   `json:"timestamp_ms,omitempty"`
	Score       float64                 `json:"score,omitempty"`
	Points      []map[string]float64    `json:"points,omitempty"`
	SessionID   string                  `json:"session_id,omitempty"`
	Result      *engine.DetectionResult `json:"result,omitempty"`
	Summary     *session.Summary        `json:"summary,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

func frameMessage(f *pose.Frame, atMs int64) detectMessage {
	points := make([]map[string]float64, pose.NumLandmarks)
	for i, p := range f.Points {
		points[i] = map[string]float64{
			"x": p.X, "y": p.Y, "z": p.Z, "visibility": p.Visibility,
		}
	}
	return detectMessage{
		Type:        "frame",
		TimestampMs: atMs,
		Score:       f.Score,
		Points:      points,
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	ts, s := newStack(t)
	client := ts.Client()

	t.Run("ListExercises", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/exercises")
		if err != nil {
			t.Fatalf("list exercises error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var listed struct {
			Exercises []struct {
				Exercise string `json:"exercise"`
			} `json:"exercises"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)
		if len(listed.Exercises) == 0 {
			t.Fatal("expected a non-empty exercise catalog")
		}
	})

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/api/detect"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	var sessionID string

	t.Run("StartSession", func(t *testing.T) {
		if err := conn.WriteJSON(detectMessage{Type: "start", Exercise: "glute_bridge"}); err != nil {
			t.Fatalf("write start error = %v", err)
		}

		var resp detectMessage
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read start response error = %v", err)
		}
		if resp.Type != "started" || resp.SessionID == "" {
			t.Fatalf("start response = %+v, want type started with session ID", resp)
		}
		sessionID = resp.SessionID
	})

	t.Run("StreamOneRep", func(t *testing.T) {
		// Lift to full extension, hold, return to rest
		angles := []float64{60, 90, 130, 166, 166, 166, 150, 90, 60}

		atMs := int64(1_000)
		repCompleted := false
		for _, deg := range angles {
			atMs += 500
			if err := conn.WriteJSON(frameMessage(pose.HipAngleFrame(deg), atMs)); err != nil {
				t.Fatalf("write frame error = %v", err)
			}

			var resp detectMessage
			if err := conn.ReadJSON(&resp); err != nil {
				t.Fatalf("read frame response error = %v", err)
			}
			if resp.Type != "result" || resp.Result == nil {
				t.Fatalf("frame response = %+v, want a detection result", resp)
			}
			if resp.Result.RepCompleted {
				repCompleted = true
			}
		}

		if !repCompleted {
			t.Error("expected a completed rep over the bridge trajectory")
		}
	})

	t.Run("StopSession", func(t *testing.T) {
		if err := conn.WriteJSON(detectMessage{Type: "stop", TimestampMs: 10_000}); err != nil {
			t.Fatalf("write stop error = %v", err)
		}

		var resp detectMessage
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read stop response error = %v", err)
		}
		if resp.Type != "summary" || resp.Summary == nil {
			t.Fatalf("stop response = %+v, want a session summary", resp)
		}
		if resp.Summary.Reps != 1 {
			t.Errorf("summary reps = %d, want 1", resp.Summary.Reps)
		}
	})

	t.Run("SessionPersisted", func(t *testing.T) {
		if _, err := s.Sessions().GetByID(sessionID); err != nil {
			t.Fatalf("session should be persisted: %v", err)
		}

		resp, err := client.Get(ts.URL + "/api/sessions/" + sessionID)
		if err != nil {
			t.Fatalf("get session error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var stored struct {
			Exercise string `json:"exercise"`
			Reps     int    `json:"reps"`
		}
		json.NewDecoder(resp.Body).Decode(&stored)
		if stored.Exercise != "glute_bridge" || stored.Reps != 1 {
			t.Errorf("stored session = %+v, want glute_bridge with 1 rep", stored)
		}
	})
}

func TestE2E_CalibrationAffectsDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	ts, _ := newStack(t)
	client := ts.Client()

	// Tighten the wall push target so a shallow press no longer reaches it
	calBody := `{"start_center": 162, "start_min": 150, "start_max": 174, "target": 70, "tolerance": 8, "hold_time_ms": 0}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/exercises/wall_push/thresholds", strings.NewReader(calBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("calibrate error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calibrate status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/api/detect"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(detectMessage{Type: "start", Exercise: "wall_push"}); err != nil {
		t.Fatalf("write start error = %v", err)
	}
	var started detectMessage
	if err := conn.ReadJSON(&started); err != nil {
		t.Fatalf("read start response error = %v", err)
	}
	if started.Type != "started" {
		t.Fatalf("start response = %+v", started)
	}

	// A press that only reaches 90 degrees misses the calibrated 70 target
	angles := []float64{162, 130, 95, 90, 90, 120, 162, 162}
	atMs := int64(1_000)
	for _, deg := range angles {
		atMs += 500
		if err := conn.WriteJSON(frameMessage(pose.ElbowAngleFrame(deg), atMs)); err != nil {
			t.Fatalf("write frame error = %v", err)
		}
		var resp detectMessage
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read frame response error = %v", err)
		}
		if resp.Result != nil && resp.Result.RepCompleted {
			t.Fatal("shallow press should not count against the calibrated target")
		}
	}

	if err := conn.WriteJSON(detectMessage{Type: "stop", TimestampMs: atMs}); err != nil {
		t.Fatalf("write stop error = %v", err)
	}
	var summary detectMessage
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("read stop response error = %v", err)
	}
	if summary.Summary == nil || summary.Summary.Reps != 0 {
		t.Errorf("summary = %+v, want 0 reps", summary.Summary)
	}
}
