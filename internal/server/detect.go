package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/pose"
	"github.com/ayusman/physioflow/internal/session"
)

// DetectHandler runs detection sessions over a WebSocket for clients that
// capture their own video and run pose estimation on-device. The client
// starts a session, streams landmark frames, and receives per-frame
// telemetry; stopping returns the session summary. A session left running
// when the connection drops is stopped on the way out.
type DetectHandler struct {
	controller *session.Controller
}

// NewDetectHandler creates a new DetectHandler over the controller.
func NewDetectHandler(c *session.Controller) *DetectHandler {
	return &DetectHandler{controller: c}
}

type detectRequest struct {
	Type        string        `json:"type"`
	Exercise    string        `json:"exercise,omitempty"`
	TimestampMs int64         `json:"timestamp_ms,omitempty"`
	Score       float64       `json:"score,omitempty"`
	Points      []detectPoint `json:"points,omitempty"`
}

type detectPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

func (r detectRequest) toFrame() *pose.Frame {
	f := &pose.Frame{
		TimestampMs: r.TimestampMs,
		Score:       r.Score,
	}
	for i := 0; i < pose.NumLandmarks && i < len(r.Points); i++ {
		f.Points[i] = pose.Landmark{
			X:          r.Points[i].X,
			Y:          r.Points[i].Y,
			Z:          r.Points[i].Z,
			Visibility: r.Points[i].Visibility,
		}
	}
	return f
}

func (r detectRequest) at() time.Time {
	if r.TimestampMs > 0 {
		return time.UnixMilli(r.TimestampMs)
	}
	return time.Now()
}

type detectResponse struct {
	Type      string                  `json:"type"`
	SessionID string                  `json:"session_id,omitempty"`
	Result    *engine.DetectionResult `json:"result,omitempty"`
	Summary   *session.Summary        `json:"summary,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// ServeHTTP handles WebSocket upgrade requests and runs the session
// message loop.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	var ownedSession string
	defer func() {
		// Clean up a session this connection started but never stopped
		if ownedSession == "" {
			return
		}
		if _, id, running := h.controller.Active(); running && id == ownedSession {
			if _, err := h.controller.Stop(time.Now()); err != nil {
				log.Printf("Failed to stop orphaned session %s: %v", ownedSession, err)
			}
		}
	}()

	for {
		var req detectRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Type {
		case "start":
			id, err := h.controller.Start(engine.Exercise(req.Exercise), req.at())
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			ownedSession = id
			h.write(conn, detectResponse{Type: "started", SessionID: id})

		case "frame":
			result, err := h.controller.Feed(req.toFrame(), req.at())
			if err != nil {
				h.writeError(conn, err)
				continue
			}
			h.write(conn, detectResponse{Type: "result", SessionID: ownedSession, Result: &result})

		case "stop":
			summary, err := h.controller.Stop(req.at())
			if err != nil && !errors.Is(err, session.ErrNoActiveSession) && summary == nil {
				h.writeError(conn, err)
				continue
			}
			if summary == nil {
				h.writeError(conn, session.ErrNoActiveSession)
				continue
			}
			ownedSession = ""
			h.write(conn, detectResponse{Type: "summary", SessionID: summary.ID, Summary: summary})

		default:
			h.writeError(conn, errors.New("unknown message type"))
		}
	}
}

func (h *DetectHandler) write(conn *websocket.Conn, resp detectResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}

func (h *DetectHandler) writeError(conn *websocket.Conn, err error) {
	h.write(conn, detectResponse{Type: "error", Error: err.Error()})
}
