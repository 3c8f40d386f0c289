package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/physioflow/internal/engine"
	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/pose"
	"github.com/ayusman/physioflow/internal/store"
)

var (
	// ErrSessionActive is returned when starting a session while another
	// one is running.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoActiveSession is returned by operations that need a running
	// session.
	ErrNoActiveSession = errors.New("no active session")
)

// Controller runs one exercise session at a time. It owns the detector
// registry, feeds it frames while a session is active, and writes a summary
// to the store when the session ends.
type Controller struct {
	registry *exercise.Registry
	sessions *store.SessionRepository

	mu         sync.Mutex
	active     bool
	id         string
	exercise   engine.Exercise
	detector   engine.Detector
	startedAt  time.Time
	lastResult engine.DetectionResult
}

// NewController creates a controller over the given registry. The session
// repository may be nil, in which case summaries are not persisted.
func NewController(registry *exercise.Registry, sessions *store.SessionRepository) *Controller {
	return &Controller{
		registry: registry,
		sessions: sessions,
	}
}

// Start begins a session for the exercise and returns its ID. The
// exercise's detector is reset so counts start from zero.
func (c *Controller) Start(ex engine.Exercise, at time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return "", ErrSessionActive
	}

	detector, err := c.registry.Get(ex)
	if err != nil {
		return "", err
	}
	detector.Reset()

	c.active = true
	c.id = uuid.NewString()
	c.exercise = ex
	c.detector = detector
	c.startedAt = at
	c.lastResult = engine.DetectionResult{}

	log.Printf("Session %s started: %s", c.id, ex)
	return c.id, nil
}

// Feed runs one frame through the active session's detector.
func (c *Controller) Feed(f *pose.Frame, at time.Time) (engine.DetectionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return engine.DetectionResult{}, ErrNoActiveSession
	}

	result := c.detector.ProcessFrame(f, at)
	c.lastResult = result
	return result, nil
}

// Stop ends the active session and returns its summary, persisting it when
// a session repository is configured.
func (c *Controller) Stop(at time.Time) (*Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return nil, ErrNoActiveSession
	}

	summary := c.summarize(at)
	c.active = false
	c.detector = nil

	if c.sessions != nil {
		if err := c.sessions.Create(&store.Session{
			ID:             summary.ID,
			Exercise:       summary.Exercise,
			StartedAt:      summary.StartedAt,
			EndedAt:        summary.EndedAt,
			Reps:           summary.Reps,
			CompletedHolds: summary.CompletedHolds,
			BrokenAttempts: summary.BrokenAttempts,
			LongestHold:    summary.LongestHold,
			MeanAccuracy:   summary.MeanAccuracy,
			AccuracyStdDev: summary.AccuracyStdDev,
			RepAccuracies:  summary.RepAccuracies,
		}); err != nil {
			log.Printf("Failed to persist session %s: %v", summary.ID, err)
			return summary, err
		}
	}

	log.Printf("Session %s ended: %s, %d reps", summary.ID, summary.Exercise, summary.Reps)
	return summary, nil
}

// Active reports the running session, if any.
func (c *Controller) Active() (ex engine.Exercise, id string, running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exercise, c.id, c.active
}

// LastResult returns the telemetry of the most recently processed frame of
// the active session.
func (c *Controller) LastResult() engine.DetectionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// summarize must be called with the lock held while the session is active.
func (c *Controller) summarize(at time.Time) *Summary {
	s := &Summary{
		ID:        c.id,
		Exercise:  c.exercise,
		StartedAt: c.startedAt,
		EndedAt:   at,
	}

	switch d := c.detector.(type) {
	case *engine.RepDetector:
		s.Reps = d.RepCount()
		s.RepAccuracies = d.Accuracies()
	case *exercise.MarchDetector:
		s.Reps = d.RepCount()
		s.RepAccuracies = d.Accuracies()
	case *engine.HoldDetector:
		stats := d.Stats()
		s.CompletedHolds = stats.Completed
		s.BrokenAttempts = stats.BrokenAttempts
		s.LongestHold = stats.Longest
	}

	s.MeanAccuracy, s.AccuracyStdDev = accuracyStats(s.RepAccuracies)
	return s
}
