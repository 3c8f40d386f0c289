// Package app provides the main application logic for the PhysioFlow
// exercise coaching system.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/physioflow/internal/capture"
	"github.com/ayusman/physioflow/internal/exercise"
	"github.com/ayusman/physioflow/internal/pose"
	"github.com/ayusman/physioflow/internal/session"
	"github.com/ayusman/physioflow/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
}

// App orchestrates the camera capture, pose extraction, and exercise
// coaching pipeline.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	provider   pose.Provider
	registry   *exercise.Registry
	controller *session.Controller
	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	registry := exercise.NewRegistry()

	var sessions *store.SessionRepository
	if config.Store != nil {
		sessions = config.Store.Sessions()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		registry:   registry,
		controller: session.NewController(registry, sessions),
		enabled:    false,
		stopCh:     nil,
	}

	// Try MediaPipe first, fall back to the mock provider
	if mp, err := pose.NewMediaPipeProvider(pose.DefaultConfig()); err == nil {
		a.provider = mp
		log.Println("Using MediaPipe pose extraction")
	} else {
		log.Printf("MediaPipe not available (%v), using mock provider", err)
		a.provider = pose.NewMockProvider()
	}

	return a
}

// SetEnabled enables or disables exercise detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether exercise detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetProvider sets the pose provider implementation to use.
func (a *App) SetProvider(p pose.Provider) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.provider = p
}

// LoadCalibrations loads saved per-exercise calibrations from the database
// into the registry. Exercises without a saved calibration keep their
// defaults.
func (a *App) LoadCalibrations() error {
	if a.config.Store == nil {
		return nil
	}

	calibrations, err := a.config.Store.Calibrations().List()
	if err != nil {
		return err
	}

	loaded := 0
	for _, cal := range calibrations {
		if err := a.registry.SetThresholds(cal.Exercise, cal.Thresholds); err != nil {
			log.Printf("Failed to apply calibration for %s: %v", cal.Exercise, err)
			continue
		}
		loaded++
	}

	log.Printf("Loaded %d calibrations from database", loaded)
	return nil
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Coaching pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// End any session still running so its summary is persisted
	if _, _, running := a.controller.Active(); running {
		if _, err := a.controller.Stop(time.Now()); err != nil {
			log.Printf("Error stopping active session: %v", err)
		}
	}

	// Discard live detectors
	a.registry.Close()

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the pose provider if set
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			log.Printf("Error closing pose provider: %v", err)
		}
	}

	log.Println("Coaching pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Registry returns the exercise registry.
func (a *App) Registry() *exercise.Registry {
	return a.registry
}

// Controller returns the session controller.
func (a *App) Controller() *session.Controller {
	return a.controller
}

// Provider returns the pose provider.
func (a *App) Provider() pose.Provider {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.provider
}
