package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/physioflow/internal/session"
)

// runPipeline is the main coaching loop that processes frames from the
// camera. It manages the state transitions between idle and active modes
// based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. While a session is running, extract body pose from the frame
// 4. Feed the landmark frame to the session controller
// 5. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Pose extraction only pays off while a session is running
			_, _, running := a.controller.Active()
			provider := a.Provider()
			if !activeMode || !running || provider == nil {
				frame.Close()
				continue
			}

			// Step 2: Body pose extraction
			body, err := provider.Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error extracting pose: %v", err)
				continue
			}

			if body == nil {
				continue
			}

			// Step 3: Feed the session controller. The result carries rep
			// counts and coaching feedback; WebSocket clients pick it up
			// from the controller's last result.
			result, err := a.controller.Feed(body, time.Now())
			if err != nil {
				// The session can end between the Active check and the feed
				if !errors.Is(err, session.ErrNoActiveSession) {
					log.Printf("Error processing frame: %v", err)
				}
				continue
			}

			if result.RepCompleted {
				log.Printf("Rep completed: %s (accuracy: %.0f)", result.Exercise, result.Accuracy)
			}
		}
	}
}
