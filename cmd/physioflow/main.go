package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"

	"github.com/ayusman/physioflow/internal/app"
	"github.com/ayusman/physioflow/internal/server"
	"github.com/ayusman/physioflow/internal/store"
	"github.com/ayusman/physioflow/internal/tray"
)

// config is populated from the environment.
type config struct {
	Addr            string  `env:"PHYSIOFLOW_ADDR, default=:8080"`
	DBPath          string  `env:"PHYSIOFLOW_DB_PATH"`
	WebDir          string  `env:"PHYSIOFLOW_WEB_DIR"`
	CameraID        int     `env:"PHYSIOFLOW_CAMERA_ID, default=0"`
	MotionThreshold float64 `env:"PHYSIOFLOW_MOTION_THRESHOLD, default=1.0"`
	Headless        bool    `env:"PHYSIOFLOW_HEADLESS"`
}

func main() {
	fmt.Println("PhysioFlow - Exercise Motion Coach")

	var cfg config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dbDir := filepath.Join(homeDir, ".physioflow")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "physioflow.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:        st,
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThreshold,
	})

	if err := a.LoadCalibrations(); err != nil {
		log.Printf("Failed to load calibrations: %v", err)
	}

	if err := a.Start(); err != nil {
		log.Printf("Failed to start coaching pipeline: %v", err)
	}
	a.SetEnabled(true)

	// Find web directory
	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Camera:     a.Camera(),
		Registry:   a.Registry(),
		Controller: a.Controller(),
	})

	if cfg.Headless {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	t.OnSettings(func() {
		log.Printf("Dashboard available at http://localhost%s", cfg.Addr)
	})
	t.OnQuit(func() {
		a.Stop()
	})

	// Blocks until quit is selected from the menu
	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.physioflow/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".physioflow", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
