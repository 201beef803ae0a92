// Package app wires configuration, logging and the device gateways into one
// explicit context passed to commands. There is no process-wide singleton;
// everything a component needs arrives through here.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eduard0Castro/smart-inspection/internal/config"
	"github.com/Eduard0Castro/smart-inspection/internal/device"
	"github.com/Eduard0Castro/smart-inspection/internal/drone"
	"github.com/Eduard0Castro/smart-inspection/internal/llm"
	"github.com/Eduard0Castro/smart-inspection/internal/logging"
)

// App holds the core components of the application.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Chat   *llm.Client
	LEDs   *device.LEDBank
	Motion *device.PIRMotionDetector
	Flight *drone.Link
	Ranger *drone.MultirangerDeck

	sensors []device.Sensor
}

// NewApp initializes and returns a new App instance.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	bridge := device.NewBridge(cfg.DeviceBridgeURL)
	leds := device.NewLEDBank(bridge)
	motion := device.NewPIRMotionDetector(bridge)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Chat:    llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel),
		LEDs:    leds,
		Motion:  motion,
		Flight:  drone.NewLink(cfg.FlightBridgeURL, cfg.DroneURI, cfg.FlyingHeight),
		Ranger:  drone.NewMultirangerDeck(cfg.FlightBridgeURL),
		sensors: []device.Sensor{leds, motion},
	}, nil
}

// MotionTimeout returns the configured motion read timeout.
func (a *App) MotionTimeout() time.Duration {
	return time.Duration(a.Config.MotionTimeoutSeconds) * time.Second
}

// ConfigureDevices runs the capability setup for every bridge device. A
// device that fails to configure is logged and skipped; its reads will fail
// and be handled at the call sites.
func (a *App) ConfigureDevices(ctx context.Context) {
	for _, s := range a.sensors {
		if err := s.Configure(ctx); err != nil {
			a.Logger.Warn("device configuration failed",
				zap.String("device", s.Name()), zap.Error(err))
		}
	}
}

// Close flushes application resources.
func (a *App) Close() {
	if a.Logger != nil {
		if err := a.Logger.Sync(); err != nil {
			// Syncing a terminal writer fails on some platforms; ignore those.
			if !strings.Contains(err.Error(), "invalid argument") &&
				!strings.Contains(err.Error(), "inappropriate ioctl for device") &&
				!strings.Contains(err.Error(), "bad file descriptor") {
				fmt.Fprintf(os.Stderr, "error syncing logger: %v\n", err)
			}
		}
	}
}
