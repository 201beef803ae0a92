package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultLLMBaseURL = "http://localhost:11434/v1"
	DefaultLLMModel   = "llama3.2:3b"
	DefaultFlightURL  = "http://localhost:8000"
	DefaultDeviceURL  = "http://localhost:8001"
	DefaultDroneURI   = "radio://0/80/2M/E7E7E7E7E7"
	DefaultFlyHeight  = 0.5
	DefaultMotionWait = 5
	DefaultDataDir    = "data"
	DefaultLogLevel   = "info"
	DefaultLogMaxSize = 10 // MB
	DefaultLogBackups = 3
	DefaultLogMaxAge  = 14 // days
)

// Config holds the application configuration.
type Config struct {
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	FlightBridgeURL string
	DroneURI        string
	FlyingHeight    float64

	DeviceBridgeURL      string
	MotionTimeoutSeconds int

	DataDir string

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	ConfigPath string
}

type fileConfig struct {
	LLM struct {
		BaseURL string `toml:"base_url"`
		APIKey  string `toml:"api_key"`
		Model   string `toml:"model"`
	} `toml:"llm"`
	Drone struct {
		BridgeURL    string  `toml:"bridge_url"`
		URI          string  `toml:"uri"`
		FlyingHeight float64 `toml:"flying_height"`
	} `toml:"drone"`
	Devices struct {
		BridgeURL            string `toml:"bridge_url"`
		MotionTimeoutSeconds int    `toml:"motion_timeout_seconds"`
	} `toml:"devices"`
	Data struct {
		Dir string `toml:"dir"`
	} `toml:"data"`
	Logging struct {
		Level      string `toml:"level"`
		File       string `toml:"file"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups"`
		MaxAgeDays int    `toml:"max_age_days"`
	} `toml:"logging"`
}

// LoadConfig loads configuration from file, environment variables, and defaults.
// Precedence: defaults < config file < environment.
func LoadConfig(configPath string) (*Config, error) {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		LLMBaseURL:           DefaultLLMBaseURL,
		LLMModel:             DefaultLLMModel,
		FlightBridgeURL:      DefaultFlightURL,
		DroneURI:             DefaultDroneURI,
		FlyingHeight:         DefaultFlyHeight,
		DeviceBridgeURL:      DefaultDeviceURL,
		MotionTimeoutSeconds: DefaultMotionWait,
		DataDir:              DefaultDataDir,
		LogLevel:             DefaultLogLevel,
		LogMaxSizeMB:         DefaultLogMaxSize,
		LogMaxBackups:        DefaultLogBackups,
		LogMaxAgeDays:        DefaultLogMaxAge,
		ConfigPath:           configPath,
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			var parsed fileConfig
			if err := toml.Unmarshal(data, &parsed); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
			applyFileConfig(cfg, &parsed)
		}
	}

	applyEnvOverrides(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, parsed *fileConfig) {
	if parsed.LLM.BaseURL != "" {
		cfg.LLMBaseURL = parsed.LLM.BaseURL
	}
	if parsed.LLM.APIKey != "" {
		cfg.LLMAPIKey = parsed.LLM.APIKey
	}
	if parsed.LLM.Model != "" {
		cfg.LLMModel = parsed.LLM.Model
	}
	if parsed.Drone.BridgeURL != "" {
		cfg.FlightBridgeURL = parsed.Drone.BridgeURL
	}
	if parsed.Drone.URI != "" {
		cfg.DroneURI = parsed.Drone.URI
	}
	if parsed.Drone.FlyingHeight > 0 {
		cfg.FlyingHeight = parsed.Drone.FlyingHeight
	}
	if parsed.Devices.BridgeURL != "" {
		cfg.DeviceBridgeURL = parsed.Devices.BridgeURL
	}
	if parsed.Devices.MotionTimeoutSeconds > 0 {
		cfg.MotionTimeoutSeconds = parsed.Devices.MotionTimeoutSeconds
	}
	if parsed.Data.Dir != "" {
		cfg.DataDir = parsed.Data.Dir
	}
	if parsed.Logging.Level != "" {
		cfg.LogLevel = parsed.Logging.Level
	}
	if parsed.Logging.File != "" {
		cfg.LogFile = parsed.Logging.File
	}
	if parsed.Logging.MaxSizeMB > 0 {
		cfg.LogMaxSizeMB = parsed.Logging.MaxSizeMB
	}
	if parsed.Logging.MaxBackups > 0 {
		cfg.LogMaxBackups = parsed.Logging.MaxBackups
	}
	if parsed.Logging.MaxAgeDays > 0 {
		cfg.LogMaxAgeDays = parsed.Logging.MaxAgeDays
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SMARTINSPECT_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("SMARTINSPECT_LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("SMARTINSPECT_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("SMARTINSPECT_FLIGHT_URL"); v != "" {
		cfg.FlightBridgeURL = v
	}
	// Same override knob the Crazyflie tooling uses for the radio address.
	if v := os.Getenv("CFLIB_URI"); v != "" {
		cfg.DroneURI = v
	}
	if v := os.Getenv("SMARTINSPECT_DEVICE_URL"); v != "" {
		cfg.DeviceBridgeURL = v
	}
	if v := os.Getenv("SMARTINSPECT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SMARTINSPECT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SMARTINSPECT_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("SMARTINSPECT_MOTION_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.MotionTimeoutSeconds = secs
		}
	}
}

// InspectionCSVPath returns the path of the per-run inspection log file.
func (c *Config) InspectionCSVPath() string {
	return filepath.Join(c.DataDir, "inspection_data.csv")
}

// DatasetCSVPath returns the path of the cumulative dataset file.
func (c *Config) DatasetCSVPath() string {
	return filepath.Join(c.DataDir, "dataset", "multiranger_data.csv")
}
