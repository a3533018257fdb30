package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvFrameLength = "VOICEPROC_FRAME_LENGTH"
	EnvSampleRate  = "VOICEPROC_SAMPLE_RATE"
	EnvDevice      = "VOICEPROC_DEVICE"
	EnvLogLevel    = "VOICEPROC_LOG_LEVEL"
)

type Config struct {
	Audio    AudioConfig `json:"audio"`
	LogLevel string      `json:"log_level"` // "debug", "info", "warn", "error"
}

type AudioConfig struct {
	DeviceID    string `json:"device_id"`
	FrameLength int    `json:"frame_length"` // samples per frame
	SampleRate  int    `json:"sample_rate"`  // Hz
	// RealtimePriority raises the capture thread's scheduling priority when permitted
	RealtimePriority bool `json:"realtime_priority"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			DeviceID:         "",
			FrameLength:      512,
			SampleRate:       16000,
			RealtimePriority: true,
		},
		LogLevel: "info",
	}
}

// Load reads the config from disk or returns defaults, then applies
// overrides from a .env file in the working directory and the environment
func Load() (*Config, error) {
	return LoadFile(configPath())
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// A missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the capture engine cannot start with
func (c *Config) Validate() error {
	if c.Audio.FrameLength <= 0 {
		return fmt.Errorf("frame_length must be positive, got %d", c.Audio.FrameLength)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	return c.SaveFile(configPath())
}

// SaveFile is Save with an explicit path
func (c *Config) SaveFile(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvFrameLength); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvFrameLength, v, err)
		}
		c.Audio.FrameLength = n
	}
	if v, ok := os.LookupEnv(EnvSampleRate); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSampleRate, v, err)
		}
		c.Audio.SampleRate = n
	}
	if v, ok := os.LookupEnv(EnvDevice); ok {
		c.Audio.DeviceID = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

// Path returns the platform-specific config file path
func Path() string {
	return configPath()
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "voice-processor", "config.json")
}
