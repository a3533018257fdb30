package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Audio.FrameLength != 512 || cfg.Audio.SampleRate != 16000 {
		t.Errorf("unexpected defaults %+v", cfg.Audio)
	}
	if !cfg.Audio.RealtimePriority {
		t.Error("expected realtime priority by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info log level, got %s", cfg.LogLevel)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Audio.DeviceID = "USB Microphone"
	cfg.Audio.SampleRate = 44100
	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Audio.DeviceID != "USB Microphone" || loaded.Audio.SampleRate != 44100 {
		t.Errorf("unexpected loaded config %+v", loaded.Audio)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvFrameLength, "1024")
	t.Setenv(EnvSampleRate, "8000")
	t.Setenv(EnvDevice, "Built-in")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Audio.FrameLength != 1024 || cfg.Audio.SampleRate != 8000 {
		t.Errorf("env overrides not applied: %+v", cfg.Audio)
	}
	if cfg.Audio.DeviceID != "Built-in" || cfg.LogLevel != "debug" {
		t.Errorf("env overrides not applied: device=%q level=%q", cfg.Audio.DeviceID, cfg.LogLevel)
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte(EnvSampleRate+"=22050\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	// godotenv.Load sets variables directly; make sure they are cleaned up.
	t.Setenv(EnvSampleRate, "")
	os.Unsetenv(EnvSampleRate)

	cfg, err := LoadFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("expected sample rate from .env, got %d", cfg.Audio.SampleRate)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric frame length", key: EnvFrameLength, value: "many"},
		{name: "zero sample rate", key: EnvSampleRate, value: "0"},
		{name: "negative frame length", key: EnvFrameLength, value: "-512"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestMalformedFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
