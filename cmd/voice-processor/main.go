package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petems/voice-processor/internal/app"
	"github.com/petems/voice-processor/internal/audio"
	"github.com/petems/voice-processor/internal/capture"
	"github.com/petems/voice-processor/internal/config"
	"github.com/petems/voice-processor/internal/dispatch"
	"github.com/petems/voice-processor/internal/logging"
	"github.com/petems/voice-processor/internal/permissions"
	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

var (
	frameLength int
	sampleRate  int
	deviceID    string
	duration    time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "voice-processor",
	Short:         "Capture microphone audio in fixed-size PCM frames",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the microphone and report frame levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecord(cmd)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio input devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDevices()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize the config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.Path())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current effective config to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println(config.Path())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("voice-processor %s (%s)\n", Version, Commit)
	},
}

func init() {
	recordCmd.Flags().IntVar(&frameLength, "frame-length", 0, "samples per frame (default from config)")
	recordCmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "sample rate in Hz (default from config)")
	recordCmd.Flags().StringVar(&deviceID, "device", "", "input device name (default from config)")
	recordCmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long; 0 records until interrupted")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(devicesCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRecord(cmd *cobra.Command) error {
	// Load config from XDG/Library/AppData, then .env and environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("frame-length") {
		cfg.Audio.FrameLength = frameLength
	}
	if cmd.Flags().Changed("sample-rate") {
		cfg.Audio.SampleRate = sampleRate
	}
	if cmd.Flags().Changed("device") {
		cfg.Audio.DeviceID = deviceID
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	platform, err := audio.NewPortAudio()
	if err != nil {
		return err
	}
	defer platform.Close()

	// All listener callbacks run here, in post order
	delivery := dispatch.NewLoop(log)
	defer delivery.Close()

	priority := capture.PriorityNormal
	if cfg.Audio.RealtimePriority {
		priority = capture.PriorityAudio
	}

	engine, err := capture.New(capture.Options{
		Platform:   platform,
		Delivery:   delivery,
		Logger:     log,
		Source:     audio.Source{DeviceID: cfg.Audio.DeviceID},
		Permission: permissions.MicrophoneGranted,
		Priority:   priority,
		Config: capture.Config{
			FrameLength: cfg.Audio.FrameLength,
			SampleRate:  cfg.Audio.SampleRate,
		},
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	application := app.New(app.Config{
		Engine:        engine,
		Delivery:      delivery,
		Logger:        log,
		StatusUpdater: &consoleStatus{},
	})

	// Setup shutdown signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", Version).Msg("voice-processor starting...")

	summary, err := application.Record(ctx, duration)
	if err != nil {
		return err
	}

	fmt.Printf("%d frames, %d errors, peak volume %.0f%%, %s\n",
		summary.Frames, len(summary.Errors), summary.PeakVolume, summary.Elapsed.Round(time.Millisecond))
	if len(summary.Errors) > 0 {
		return summary.Errors[0]
	}
	return nil
}

func listDevices() error {
	platform, err := audio.NewPortAudio()
	if err != nil {
		return err
	}
	defer platform.Close()

	devices, err := platform.Devices()
	if err != nil {
		return err
	}

	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, d.Name)
	}
	return nil
}

// consoleStatus prints state changes with a status indicator
type consoleStatus struct{}

func (consoleStatus) SetIdle()      { fmt.Fprintln(os.Stderr, "🎤 🟢 idle") }
func (consoleStatus) SetRecording() { fmt.Fprintln(os.Stderr, "🎤 🔴 recording") }

func (consoleStatus) SetError(err error) {
	fmt.Fprintf(os.Stderr, "🎤 ⚪️ error: %v\n", err)
}
