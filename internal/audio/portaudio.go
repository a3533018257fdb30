package audio

import (
	"errors"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudio is a Platform backed by PortAudio blocking input streams
type PortAudio struct{}

// NewPortAudio initializes PortAudio. Close must be called once capture is finished.
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &PortAudio{}, nil
}

// MinBufferSize reports the smallest device buffer, in bytes, that the default
// input device can run at its low-latency setting.
func (p *PortAudio) MinBufferSize(sampleRate int, format Format) (int, error) {
	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return 0, fmt.Errorf("failed to get default input device: %w", err)
	}
	return latencyToBytes(device.DefaultLowInputLatency, sampleRate, format), nil
}

func (p *PortAudio) Open(params OpenParams) (Session, error) {
	if params.Format != PCM16Mono {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, params.Format)
	}

	device, err := findDevice(params.Source.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	buffer := make([]int16, params.FrameLength)
	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  bytesToLatency(params.BufferCapacity, params.SampleRate, params.Format),
		},
		SampleRate:      float64(params.SampleRate),
		FramesPerBuffer: portaudio.FramesPerBufferUnspecified,
	}

	if err := portaudio.IsFormatSupported(streamParams, buffer); err != nil {
		return nil, fmt.Errorf("%w: %d Hz on %s: %v", ErrUnsupportedFormat, params.SampleRate, device.Name, err)
	}

	stream, err := portaudio.OpenStream(streamParams, buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open audio stream: %v", ErrNotReady, err)
	}

	return &portAudioSession{stream: stream, buffer: buffer}, nil
}

// Devices lists the available input devices
func (p *PortAudio) Devices() ([]AudioDevice, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]AudioDevice, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, AudioDevice{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

func findDevice(deviceID string) (*portaudio.DeviceInfo, error) {
	if deviceID == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == deviceID && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", deviceID)
}

type portAudioSession struct {
	stream *portaudio.Stream
	buffer []int16
}

func (s *portAudioSession) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("%w: failed to start audio stream: %v", ErrInvalidState, err)
	}
	return nil
}

func (s *portAudioSession) Read(buf []int16) (int, error) {
	if len(buf) != len(s.buffer) {
		return 0, fmt.Errorf("read of %d samples on a stream opened for %d", len(buf), len(s.buffer))
	}

	if err := s.stream.Read(); err != nil {
		// Overflowed input leaves the buffer partially stale; treat it as a short read.
		if errors.Is(err, portaudio.InputOverflowed) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	return copy(buf, s.buffer), nil
}

func (s *portAudioSession) Stop() error {
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("%w: failed to stop audio stream: %v", ErrInvalidState, err)
	}
	return nil
}

func (s *portAudioSession) Release() error {
	return s.stream.Close()
}

func latencyToBytes(latency time.Duration, sampleRate int, format Format) int {
	return int(latency.Seconds() * float64(sampleRate) * float64(format.BytesPerSample()))
}

func bytesToLatency(capacity, sampleRate int, format Format) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	bytesPerSecond := float64(sampleRate * format.BytesPerSample())
	return time.Duration(float64(capacity) / bytesPerSecond * float64(time.Second))
}
