package audio

import (
	"testing"
	"time"
)

func TestLatencyToBytes(t *testing.T) {
	got := latencyToBytes(20*time.Millisecond, 16000, PCM16Mono)
	if got != 640 {
		t.Fatalf("expected 640 bytes, got %d", got)
	}
}

func TestBytesToLatencyRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		capacity   int
		sampleRate int
		expected   time.Duration
	}{
		{name: "half second at 16kHz", capacity: 16000, sampleRate: 16000, expected: 500 * time.Millisecond},
		{name: "half second at 8kHz", capacity: 8000, sampleRate: 8000, expected: 500 * time.Millisecond},
		{name: "zero rate", capacity: 8000, sampleRate: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bytesToLatency(tt.capacity, tt.sampleRate, PCM16Mono)
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	if PCM16Mono.String() != "pcm16-mono" {
		t.Errorf("unexpected format name %q", PCM16Mono.String())
	}
	if PCM16Mono.BytesPerSample() != 2 {
		t.Errorf("expected 2 bytes per sample, got %d", PCM16Mono.BytesPerSample())
	}
}
