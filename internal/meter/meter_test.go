package meter

import (
	"math"
	"testing"
)

func constantFrame(v int16, n int) []int16 {
	frame := make([]int16, n)
	for i := range frame {
		frame[i] = v
	}
	return frame
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		frame    []int16
		expected float64
	}{
		{name: "full scale", frame: constantFrame(-32768, 16), expected: 0},
		{name: "half scale", frame: constantFrame(16384, 16), expected: 20 * math.Log10(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Level(tt.frame)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %f dBFS, got %f", tt.expected, got)
			}
		})
	}

	if !math.IsInf(Level(constantFrame(0, 16)), -1) {
		t.Error("expected silence to be -Inf dBFS")
	}
	if !math.IsInf(Level(nil), -1) {
		t.Error("expected empty frame to be -Inf dBFS")
	}
}

func TestMeterSmoothing(t *testing.T) {
	m := New()
	if m.Volume() != 0 {
		t.Fatalf("expected empty meter to read 0, got %f", m.Volume())
	}

	loud := constantFrame(-32768, 32)
	quiet := constantFrame(0, 32)

	if got := m.Add(loud); got != MaxVolume {
		t.Fatalf("expected %f after one loud frame, got %f", MaxVolume, got)
	}
	if got := m.Add(quiet); got != MaxVolume/2 {
		t.Fatalf("expected %f after loud+quiet, got %f", MaxVolume/2, got)
	}

	// Enough quiet frames push the loud one out of the window
	for i := 0; i < SmoothingWindow; i++ {
		m.Add(quiet)
	}
	if m.Volume() != 0 {
		t.Fatalf("expected 0 once the window is all silence, got %f", m.Volume())
	}
}
