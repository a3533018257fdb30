// Package meter turns PCM frames into a smoothed volume reading
package meter

import "math"

const (
	// MaxVolume is the reading for a full-scale signal
	MaxVolume = 100.0
	// DBFSOffset maps -60 dBFS and below to silence
	DBFSOffset = 60.0
	// SmoothingWindow is the number of frames averaged per reading
	SmoothingWindow = 5
)

// Level returns the RMS level of frame in dBFS. Silence and empty frames
// return -Inf.
func Level(frame []int16) float64 {
	if len(frame) == 0 {
		return math.Inf(-1)
	}

	var sum float64
	for _, s := range frame {
		v := float64(s) / 32768.0
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(frame)))
	return 20 * math.Log10(rms)
}

// Meter keeps a moving average of recent frame levels. It is not safe for
// concurrent use; feed it from a single frame listener.
type Meter struct {
	window []float64
	next   int
	filled bool
}

func New() *Meter {
	return &Meter{window: make([]float64, SmoothingWindow)}
}

// Add records frame and returns the smoothed volume in [0, MaxVolume]
func (m *Meter) Add(frame []int16) float64 {
	m.window[m.next] = volume(Level(frame))
	m.next = (m.next + 1) % len(m.window)
	if m.next == 0 {
		m.filled = true
	}
	return m.Volume()
}

// Volume returns the current smoothed volume
func (m *Meter) Volume() float64 {
	n := m.next
	if m.filled {
		n = len(m.window)
	}
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range m.window[:n] {
		sum += v
	}
	return sum / float64(n)
}

func volume(dbfs float64) float64 {
	adjusted := math.Max(0, dbfs+DBFSOffset) / DBFSOffset
	return math.Min(1, adjusted) * MaxVolume
}
