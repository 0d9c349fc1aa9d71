// Package audioframe defines the canonical audio frame exchanged between
// the input adapter, AdaptiveVAD and AudioBuffer.
package audioframe

import "fmt"

// Frame is one slice of interleaved float32 PCM samples in [-1, 1], stamped
// with a monotonic session-relative timestamp in milliseconds.
type Frame struct {
	SampleRate  int
	Channels    int
	Samples     []float32
	TimestampMs uint64
}

// Validate checks the invariants a Frame must hold before it can be
// consumed by VAD or AudioBuffer.
func (f Frame) Validate() error {
	if f.Channels <= 0 {
		return fmt.Errorf("audioframe: channels must be positive, got %d", f.Channels)
	}
	if f.SampleRate < 8000 || f.SampleRate > 48000 {
		return fmt.Errorf("audioframe: sample rate %d out of range [8000,48000]", f.SampleRate)
	}
	if len(f.Samples)%f.Channels != 0 {
		return fmt.Errorf("audioframe: sample count %d not divisible by channel count %d", len(f.Samples), f.Channels)
	}
	return nil
}

// DurationMs returns the playback duration of the frame in milliseconds.
func (f Frame) DurationMs() uint64 {
	if f.Channels == 0 || f.SampleRate == 0 {
		return 0
	}
	frames := len(f.Samples) / f.Channels
	return uint64(frames) * 1000 / uint64(f.SampleRate)
}
