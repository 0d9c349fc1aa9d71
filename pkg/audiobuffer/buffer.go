// Package audiobuffer implements the double-buffered audio accumulator
// described in spec §4.1: frames accumulate in `current` between VAD
// boundaries, `next` absorbs frames arriving during a synchronous ASR
// call, and duration is measured by frame timestamp arithmetic rather than
// sample count so jitter or resampling never skews endpointing.
package audiobuffer

import (
	"sync"

	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// Buffer is the orchestrator's exclusive audio accumulator. It is not safe
// to share across orchestrator instances, only across the goroutines of a
// single session (input adapter vs. boundary handler).
type Buffer struct {
	mu sync.RWMutex

	current []audioframe.Frame
	next    []audioframe.Frame

	firstTs *uint64

	maxBufferDurationMs  uint64
	minSegmentDurationMs uint64
}

// New creates a Buffer with the spec's defaults (5000ms max, 200ms min).
func New() *Buffer {
	return WithConfig(5000, 200)
}

// WithConfig creates a Buffer with explicit overflow/eligibility thresholds.
func WithConfig(maxBufferDurationMs, minSegmentDurationMs uint64) *Buffer {
	return &Buffer{
		maxBufferDurationMs:  maxBufferDurationMs,
		minSegmentDurationMs: minSegmentDurationMs,
	}
}

// Push appends frame to current. It records first_ts if unset and returns
// BufferOverflow when the new frame would push current's duration past
// max_buffer_duration_ms. Per §4.1, the caller MUST treat overflow as a
// forced boundary (take current, then continue).
func (b *Buffer) Push(frame audioframe.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.firstTs == nil {
		ts := frame.TimestampMs
		b.firstTs = &ts
	} else if frame.TimestampMs > *b.firstTs {
		duration := frame.TimestampMs - *b.firstTs
		if duration > b.maxBufferDurationMs {
			return engine.NewBufferOverflow(
				"duration exceeds max_buffer_duration_ms")
		}
	}

	b.current = append(b.current, frame)
	return nil
}

// TakeCurrent removes and returns all frames in current, resetting
// first_ts. Exactly-once ownership transfer per utterance.
func (b *Buffer) TakeCurrent() []audioframe.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	frames := b.current
	b.current = nil
	b.firstTs = nil
	return frames
}

// Peek returns a copy of current's frames without removing them, for
// callers (streaming-partial ASR) that need to inspect the in-progress
// buffer without disturbing boundary accumulation.
func (b *Buffer) Peek() []audioframe.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()

	frames := make([]audioframe.Frame, len(b.current))
	copy(frames, b.current)
	return frames
}

// Swap exchanges current and next, resetting first_ts. Used so the
// orchestrator can absorb frames arriving during a synchronous ASR call
// without blocking input ingestion.
func (b *Buffer) Swap() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current, b.next = b.next, b.current
	b.firstTs = nil
}

// CheckMinDuration reports whether current's duration satisfies the
// min_segment_duration_ms eligibility rule. A boundary on an ineligible
// buffer must be suppressed by the caller.
func (b *Buffer) CheckMinDuration() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.durationLocked() >= b.minSegmentDurationMs
}

// DurationMs returns current's duration in milliseconds.
func (b *Buffer) DurationMs() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.durationLocked()
}

func (b *Buffer) durationLocked() uint64 {
	if len(b.current) == 0 || b.firstTs == nil {
		return 0
	}
	last := b.current[len(b.current)-1].TimestampMs
	if last < *b.firstTs {
		return 0
	}
	return last - *b.firstTs
}

// FrameCount returns the number of frames currently buffered.
func (b *Buffer) FrameCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.current)
}

// IsEmpty reports whether current holds no frames.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.current) == 0
}

// Clear discards current's contents and resets first_ts.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
	b.firstTs = nil
}

// MergeFrames concatenates the interleaved samples of a frame sequence into
// a single sample slice, for callers that want raw PCM rather than a frame
// list (e.g. an ASR client building one audio blob).
func MergeFrames(frames []audioframe.Frame) []float32 {
	if len(frames) == 0 {
		return nil
	}
	total := 0
	for _, f := range frames {
		total += len(f.Samples)
	}
	merged := make([]float32, 0, total)
	for _, f := range frames {
		merged = append(merged, f.Samples...)
	}
	return merged
}
