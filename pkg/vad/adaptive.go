// Package vad implements the adaptive voice-activity detector of spec §4.2:
// per-frame speech probability from a pluggable black-box prober, a
// silence-run state machine, and a two-term (base+delta) adaptive
// threshold.
package vad

import (
	"math"
	"sync"

	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

const speechRateHistoryCapacity = 20

// SpeechProber computes the black-box speech probability for one 16kHz,
// 512-sample frame. A local Silero/ONNX session (pkg/vad/sileromodel)
// implements it; RMSProber is the no-dependency default.
type SpeechProber interface {
	Probability(samples []float32) (float64, error)
}

type runState int

const (
	stateIdle runState = iota
	stateInSpeech
	stateInSilence
)

// AdaptiveState is the per-engine, single-logical-speaker control state of
// spec §3.
type AdaptiveState struct {
	mu sync.RWMutex

	speechRateHistory []float64
	baseThresholdMs   int64
	deltaMs           int64
	sampleCount       uint64

	cfg engine.VADConfig
}

func newAdaptiveState(cfg engine.VADConfig) *AdaptiveState {
	return &AdaptiveState{
		baseThresholdMs: (cfg.BaseMinMs + cfg.BaseMaxMs) / 2,
		cfg:             cfg,
	}
}

// EffectiveThreshold returns clamp(base+delta, final_min, final_max).
func (s *AdaptiveState) EffectiveThreshold() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clampI64(s.baseThresholdMs+s.deltaMs, s.cfg.FinalMinMs, s.cfg.FinalMaxMs)
}

// Base and Delta expose the current control terms (read-only, for tests
// and diagnostics).
func (s *AdaptiveState) Base() int64  { s.mu.RLock(); defer s.mu.RUnlock(); return s.baseThresholdMs }
func (s *AdaptiveState) Delta() int64 { s.mu.RLock(); defer s.mu.RUnlock(); return s.deltaMs }

func clampI64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Detector is the default AdaptiveVAD implementation: a silence-run state
// machine driven by a SpeechProber, with two-term adaptive threshold
// control.
type Detector struct {
	mu sync.Mutex

	prober SpeechProber
	cfg    engine.VADConfig
	state  *AdaptiveState

	run             runState
	silenceRunMs    int64
	utteranceDurMs  int64
}

// New builds a Detector from config and a speech prober.
func New(cfg engine.VADConfig, prober SpeechProber) *Detector {
	return &Detector{
		prober: prober,
		cfg:    cfg,
		state:  newAdaptiveState(cfg),
		run:    stateIdle,
	}
}

// State exposes the underlying AdaptiveState (for tests/telemetry).
func (d *Detector) State() *AdaptiveState { return d.state }

func (d *Detector) frameDurationMs() int64 {
	return int64(d.cfg.FrameSize) * 1000 / int64(d.cfg.SampleRate)
}

// Detect implements spec §4.2's per-frame algorithm. It is stateful and
// must be called in frame order.
func (d *Detector) Detect(frame audioframe.Frame) (engine.DetectionOutcome, error) {
	if frame.SampleRate != d.cfg.SampleRate || len(frame.Samples) != d.cfg.FrameSize {
		return engine.DetectionOutcome{}, engine.NewInvalidFrame(
			"adaptive vad requires 16kHz/512-sample frames")
	}

	p, err := d.prober.Probability(frame.Samples)
	if err != nil {
		return engine.DetectionOutcome{}, engine.NewDecodeFailure(err.Error())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	frameDur := d.frameDurationMs()
	speaking := p >= d.cfg.SilenceThreshold

	outcome := engine.DetectionOutcome{Confidence: p, Frame: frame}

	switch d.run {
	case stateIdle:
		if speaking {
			d.run = stateInSpeech
			d.silenceRunMs = 0
			d.utteranceDurMs = frameDur
		}
	case stateInSpeech:
		d.utteranceDurMs += frameDur
		if !speaking {
			d.run = stateInSilence
			d.silenceRunMs = frameDur
		}
	case stateInSilence:
		d.utteranceDurMs += frameDur
		if speaking {
			d.run = stateInSpeech
			d.silenceRunMs = 0
		} else {
			d.silenceRunMs += frameDur

			effective := d.effectiveThresholdLocked()
			if d.silenceRunMs >= effective && d.utteranceDurMs >= d.cfg.MinUtteranceMs {
				outcome.IsBoundary = true
				outcome.BoundaryType = engine.BoundaryNaturalPause
				d.run = stateIdle
				d.silenceRunMs = 0
				d.utteranceDurMs = 0
			}
		}
	}

	return outcome, nil
}

func (d *Detector) effectiveThresholdLocked() int64 {
	return d.state.EffectiveThreshold()
}

// Reset zeros all runtime state, preserving config.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.run = stateIdle
	d.silenceRunMs = 0
	d.utteranceDurMs = 0
}

// UpdateSpeechRate implements spec §4.2's base-threshold control loop.
func (d *Detector) UpdateSpeechRate(text string, audioDurationMs uint64) {
	if audioDurationMs == 0 {
		return
	}
	rateCps := float64(len([]rune(text))) / (float64(audioDurationMs) / 1000.0)

	s := d.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.speechRateHistory = append(s.speechRateHistory, rateCps)
	if len(s.speechRateHistory) > speechRateHistoryCapacity {
		s.speechRateHistory = s.speechRateHistory[len(s.speechRateHistory)-speechRateHistoryCapacity:]
	}
	s.sampleCount++

	avg := weightedAverage(s.speechRateHistory)
	sig := 1.0 / (1.0 + math.Exp(-(avg-6)/2))
	multiplier := 0.6 + 0.8*sig

	center := float64(s.cfg.BaseMinMs+s.cfg.BaseMaxMs) / 2.0
	target := center * multiplier

	newBase := float64(s.baseThresholdMs) + s.cfg.AdaptiveRate*(target-float64(s.baseThresholdMs))
	s.baseThresholdMs = int64(clampF64(newBase, float64(s.cfg.BaseMinMs), float64(s.cfg.BaseMaxMs)))
}

// weightedAverage computes a linear-weighted average with the most recent
// sample carrying the highest weight.
func weightedAverage(history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	var weightedSum, weightSum float64
	for i, r := range history {
		w := float64(i + 1)
		weightedSum += w * r
		weightSum += w
	}
	return weightedSum / weightSum
}

// AdjustDeltaByFeedback implements spec §4.2's corrective-bias control.
// BoundaryTooLong and BoundaryTooShort are mutually exclusive; callers
// apply at most one per utterance.
func (d *Detector) AdjustDeltaByFeedback(kind engine.FeedbackKind, magnitudeMs int64) {
	s := d.state
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case engine.BoundaryTooLong:
		s.deltaMs = clampI64(s.deltaMs-magnitudeMs, s.cfg.DeltaMinMs, s.cfg.DeltaMaxMs)
	case engine.BoundaryTooShort:
		s.deltaMs = clampI64(s.deltaMs+magnitudeMs, s.cfg.DeltaMinMs, s.cfg.DeltaMaxMs)
	}
}

var _ engine.AdaptiveVAD = (*Detector)(nil)
