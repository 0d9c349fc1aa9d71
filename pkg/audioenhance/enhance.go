// Package audioenhance applies fade in/out and end-of-utterance silence
// padding to streamed TTS audio, smoothing the audible seams between
// consecutive chunks (SPEC_FULL Part D.5).
package audioenhance

import (
	"github.com/lokutor-ai/lingua-engine/pkg/audio"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// Config controls fade and pause behavior. Defaults mirror the Piper TTS
// output format the reference pipeline was built around.
type Config struct {
	EnableFade      bool
	FadeDurationMs  uint32
	EnablePause     bool
	PauseDurationMs uint32
}

func DefaultConfig() Config {
	return Config{
		EnableFade:      true,
		FadeDurationMs:  20,
		EnablePause:     true,
		PauseDurationMs: 100,
	}
}

// Enhancer applies Config to WAV-encoded TTS chunks.
type Enhancer struct {
	cfg Config
}

func New(cfg Config) *Enhancer {
	return &Enhancer{cfg: cfg}
}

// Enhance fades and pads a WAV chunk. isFirst/isLast mark chunk position
// within the utterance; hasSentenceEnd additionally triggers padding for
// interior chunks that close a sentence.
func (e *Enhancer) Enhance(wavData []byte, isFirst, isLast, hasSentenceEnd bool) ([]byte, error) {
	if !e.cfg.EnableFade && !e.cfg.EnablePause {
		return wavData, nil
	}

	decoded, err := audio.DecodeWav(wavData)
	if err != nil {
		return nil, engine.NewDecodeFailure(err.Error())
	}
	samples := decoded.Samples

	if e.cfg.EnableFade {
		applyFade(samples, isFirst, isLast, decoded.SampleRate, e.cfg.FadeDurationMs)
	}

	if e.cfg.EnablePause && (isLast || hasSentenceEnd) {
		samples = addPause(samples, decoded.SampleRate, decoded.Channels, e.cfg.PauseDurationMs)
	}

	return audio.EncodeWav(samples, decoded.SampleRate, decoded.Channels), nil
}

func applyFade(samples []int16, isFirst, isLast bool, sampleRate int, fadeDurationMs uint32) {
	if len(samples) == 0 {
		return
	}

	fadeSamples := int(float64(fadeDurationMs) * float64(sampleRate) / 1000.0)
	if fadeSamples > len(samples)/2 {
		fadeSamples = len(samples) / 2
	}
	if fadeSamples <= 0 {
		return
	}

	if isFirst {
		n := fadeSamples
		if n > len(samples) {
			n = len(samples)
		}
		for i := 0; i < n; i++ {
			factor := float64(i) / float64(fadeSamples)
			samples[i] = int16(float64(samples[i]) * factor)
		}
	}

	if isLast {
		start := len(samples) - fadeSamples
		if start < 0 {
			start = 0
		}
		for i := start; i < len(samples); i++ {
			factor := float64(len(samples)-i) / float64(fadeSamples)
			samples[i] = int16(float64(samples[i]) * factor)
		}
	}
}

func addPause(samples []int16, sampleRate, channels int, pauseDurationMs uint32) []int16 {
	pauseSamples := int(float64(pauseDurationMs) * float64(sampleRate) / 1000.0)
	pauseSamples *= channels
	if pauseSamples <= 0 {
		return samples
	}
	return append(samples, make([]int16, pauseSamples)...)
}
