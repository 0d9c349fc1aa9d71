package tts

import "github.com/lokutor-ai/lingua-engine/pkg/audio"

// silentWav returns a short (100ms) silent mono WAV at the given sample
// rate, a harmless placeholder for Stub.Synthesize.
func silentWav(sampleRate int) []byte {
	samples := make([]int16, sampleRate/10)
	return audio.EncodeWav(samples, sampleRate, 1)
}
