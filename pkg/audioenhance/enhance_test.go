package audioenhance

import (
	"testing"

	"github.com/lokutor-ai/lingua-engine/pkg/audio"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigMatchesReference(t *testing.T) {
	cfg := DefaultConfig()
	require.True(t, cfg.EnableFade)
	require.Equal(t, uint32(20), cfg.FadeDurationMs)
	require.True(t, cfg.EnablePause)
	require.Equal(t, uint32(100), cfg.PauseDurationMs)
}

func TestEnhanceRejectsEmptyAudio(t *testing.T) {
	e := New(DefaultConfig())
	_, err := e.Enhance([]byte{}, true, true, true)
	require.Error(t, err)
}

func TestEnhanceRejectsInvalidWav(t *testing.T) {
	e := New(DefaultConfig())
	_, err := e.Enhance(make([]byte, 10), true, true, true)
	require.Error(t, err)
}

func TestEnhanceAppliesFadeInAndOut(t *testing.T) {
	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = 10000
	}
	wav := audio.EncodeWav(samples, 22050, 1)

	e := New(DefaultConfig())
	out, err := e.Enhance(wav, true, true, false)
	require.NoError(t, err)

	decoded, err := audio.DecodeWav(out)
	require.NoError(t, err)
	require.Equal(t, decoded.Samples[0], int16(0))
	require.Less(t, decoded.Samples[len(decoded.Samples)-1], int16(1000))
}

func TestEnhanceAddsPauseOnLastChunk(t *testing.T) {
	samples := make([]int16, 500)
	wav := audio.EncodeWav(samples, 22050, 1)

	e := New(DefaultConfig())
	out, err := e.Enhance(wav, false, true, false)
	require.NoError(t, err)

	decoded, err := audio.DecodeWav(out)
	require.NoError(t, err)
	require.Greater(t, len(decoded.Samples), len(samples))
}

func TestEnhanceSkipsPauseForInteriorChunkWithoutSentenceEnd(t *testing.T) {
	samples := make([]int16, 500)
	wav := audio.EncodeWav(samples, 22050, 1)

	e := New(DefaultConfig())
	out, err := e.Enhance(wav, false, false, false)
	require.NoError(t, err)

	decoded, err := audio.DecodeWav(out)
	require.NoError(t, err)
	require.Equal(t, len(samples), len(decoded.Samples))
}

func TestEnhanceIsNoopWhenDisabled(t *testing.T) {
	samples := make([]int16, 200)
	wav := audio.EncodeWav(samples, 22050, 1)

	e := New(Config{})
	out, err := e.Enhance(wav, true, true, true)
	require.NoError(t, err)
	require.Equal(t, wav, out)
}
