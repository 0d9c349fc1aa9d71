package audiobuffer

import (
	"testing"

	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
	"github.com/stretchr/testify/require"
)

func testFrame(ts uint64, samples ...float32) audioframe.Frame {
	return audioframe.Frame{SampleRate: 16000, Channels: 1, Samples: samples, TimestampMs: ts}
}

func TestPushAndTake(t *testing.T) {
	b := New()

	require.NoError(t, b.Push(testFrame(0, 1.0, 2.0)))
	require.NoError(t, b.Push(testFrame(100, 3.0, 4.0)))

	require.Equal(t, 2, b.FrameCount())

	frames := b.TakeCurrent()
	require.Len(t, frames, 2)
	require.Equal(t, []float32{1.0, 2.0}, frames[0].Samples)
	require.Equal(t, []float32{3.0, 4.0}, frames[1].Samples)

	require.True(t, b.IsEmpty())
}

func TestMinDurationCheck(t *testing.T) {
	b := WithConfig(10000, 500)

	require.NoError(t, b.Push(testFrame(0, 1.0)))
	require.NoError(t, b.Push(testFrame(100, 2.0)))
	require.False(t, b.CheckMinDuration())

	require.NoError(t, b.Push(testFrame(600, 3.0)))
	require.True(t, b.CheckMinDuration())
}

func TestBufferOverflow(t *testing.T) {
	b := WithConfig(1000, 200)

	require.NoError(t, b.Push(testFrame(0, 1.0)))
	require.NoError(t, b.Push(testFrame(500, 2.0)))

	err := b.Push(testFrame(1500, 3.0))
	require.Error(t, err)
	kind, ok := engine.KindOf(err)
	require.True(t, ok)
	require.Equal(t, engine.KindBufferOverflow, kind)
}

func TestBufferOverflowExactBoundaryDoesNotOverflow(t *testing.T) {
	b := WithConfig(1000, 200)

	require.NoError(t, b.Push(testFrame(0, 1.0)))
	require.NoError(t, b.Push(testFrame(1000, 2.0)))
	require.Equal(t, uint64(1000), b.DurationMs())
}

func TestMergeFrames(t *testing.T) {
	frames := []audioframe.Frame{
		testFrame(0, 1.0, 2.0),
		testFrame(100, 3.0, 4.0),
		testFrame(200, 5.0, 6.0),
	}

	merged := MergeFrames(frames)
	require.Equal(t, []float32{1.0, 2.0, 3.0, 4.0, 5.0, 6.0}, merged)
}

func TestSwap(t *testing.T) {
	b := New()
	require.NoError(t, b.Push(testFrame(0, 1.0)))
	b.Swap()
	require.True(t, b.IsEmpty())

	require.NoError(t, b.Push(testFrame(0, 2.0)))
	b.Swap()
	frames := b.TakeCurrent()
	require.Len(t, frames, 1)
	require.Equal(t, []float32{1.0}, frames[0].Samples)
}

func TestClear(t *testing.T) {
	b := New()
	require.NoError(t, b.Push(testFrame(0, 1.0)))
	b.Clear()
	require.True(t, b.IsEmpty())
	require.Equal(t, uint64(0), b.DurationMs())
}
