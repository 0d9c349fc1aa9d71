package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lokutor-ai/lingua-engine/pkg/audio"
	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
	"github.com/lokutor-ai/lingua-engine/pkg/eventbus"
	"github.com/stretchr/testify/require"
)

type fakeVAD struct {
	boundaryAtTs []uint64

	rateUpdates      int
	deltaAdjustments []engine.FeedbackKind
}

func (f *fakeVAD) Detect(frame audioframe.Frame) (engine.DetectionOutcome, error) {
	for _, ts := range f.boundaryAtTs {
		if frame.TimestampMs == ts {
			return engine.DetectionOutcome{IsBoundary: true, BoundaryType: engine.BoundaryNaturalPause, Frame: frame}, nil
		}
	}
	return engine.DetectionOutcome{Frame: frame}, nil
}
func (f *fakeVAD) Reset() {}
func (f *fakeVAD) UpdateSpeechRate(text string, audioDurationMs uint64) { f.rateUpdates++ }
func (f *fakeVAD) AdjustDeltaByFeedback(kind engine.FeedbackKind, magnitudeMs int64) {
	f.deltaAdjustments = append(f.deltaAdjustments, kind)
}

type fakeASR struct {
	result StableTranscriptOrErr
}

type StableTranscriptOrErr struct {
	text string
	err  error
}

func (f *fakeASR) Initialize(ctx context.Context) error { return nil }
func (f *fakeASR) Finalize(ctx context.Context) error   { return nil }
func (f *fakeASR) InferOnBoundary(ctx context.Context, frames []audioframe.Frame, contextPrompt, languageHint string) (engine.StableTranscript, error) {
	if f.result.err != nil {
		return engine.StableTranscript{}, f.result.err
	}
	return engine.StableTranscript{Text: f.result.text}, nil
}
func (f *fakeASR) InferPartial(ctx context.Context, frames []audioframe.Frame, minIntervalMs uint64) (*engine.PartialTranscript, error) {
	return nil, nil
}
func (f *fakeASR) Name() string { return "fake-asr" }

type fakeNMT struct {
	response *engine.TranslationResponse
	err      error
}

func (f *fakeNMT) Translate(ctx context.Context, req engine.TranslationRequest) (*engine.TranslationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}
func (f *fakeNMT) Name() string { return "fake-nmt" }

type fakeTTS struct {
	wav []byte
	err error
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, voice, locale string, referenceAudio []byte) (*engine.TTSChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &engine.TTSChunk{AudioBytes: f.wav, IsLast: true}, nil
}
func (f *fakeTTS) Name() string { return "fake-tts" }

func testWav() []byte {
	return audio.EncodeWav(make([]int16, 256), 22050, 1)
}

func newTestOrchestrator(asr engine.ASR, nmt engine.NMT, tts engine.TTS) *Orchestrator {
	cfg := engine.DefaultConfig()
	o := New(asr, nmt, tts, cfg, nil)
	o.Bus.Start()
	return o
}

func frame(ts uint64) audioframe.Frame {
	return audioframe.Frame{SampleRate: 16000, Channels: 1, Samples: make([]float32, 160), TimestampMs: ts}
}

func newTestStream(t *testing.T, o *Orchestrator, vad engine.AdaptiveVAD) *Stream {
	t.Helper()
	session := NewSession("s1", "en", "zh")
	st, err := NewStream(context.Background(), o, session, vad, []string{"voiceA", "voiceB"}, nil)
	require.NoError(t, err)
	return st
}

func subscribe(o *Orchestrator, topic string) <-chan eventbus.Event {
	return o.Bus.Subscribe(topic)
}

func drain(t *testing.T, ch <-chan eventbus.Event, wantNone bool) *eventbus.Event {
	t.Helper()
	select {
	case ev := <-ch:
		if wantNone {
			t.Fatalf("expected no event on %s, got %+v", ev.Topic, ev)
		}
		return &ev
	case <-time.After(100 * time.Millisecond):
		if wantNone {
			return nil
		}
		t.Fatalf("timed out waiting for event")
		return nil
	}
}

func TestProcessEmitsFullPipelineOnBoundary(t *testing.T) {
	asr := &fakeASR{result: StableTranscriptOrErr{text: "hello there"}}
	nmt := &fakeNMT{response: &engine.TranslationResponse{TranslatedText: "你好世界"}}
	tts := &fakeTTS{wav: testWav()}
	o := newTestOrchestrator(asr, nmt, tts)

	asrCh := subscribe(o, TopicAsrFinal)
	trCh := subscribe(o, TopicTranslation)
	ttsCh := subscribe(o, TopicTts)

	vad := &fakeVAD{boundaryAtTs: []uint64{300}}
	st := newTestStream(t, o, vad)

	require.NoError(t, st.Process(context.Background(), frame(0)))
	require.NoError(t, st.Process(context.Background(), frame(300)))

	asrEv := drain(t, asrCh, false)
	require.Equal(t, "hello there", asrEv.Payload.(engine.StableTranscript).Text)

	drain(t, trCh, false)
	ttsEv := drain(t, ttsCh, false)
	require.True(t, ttsEv.Payload.(engine.TTSChunk).IsLast)

	require.Equal(t, 1, vad.rateUpdates)
}

func TestProcessFiltersMeaninglessAsrOutput(t *testing.T) {
	asr := &fakeASR{result: StableTranscriptOrErr{text: "嗯"}}
	nmt := &fakeNMT{response: &engine.TranslationResponse{TranslatedText: "uh"}}
	tts := &fakeTTS{wav: testWav()}
	o := newTestOrchestrator(asr, nmt, tts)

	asrCh := subscribe(o, TopicAsrFinal)

	vad := &fakeVAD{boundaryAtTs: []uint64{300}}
	st := newTestStream(t, o, vad)

	require.NoError(t, st.Process(context.Background(), frame(0)))
	require.NoError(t, st.Process(context.Background(), frame(300)))

	drain(t, asrCh, true)
	require.Empty(t, vad.deltaAdjustments)
	require.Equal(t, 0, vad.rateUpdates)
}

func TestProcessSkipsTtsWhenNmtFails(t *testing.T) {
	asr := &fakeASR{result: StableTranscriptOrErr{text: "hello there"}}
	nmt := &fakeNMT{err: engine.NewServiceUnavailable("nmt down")}
	tts := &fakeTTS{wav: testWav()}
	o := newTestOrchestrator(asr, nmt, tts)

	asrCh := subscribe(o, TopicAsrFinal)
	ttsCh := subscribe(o, TopicTts)

	vad := &fakeVAD{boundaryAtTs: []uint64{300}}
	st := newTestStream(t, o, vad)

	require.NoError(t, st.Process(context.Background(), frame(0)))
	require.NoError(t, st.Process(context.Background(), frame(300)))

	drain(t, asrCh, false)
	drain(t, ttsCh, true)
}

func TestProcessAppliesTooLongFeedback(t *testing.T) {
	longText := strings.Repeat("a", 60)
	asr := &fakeASR{result: StableTranscriptOrErr{text: longText}}
	nmt := &fakeNMT{response: &engine.TranslationResponse{TranslatedText: strings.Repeat("b", 60)}}
	tts := &fakeTTS{wav: testWav()}
	o := newTestOrchestrator(asr, nmt, tts)

	vad := &fakeVAD{boundaryAtTs: []uint64{300}}
	st := newTestStream(t, o, vad)

	require.NoError(t, st.Process(context.Background(), frame(0)))
	require.NoError(t, st.Process(context.Background(), frame(300)))

	require.Contains(t, vad.deltaAdjustments, engine.BoundaryTooLong)
	require.NotContains(t, vad.deltaAdjustments, engine.BoundaryTooShort)
}

func TestProcessAppliesTooShortFeedbackOnQualityAnomaly(t *testing.T) {
	asr := &fakeASR{result: StableTranscriptOrErr{text: "hi"}}
	nmt := &fakeNMT{response: &engine.TranslationResponse{
		TranslatedText: "hi",
		QualityMetrics: &engine.QualityMetrics{Perplexity: 500},
	}}
	tts := &fakeTTS{wav: testWav()}
	o := newTestOrchestrator(asr, nmt, tts)

	vad := &fakeVAD{boundaryAtTs: []uint64{300}}
	st := newTestStream(t, o, vad)

	require.NoError(t, st.Process(context.Background(), frame(0)))
	require.NoError(t, st.Process(context.Background(), frame(300)))

	require.Contains(t, vad.deltaAdjustments, engine.BoundaryTooShort)
}

func TestProcessForcesBoundaryAndReinsertsFrameOnOverflow(t *testing.T) {
	asr := &fakeASR{result: StableTranscriptOrErr{text: "hello there"}}
	nmt := &fakeNMT{response: &engine.TranslationResponse{TranslatedText: "你好"}}
	tts := &fakeTTS{wav: testWav()}

	cfg := engine.DefaultConfig()
	cfg.Buffer.MaxBufferDurationMs = 100
	cfg.Buffer.MinSegmentDurationMs = 0
	o := New(asr, nmt, tts, cfg, nil)
	o.Bus.Start()

	asrCh := subscribe(o, TopicAsrFinal)

	vad := &fakeVAD{} // never signals a natural boundary
	st := newTestStream(t, o, vad)

	require.NoError(t, st.Process(context.Background(), frame(0)))
	require.NoError(t, st.Process(context.Background(), frame(200))) // exceeds 100ms max, forces overflow

	drain(t, asrCh, false)
	require.Equal(t, 1, st.buffer.FrameCount(), "overflowing frame should be reinserted into the now-empty buffer")
}
