// Package orchestrator implements spec §4.3's Pipeline Orchestrator: the
// state machine that binds VAD boundaries to ASR/NMT/TTS calls and
// publishes events on the event bus.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lokutor-ai/lingua-engine/pkg/asrfilter"
	"github.com/lokutor-ai/lingua-engine/pkg/audiobuffer"
	"github.com/lokutor-ai/lingua-engine/pkg/audioenhance"
	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
	"github.com/lokutor-ai/lingua-engine/pkg/eventbus"
	"github.com/lokutor-ai/lingua-engine/pkg/metrics"
	"github.com/lokutor-ai/lingua-engine/pkg/postprocess"
	"github.com/lokutor-ai/lingua-engine/pkg/speaker"
	"github.com/lokutor-ai/lingua-engine/pkg/translationquality"
)

// Event topics published on the orchestrator's Bus.
const (
	TopicAsrPartial = "AsrPartial"
	TopicAsrFinal   = "AsrFinal"
	TopicFiltered   = "AsrFiltered"
	TopicTranslation = "Translation"
	TopicEmotion    = "Emotion"
	TopicPersona    = "Persona"
	TopicTts        = "Tts"
)

const (
	tooLongChars     = 50
	tooShortChars    = 5
	feedbackStepMs   = 150
	perplexityLimit  = 100.0
	minAvgProb       = 0.05
	minMinProb       = 0.001
	lengthRatioLow   = 0.3
	lengthRatioHigh  = 3.0
)

// Orchestrator holds the providers and support components shared across
// every Stream. It is safe for concurrent use by multiple Streams.
type Orchestrator struct {
	ASR         engine.ASR
	NMT         engine.NMT
	TTS         engine.TTS
	FallbackTTS engine.TTS // optional, used on primary TTS failure
	Emotion     engine.EmotionAdapter // optional
	Persona     engine.PersonaAdapter // optional

	Bus         *eventbus.Bus
	PostProcess *postprocess.Processor
	Quality     *translationquality.Checker
	Filter      *asrfilter.Filter
	Enhancer    *audioenhance.Enhancer

	Config engine.Config
	Logger engine.Logger
}

// New builds an Orchestrator from its required providers and support
// components. Optional fields (FallbackTTS, Emotion, Persona) may be set on
// the returned value before first use.
func New(asr engine.ASR, nmt engine.NMT, tts engine.TTS, cfg engine.Config, logger engine.Logger) *Orchestrator {
	if logger == nil {
		logger = &engine.NoOpLogger{}
	}
	return &Orchestrator{
		ASR:         asr,
		NMT:         nmt,
		TTS:         tts,
		Bus:         eventbus.New(),
		PostProcess: postprocess.New(),
		Quality:     translationquality.New(),
		Filter:      asrfilter.New(nil),
		Enhancer:    audioenhance.New(audioenhance.DefaultConfig()),
		Config:      cfg,
		Logger:      logger,
	}
}

// Stream is one live conversation's mutable pipeline state: its VAD
// instance, audio accumulator, speaker-voice router, and ASR context
// carry-over. Not safe for concurrent Process calls from multiple
// goroutines — frames must arrive in order on a single goroutine, same as
// the AdaptiveVAD and Buffer it drives.
type Stream struct {
	mu sync.Mutex

	o       *Orchestrator
	session *Session

	vad        engine.AdaptiveVAD
	buffer     *audiobuffer.Buffer
	router     *speaker.Router
	identifier speaker.Identifier

	lastPartialTs uint64
}

// NewStream starts a Stream bound to session, with the given VAD instance
// and speaker-voice pool. If identifier is nil, every utterance resolves to
// speaker.DefaultSpeaker.
func NewStream(ctx context.Context, o *Orchestrator, session *Session, vad engine.AdaptiveVAD, voicePool []string, identifier speaker.Identifier) (*Stream, error) {
	if o == nil {
		return nil, engine.ErrNilProvider
	}
	if err := o.ASR.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("asr initialize: %w", err)
	}
	if identifier == nil {
		identifier = speaker.StubIdentifier{}
	}
	if len(voicePool) == 0 {
		voicePool = o.Config.Voices
	}
	st := &Stream{
		o:          o,
		session:    session,
		vad:        vad,
		buffer:     audiobuffer.WithConfig(o.Config.Buffer.MaxBufferDurationMs, o.Config.Buffer.MinSegmentDurationMs),
		router:     speaker.New(voicePool),
		identifier: identifier,
	}
	metrics.ActiveStreams.Inc()
	return st, nil
}

// Close finalizes the ASR provider, releasing any session resources.
func (s *Stream) Close(ctx context.Context) error {
	metrics.ActiveStreams.Dec()
	return s.o.ASR.Finalize(ctx)
}

// Process implements spec §4.3's per-frame routine.
func (s *Stream) Process(ctx context.Context, frame audioframe.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.vad.Detect(frame)
	if err != nil {
		return fmt.Errorf("vad detect: %w", err)
	}

	if pushErr := s.buffer.Push(frame); pushErr != nil {
		if _, ok := engine.KindOf(pushErr); !ok {
			return pushErr
		}
		if err := s.handleBoundary(ctx, engine.BoundaryOverflow); err != nil {
			return err
		}
		// The frame that triggered overflow was never appended; reinsert it
		// into the now-empty buffer per spec §4.3 step 2.
		if err := s.buffer.Push(frame); err != nil {
			return err
		}
	}

	s.maybeEmitPartial(ctx, frame)

	if !outcome.IsBoundary {
		return nil
	}
	return s.handleBoundary(ctx, outcome.BoundaryType)
}

func (s *Stream) maybeEmitPartial(ctx context.Context, frame audioframe.Frame) {
	interval := s.o.Config.Pipeline.PartialIntervalMs
	if interval == 0 {
		return
	}
	if frame.TimestampMs < s.lastPartialTs+interval {
		return
	}
	s.lastPartialTs = frame.TimestampMs

	partial, err := s.o.ASR.InferPartial(ctx, s.buffer.Peek(), interval)
	if err != nil || partial == nil {
		return
	}
	s.o.Bus.Publish(eventbus.Event{
		Topic:       TopicAsrPartial,
		Payload:     *partial,
		TimestampMs: frame.TimestampMs,
	})
}

// handleBoundary implements spec §4.3 step 5.
func (s *Stream) handleBoundary(ctx context.Context, boundaryType engine.BoundaryType) error {
	if boundaryType != engine.BoundaryOverflow && !s.buffer.CheckMinDuration() {
		return nil
	}
	metrics.BoundariesTotal.WithLabelValues(string(boundaryType)).Inc()

	utteranceDurationMs := s.buffer.DurationMs()
	frames := s.buffer.TakeCurrent()
	if len(frames) == 0 {
		return nil
	}

	asrStart := time.Now()
	asrResult, err := s.o.ASR.InferOnBoundary(ctx, frames, s.session.ContextPrompt(), s.session.SourceLanguage)
	metrics.StageDuration.WithLabelValues("asr").Observe(time.Since(asrStart).Seconds())
	if err != nil {
		s.o.Logger.Error("asr infer_on_boundary failed", "session", s.session.ID, "error", err)
		return nil
	}

	if s.o.Filter.IsMeaningless(asrResult.Text, s.session.ContextPrompt()) {
		metrics.AsrFilteredTotal.Inc()
		s.o.Logger.Debug("asr output filtered", "session", s.session.ID, "text", asrResult.Text)
		return nil
	}

	s.o.Bus.Publish(eventbus.Event{Topic: TopicAsrFinal, Payload: asrResult})
	s.session.PushAcceptedText(asrResult.Text)

	s.vad.UpdateSpeechRate(asrResult.Text, utteranceDurationMs)
	if utf8.RuneCountInString(asrResult.Text) > tooLongChars {
		s.vad.AdjustDeltaByFeedback(engine.BoundaryTooLong, feedbackStepMs)
		metrics.VadFeedbackTotal.WithLabelValues(string(engine.BoundaryTooLong)).Inc()
	}

	nmtStart := time.Now()
	translation, err := s.o.NMT.Translate(ctx, engine.TranslationRequest{
		Transcript:     asrResult.Text,
		TargetLanguage: s.session.TargetLanguage,
	})
	metrics.StageDuration.WithLabelValues("nmt").Observe(time.Since(nmtStart).Seconds())
	if err != nil {
		s.o.Logger.Warn("nmt translate failed, skipping tts", "session", s.session.ID, "error", err)
		return nil
	}

	if utf8.RuneCountInString(asrResult.Text) < tooShortChars && hasQualityAnomaly(translation.QualityMetrics, asrResult.Text, translation.TranslatedText) {
		s.vad.AdjustDeltaByFeedback(engine.BoundaryTooShort, feedbackStepMs)
		metrics.VadFeedbackTotal.WithLabelValues(string(engine.BoundaryTooShort)).Inc()
	}

	targetIsCJK := isCJKLanguage(s.session.TargetLanguage)
	fixed := s.o.Quality.CheckAndFix(translation.TranslatedText, s.session.TargetLanguage)
	if fixed == "" {
		metrics.TranslationDroppedTotal.Inc()
		s.o.Logger.Debug("translation dropped by quality gate", "session", s.session.ID)
		return nil
	}
	processed := s.o.PostProcess.Process(fixed, targetIsCJK)

	s.o.Bus.Publish(eventbus.Event{Topic: TopicTranslation, Payload: *translation})

	if s.o.Emotion != nil {
		if emo, err := s.o.Emotion.Classify(ctx, processed); err == nil {
			s.o.Bus.Publish(eventbus.Event{Topic: TopicEmotion, Payload: emo})
		}
	}
	if s.o.Persona != nil {
		if styled, err := s.o.Persona.Style(ctx, processed); err == nil {
			s.o.Bus.Publish(eventbus.Event{Topic: TopicPersona, Payload: styled})
		}
	}

	speakerID, err := s.identifier.Identify(ctx, audiobuffer.MergeFrames(frames))
	if err != nil {
		speakerID = speaker.DefaultSpeaker
	}
	voice := s.router.GetOrAssign(speakerID)

	ttsStart := time.Now()
	chunk, err := s.o.TTS.Synthesize(ctx, processed, voice, s.session.TargetLanguage, nil)
	if err != nil && s.o.FallbackTTS != nil {
		chunk, err = s.o.FallbackTTS.Synthesize(ctx, processed, voice, s.session.TargetLanguage, nil)
	}
	metrics.StageDuration.WithLabelValues("tts").Observe(time.Since(ttsStart).Seconds())
	if err != nil {
		s.o.Logger.Warn("tts synthesize failed", "session", s.session.ID, "error", err)
		return nil
	}

	enhanced, err := s.o.Enhancer.Enhance(chunk.AudioBytes, true, true, true)
	if err != nil {
		s.o.Logger.Warn("audio enhance failed, emitting unenhanced chunk", "session", s.session.ID, "error", err)
		enhanced = chunk.AudioBytes
	}
	chunk.AudioBytes = enhanced

	s.o.Bus.Publish(eventbus.Event{Topic: TopicTts, Payload: *chunk})
	return nil
}

// hasQualityAnomaly implements the concretized quality-anomaly test: high
// perplexity, low average/minimum token probability, or a translated length
// wildly disproportionate to the source.
func hasQualityAnomaly(m *engine.QualityMetrics, srcText, tgtText string) bool {
	if m != nil {
		if m.Perplexity > perplexityLimit {
			return true
		}
		if m.AvgProbability < minAvgProb {
			return true
		}
		if m.MinProbability < minMinProb {
			return true
		}
	}
	srcLen := utf8.RuneCountInString(srcText)
	tgtLen := utf8.RuneCountInString(tgtText)
	if srcLen == 0 {
		return tgtLen > 0
	}
	ratio := float64(tgtLen) / float64(srcLen)
	return ratio < lengthRatioLow || ratio > lengthRatioHigh
}

func isCJKLanguage(lang string) bool {
	switch lang {
	case "zh", "zh-CN", "zh-TW", "ja", "ko":
		return true
	default:
		return false
	}
}
