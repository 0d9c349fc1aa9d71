package engine

import (
	"context"

	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
)

// PartialTranscript is an in-progress ASR result; not yet committed to the
// pipeline's context carry-over.
type PartialTranscript struct {
	Text       string
	Confidence float64
	IsFinal    bool
}

// StableTranscript is ASR's committed output for one utterance.
type StableTranscript struct {
	Text      string
	SpeakerID string
	Language  string
}

// ASR is the capability set an ASR engine variant (local-session or
// HTTP-client) must satisfy. A "stub" variant that always returns empty
// text is a valid implementation.
type ASR interface {
	Initialize(ctx context.Context) error
	Finalize(ctx context.Context) error
	InferOnBoundary(ctx context.Context, frames []audioframe.Frame, contextPrompt, languageHint string) (StableTranscript, error)
	InferPartial(ctx context.Context, frames []audioframe.Frame, minIntervalMs uint64) (*PartialTranscript, error)
	Name() string
}

// QualityMetrics carries NMT confidence signals used by the VAD feedback
// quality gate (§4.2/§4.3.f).
type QualityMetrics struct {
	Perplexity     float64
	AvgProbability float64
	MinProbability float64
}

// TranslationRequest/TranslationResponse model spec §3's NMT contract.
type TranslationRequest struct {
	Transcript     string
	TargetLanguage string
	WaitK          *int
}

type TranslationResponse struct {
	TranslatedText string
	IsStable       bool
	QualityMetrics *QualityMetrics
}

// NMT is the translation capability. Only the HTTP-client variant is
// specified as canonical (§A.9); a local-session/stub variant is a valid
// implementation behind the same interface.
type NMT interface {
	Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error)
	Name() string
}

// TTSChunk is one unit of synthesized audio.
type TTSChunk struct {
	AudioBytes  []byte
	TimestampMs uint64
	IsLast      bool
}

// TTS is the speech synthesis capability.
type TTS interface {
	Synthesize(ctx context.Context, text, voice, locale string, referenceAudio []byte) (*TTSChunk, error)
	Name() string
}

// SpeakerEmbeddingResult models §A.6's `/extract` response.
type SpeakerEmbeddingResult struct {
	Embedding       []float32
	Dimension       int
	UseDefault      bool
	EstimatedGender string
	Message         string
}

// SpeakerEmbedder is the speaker-embedding HTTP capability.
type SpeakerEmbedder interface {
	Extract(ctx context.Context, audio []float32) (*SpeakerEmbeddingResult, error)
}

// Emotion models one classified emotional reading of a text span.
type Emotion struct {
	Primary    string
	Intensity  float64
	Confidence float64
}

// EmotionAdapter is the thin emotion-classification capability (§A.9:
// interface/event contract only, no prosody blending).
type EmotionAdapter interface {
	Classify(ctx context.Context, text string) (Emotion, error)
}

// PersonaAdapter is the thin persona-styling capability (§A.9: interface
// contract only).
type PersonaAdapter interface {
	Style(ctx context.Context, text string) (string, error)
}

// FeedbackKind is the VAD feedback signal the orchestrator derives from ASR
// length and translation quality (§4.2).
type FeedbackKind string

const (
	BoundaryTooLong  FeedbackKind = "BoundaryTooLong"
	BoundaryTooShort FeedbackKind = "BoundaryTooShort"
)

// BoundaryType distinguishes how a VAD boundary fired.
type BoundaryType string

const (
	BoundaryNaturalPause BoundaryType = "NaturalPause"
	BoundaryOverflow     BoundaryType = "Overflow"
)

// DetectionOutcome is AdaptiveVAD's per-frame result (§4.2).
type DetectionOutcome struct {
	IsBoundary   bool
	Confidence   float64
	BoundaryType BoundaryType
	Frame        audioframe.Frame
}

// AdaptiveVAD is the capability the orchestrator drives per frame and
// feeds utterance-level feedback to. Defined as an explicit interface
// rather than any type-erased/unsafe downcast (§A.9 decision).
type AdaptiveVAD interface {
	Detect(frame audioframe.Frame) (DetectionOutcome, error)
	Reset()
	UpdateSpeechRate(text string, audioDurationMs uint64)
	AdjustDeltaByFeedback(kind FeedbackKind, magnitudeMs int64)
}
