package engine

import "time"

// VADConfig mirrors spec §3's VADConfig data model, defaults included.
type VADConfig struct {
	SampleRate            int     `mapstructure:"sample_rate"`
	FrameSize             int     `mapstructure:"frame_size"`
	SilenceThreshold      float64 `mapstructure:"silence_threshold"`
	BaseMinMs             int64   `mapstructure:"base_threshold_min_ms"`
	BaseMaxMs             int64   `mapstructure:"base_threshold_max_ms"`
	DeltaMinMs            int64   `mapstructure:"delta_min_ms"`
	DeltaMaxMs            int64   `mapstructure:"delta_max_ms"`
	FinalMinMs            int64   `mapstructure:"final_threshold_min_ms"`
	FinalMaxMs            int64   `mapstructure:"final_threshold_max_ms"`
	MinUtteranceMs        int64   `mapstructure:"min_utterance_ms"`
	AdaptiveRate          float64 `mapstructure:"adaptive_rate"`
	MinSilenceDurationMs  int64   `mapstructure:"min_silence_duration_ms"`
}

func DefaultVADConfig() VADConfig {
	return VADConfig{
		SampleRate:           16000,
		FrameSize:            512,
		SilenceThreshold:     0.2,
		BaseMinMs:            200,
		BaseMaxMs:            600,
		DeltaMinMs:           -200,
		DeltaMaxMs:           200,
		FinalMinMs:           200,
		FinalMaxMs:           800,
		MinUtteranceMs:       1000,
		AdaptiveRate:         0.4,
		MinSilenceDurationMs: 300,
	}
}

// BufferConfig mirrors spec §3's AudioBuffer defaults.
type BufferConfig struct {
	MaxBufferDurationMs  uint64 `mapstructure:"max_buffer_duration_ms"`
	MinSegmentDurationMs uint64 `mapstructure:"min_segment_duration_ms"`
}

func DefaultBufferConfig() BufferConfig {
	return BufferConfig{
		MaxBufferDurationMs:  5000,
		MinSegmentDurationMs: 200,
	}
}

// ServiceTimeouts carries per-call deadline values from spec §5. No provider
// client and no orchestrator stage reads them: external calls are bounded
// only by the caller's context (and, for healthgate, its own 5s client).
type ServiceTimeouts struct {
	ASR             time.Duration
	NMT             time.Duration
	TTS             time.Duration
	SpeakerEmbed    time.Duration
	HealthProbe     time.Duration
}

func DefaultServiceTimeouts() ServiceTimeouts {
	return ServiceTimeouts{
		ASR:          30 * time.Second,
		NMT:          10 * time.Second,
		TTS:          8 * time.Second,
		SpeakerEmbed: 5 * time.Second,
		HealthProbe:  5 * time.Second,
	}
}

// PipelineConfig carries the pipeline-wide knobs of spec §A.6's
// configuration document.
type PipelineConfig struct {
	SourceLanguage string `mapstructure:"source_language"`
	TargetLanguage string `mapstructure:"target_language"`
	Mode           string `mapstructure:"mode"`

	// PartialIntervalMs controls how often a streaming-partial ASR call is
	// issued while a buffer accumulates (§4.3 step 3). Zero disables partials.
	PartialIntervalMs uint64 `mapstructure:"partial_interval_ms"`
}

// ServiceEndpoints carries the URLs for external collaborators (§A.6).
type ServiceEndpoints struct {
	ASRBaseURL          string `mapstructure:"asr_url"`
	NMTBaseURL          string `mapstructure:"nmt_url"`
	TTSBaseURL          string `mapstructure:"tts_url"`
	SpeakerEmbedBaseURL string `mapstructure:"speaker_embed_url"`
}

// PostProcessConfig carries the knobs from spec §A.6's post-processing
// section.
type PostProcessConfig struct {
	TermMapPath    string `mapstructure:"term_map_path"`
	ASRFilterPath  string `mapstructure:"asr_filter_rules_path"`
	Enabled        bool   `mapstructure:"enabled"`
}

// Config is the single structured configuration document spec §A.6
// describes.
type Config struct {
	VAD           VADConfig
	Buffer        BufferConfig
	Pipeline      PipelineConfig
	Endpoints     ServiceEndpoints
	Timeouts      ServiceTimeouts
	Voices        []string
	PostProcess   PostProcessConfig
}

func DefaultConfig() Config {
	return Config{
		VAD:      DefaultVADConfig(),
		Buffer:   DefaultBufferConfig(),
		Timeouts: DefaultServiceTimeouts(),
		Pipeline: PipelineConfig{
			SourceLanguage:    "en",
			TargetLanguage:    "zh",
			Mode:              "continuous",
			PartialIntervalMs: 500,
		},
		Voices: []string{"default_male", "default_female"},
		PostProcess: PostProcessConfig{
			Enabled: true,
		},
	}
}
