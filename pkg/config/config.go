// Package config loads the single structured configuration document spec
// §6 describes (VAD, buffer, pipeline, services, speaker router,
// post-processing) into an engine.Config, using Viper for layered
// file/env/default resolution and godotenv for .env loading, the same
// stack the teacher's cmd/agent/main.go uses for secrets.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// EnvPrefix is the environment-variable prefix Viper binds under, e.g.
// LINGUA_PIPELINE_TARGET_LANGUAGE.
const EnvPrefix = "LINGUA"

// Load reads configPaths (directories to search for a "config.yaml"), a
// ".env" file in the working directory if present, and environment
// variables, merging them over engine.DefaultConfig()'s defaults.
func Load(configPaths ...string) (engine.Config, error) {
	if err := godotenv.Load(); err != nil {
		// absence of a .env file is not an error; the teacher's main.go
		// treats it the same way, falling back to the process environment.
	}

	v := viper.New()
	setDefaults(v, engine.DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return engine.Config{}, engine.NewConfigError(fmt.Sprintf("read config: %v", err))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg engine.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return engine.Config{}, engine.NewConfigError(fmt.Sprintf("unmarshal config: %v", err))
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d engine.Config) {
	v.SetDefault("vad.sample_rate", d.VAD.SampleRate)
	v.SetDefault("vad.frame_size", d.VAD.FrameSize)
	v.SetDefault("vad.silence_threshold", d.VAD.SilenceThreshold)
	v.SetDefault("vad.base_threshold_min_ms", d.VAD.BaseMinMs)
	v.SetDefault("vad.base_threshold_max_ms", d.VAD.BaseMaxMs)
	v.SetDefault("vad.delta_min_ms", d.VAD.DeltaMinMs)
	v.SetDefault("vad.delta_max_ms", d.VAD.DeltaMaxMs)
	v.SetDefault("vad.final_threshold_min_ms", d.VAD.FinalMinMs)
	v.SetDefault("vad.final_threshold_max_ms", d.VAD.FinalMaxMs)
	v.SetDefault("vad.min_utterance_ms", d.VAD.MinUtteranceMs)
	v.SetDefault("vad.adaptive_rate", d.VAD.AdaptiveRate)
	v.SetDefault("vad.min_silence_duration_ms", d.VAD.MinSilenceDurationMs)

	v.SetDefault("buffer.max_buffer_duration_ms", d.Buffer.MaxBufferDurationMs)
	v.SetDefault("buffer.min_segment_duration_ms", d.Buffer.MinSegmentDurationMs)

	v.SetDefault("pipeline.source_language", d.Pipeline.SourceLanguage)
	v.SetDefault("pipeline.target_language", d.Pipeline.TargetLanguage)
	v.SetDefault("pipeline.mode", d.Pipeline.Mode)
	v.SetDefault("pipeline.partial_interval_ms", d.Pipeline.PartialIntervalMs)

	v.SetDefault("endpoints.asr_url", d.Endpoints.ASRBaseURL)
	v.SetDefault("endpoints.nmt_url", d.Endpoints.NMTBaseURL)
	v.SetDefault("endpoints.tts_url", d.Endpoints.TTSBaseURL)
	v.SetDefault("endpoints.speaker_embed_url", d.Endpoints.SpeakerEmbedBaseURL)

	v.SetDefault("timeouts.asr", d.Timeouts.ASR)
	v.SetDefault("timeouts.nmt", d.Timeouts.NMT)
	v.SetDefault("timeouts.tts", d.Timeouts.TTS)
	v.SetDefault("timeouts.speakerembed", d.Timeouts.SpeakerEmbed)
	v.SetDefault("timeouts.healthprobe", d.Timeouts.HealthProbe)

	v.SetDefault("voices", d.Voices)

	v.SetDefault("postprocess.enabled", d.PostProcess.Enabled)
	v.SetDefault("postprocess.term_map_path", d.PostProcess.TermMapPath)
	v.SetDefault("postprocess.asr_filter_rules_path", d.PostProcess.ASRFilterPath)
}
