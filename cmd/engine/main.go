// cmd/engine drives the translation pipeline against a live duplex audio
// device, adapted from the teacher's cmd/agent/main.go (malgo capture and
// playback, env-driven provider selection, console event printing), but
// rewired to feed the Orchestrator's per-frame Process loop instead of the
// teacher's ManagedStream LLM chat loop.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gen2brain/malgo"

	"github.com/lokutor-ai/lingua-engine/pkg/audio"
	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/config"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
	"github.com/lokutor-ai/lingua-engine/pkg/healthgate"
	"github.com/lokutor-ai/lingua-engine/pkg/orchestrator"
	"github.com/lokutor-ai/lingua-engine/pkg/speaker"
	"github.com/lokutor-ai/lingua-engine/pkg/telemetry"
	"github.com/lokutor-ai/lingua-engine/pkg/vad"

	asrProvider          "github.com/lokutor-ai/lingua-engine/pkg/providers/asr"
	nmtProvider          "github.com/lokutor-ai/lingua-engine/pkg/providers/nmt"
	speakerembedProvider "github.com/lokutor-ai/lingua-engine/pkg/providers/speakerembed"
	ttsProvider          "github.com/lokutor-ai/lingua-engine/pkg/providers/tts"
)

const (
	deviceSampleRate = 16000 // AdaptiveVAD requires exactly 16kHz/512-sample frames.
	vadFrameSize     = 512
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := engine.NewStdLogger()

	shutdownTelemetry, err := telemetry.Init("lingua-engine")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gate := healthgate.New(logger)
	services := healthgate.Services{}
	if cfg.Endpoints.ASRBaseURL != "" {
		services["asr"] = cfg.Endpoints.ASRBaseURL
	}
	if cfg.Endpoints.NMTBaseURL != "" {
		services["nmt"] = cfg.Endpoints.NMTBaseURL
	}
	if cfg.Endpoints.TTSBaseURL != "" {
		services["tts"] = cfg.Endpoints.TTSBaseURL
	}
	if cfg.Endpoints.SpeakerEmbedBaseURL != "" {
		services["speaker_embed"] = cfg.Endpoints.SpeakerEmbedBaseURL
	}
	gate.AwaitReady(ctx, services)

	asr := buildASR(cfg)
	nmt := buildNMT(cfg)
	tts, fallbackTTS := buildTTS(cfg)
	identifier := buildIdentifier(cfg)

	orch := orchestrator.New(asr, nmt, tts, cfg, logger)
	orch.FallbackTTS = fallbackTTS
	orch.Bus.Start()
	defer orch.Bus.Stop()

	session := orchestrator.NewSession("device_session", cfg.Pipeline.SourceLanguage, cfg.Pipeline.TargetLanguage)

	prober := vad.NewRMSProber()
	detector := vad.New(cfg.VAD, prober)

	stream, err := orchestrator.NewStream(ctx, orch, session, detector, cfg.Voices, identifier)
	if err != nil {
		log.Fatalf("new stream: %v", err)
	}
	defer stream.Close(ctx)

	fmt.Printf("Configured: ASR=%s | NMT=%s | TTS=%s | %s -> %s\n",
		asr.Name(), nmt.Name(), tts.Name(), cfg.Pipeline.SourceLanguage, cfg.Pipeline.TargetLanguage)
	fmt.Println("Translation engine started. Listening to microphone... Press Ctrl+C to exit.")

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer mctx.Uninit()

	var playbackMu sync.Mutex
	var playbackBytes []byte

	frames := make(chan audioframe.Frame, 256)
	go processFrames(ctx, stream, frames, logger)

	var pending []int16
	var frameSeq uint64

	onSamples := func(pOutput, pInput []byte, frameCount uint32) {
		if pInput != nil {
			for i := 0; i+1 < len(pInput); i += 2 {
				s := int16(pInput[i]) | (int16(pInput[i+1]) << 8)
				pending = append(pending, s)
			}
			for len(pending) >= vadFrameSize {
				window := pending[:vadFrameSize]
				pending = pending[vadFrameSize:]

				samples := make([]float32, vadFrameSize)
				for i, s := range window {
					samples[i] = float32(s) / 32768.0
				}
				frameSeq++
				f := audioframe.Frame{
					SampleRate:  deviceSampleRate,
					Channels:    1,
					Samples:     samples,
					TimestampMs: frameSeq * uint64(vadFrameSize) * 1000 / uint64(deviceSampleRate),
				}
				select {
				case frames <- f:
				default:
					logger.Warn("frame dropped, processing goroutine behind")
				}
			}
		}
		if pOutput != nil {
			playbackMu.Lock()
			n := copy(pOutput, playbackBytes)
			playbackBytes = playbackBytes[n:]
			for i := n; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
			playbackMu.Unlock()
		}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = deviceSampleRate
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		log.Fatal(err)
	}

	ttsEvents := orch.Bus.Subscribe(orchestrator.TopicTts)
	go func() {
		for ev := range ttsEvents {
			chunk, ok := ev.Payload.(engine.TTSChunk)
			if !ok {
				continue
			}
			decoded, err := audio.DecodeWav(chunk.AudioBytes)
			if err != nil {
				logger.Warn("tts chunk decode failed", "error", err)
				continue
			}
			raw := make([]byte, len(decoded.Samples)*2)
			for i, s := range decoded.Samples {
				raw[i*2] = byte(s)
				raw[i*2+1] = byte(s >> 8)
			}
			playbackMu.Lock()
			playbackBytes = append(playbackBytes, raw...)
			playbackMu.Unlock()
		}
	}()

	logEvents := func(topic string) {
		ch := orch.Bus.Subscribe(topic)
		go func() {
			for ev := range ch {
				fmt.Printf("[%s] %+v\n", topic, ev.Payload)
			}
		}()
	}
	logEvents(orchestrator.TopicAsrFinal)
	logEvents(orchestrator.TopicTranslation)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("\nShutting down...")
}

func processFrames(ctx context.Context, stream *orchestrator.Stream, frames <-chan audioframe.Frame, logger engine.Logger) {
	for f := range frames {
		if err := stream.Process(ctx, f); err != nil {
			logger.Error("stream process failed", "error", err)
		}
	}
}

func buildASR(cfg engine.Config) engine.ASR {
	if cfg.Endpoints.ASRBaseURL == "" {
		return asrProvider.Stub{}
	}
	return asrProvider.New(cfg.Endpoints.ASRBaseURL, nil)
}

func buildNMT(cfg engine.Config) engine.NMT {
	if cfg.Endpoints.NMTBaseURL == "" {
		return nmtProvider.Stub{}
	}
	return nmtProvider.New(cfg.Endpoints.NMTBaseURL, cfg.Pipeline.SourceLanguage, nil)
}

func buildTTS(cfg engine.Config) (engine.TTS, engine.TTS) {
	lokutorKey := os.Getenv("LOKUTOR_API_KEY")
	switch {
	case lokutorKey != "":
		primary := ttsProvider.NewLokutorTTS(lokutorKey)
		if cfg.Endpoints.TTSBaseURL != "" {
			return primary, ttsProvider.New(cfg.Endpoints.TTSBaseURL, nil)
		}
		return primary, nil
	case cfg.Endpoints.TTSBaseURL != "":
		return ttsProvider.New(cfg.Endpoints.TTSBaseURL, nil), nil
	default:
		return ttsProvider.Stub{}, nil
	}
}

func buildIdentifier(cfg engine.Config) speaker.Identifier {
	if cfg.Endpoints.SpeakerEmbedBaseURL == "" {
		return speaker.StubIdentifier{}
	}
	return &speaker.EmbeddingIdentifier{
		Embedder: speakerembedProvider.New(cfg.Endpoints.SpeakerEmbedBaseURL, nil),
	}
}
