// Package asr implements the HTTP-client variant of the ASR capability
// (spec §6 "ASR engine (local session or HTTP)"), plus a stub that always
// returns empty text for environments with no ASR service configured.
package asr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lokutor-ai/lingua-engine/pkg/audio"
	"github.com/lokutor-ai/lingua-engine/pkg/audiobuffer"
	"github.com/lokutor-ai/lingua-engine/pkg/audioframe"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// HTTPClient is the canonical ASR engine variant: a stateless POST to an
// external `/asr` endpoint per boundary, per spec §6.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	sampleRate int
	task       string
	beamSize   int
}

// New builds an HTTPClient against baseURL (e.g. "http://asr:8001"), with a
// per-call timeout carried by the caller's context.
func New(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		sampleRate: 16000,
		task:       "transcribe",
		beamSize:   5,
	}
}

func (c *HTTPClient) Name() string { return "asr-http" }

func (c *HTTPClient) Initialize(ctx context.Context) error { return nil }
func (c *HTTPClient) Finalize(ctx context.Context) error   { return nil }

type asrRequest struct {
	AudioB64                string `json:"audio_b64"`
	Prompt                  string `json:"prompt"`
	Language                string `json:"language,omitempty"`
	Task                    string `json:"task"`
	BeamSize                int    `json:"beam_size"`
	VadFilter               bool   `json:"vad_filter"`
	ConditionOnPreviousText bool   `json:"condition_on_previous_text"`
}

type asrSegment struct {
	Text string `json:"text"`
}

type asrResponse struct {
	Text     string       `json:"text"`
	Segments []asrSegment `json:"segments"`
	Language string       `json:"language"`
	Duration float64      `json:"duration"`
}

func (c *HTTPClient) InferOnBoundary(ctx context.Context, frames []audioframe.Frame, contextPrompt, languageHint string) (engine.StableTranscript, error) {
	wavData := encodeFramesToWav(frames, c.sampleRate)

	reqBody := asrRequest{
		AudioB64:                base64.StdEncoding.EncodeToString(wavData),
		Prompt:                  contextPrompt,
		Language:                languageHint,
		Task:                    c.task,
		BeamSize:                c.beamSize,
		VadFilter:               false,
		ConditionOnPreviousText: true,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return engine.StableTranscript{}, fmt.Errorf("asr: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/asr", bytes.NewReader(body))
	if err != nil {
		return engine.StableTranscript{}, fmt.Errorf("asr: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return engine.StableTranscript{}, engine.NewServiceUnavailable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return engine.StableTranscript{}, engine.NewServiceUnavailable(fmt.Sprintf("asr status %d: %s", resp.StatusCode, respBody))
	}

	var result asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return engine.StableTranscript{}, engine.NewDecodeFailure(err.Error())
	}

	return engine.StableTranscript{
		Text:     result.Text,
		Language: result.Language,
	}, nil
}

func (c *HTTPClient) InferPartial(ctx context.Context, frames []audioframe.Frame, minIntervalMs uint64) (*engine.PartialTranscript, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	final, err := c.InferOnBoundary(ctx, frames, "", "")
	if err != nil {
		return nil, err
	}
	if final.Text == "" {
		return nil, nil
	}
	return &engine.PartialTranscript{Text: final.Text, IsFinal: false}, nil
}

// encodeFramesToWav merges a frame sequence's interleaved float32 samples
// into 16-bit PCM and wraps them as a mono WAV, per spec §6's "Audio is
// 16 kHz mono PCM wrapped as WAV".
func encodeFramesToWav(frames []audioframe.Frame, sampleRate int) []byte {
	merged := audiobuffer.MergeFrames(frames)
	pcm := make([]int16, len(merged))
	for i, s := range merged {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		pcm[i] = int16(s * 32767)
	}
	return audio.EncodeWav(pcm, sampleRate, 1)
}

// Stub always returns empty text, for environments with no ASR service
// configured.
type Stub struct{}

func (Stub) Name() string                        { return "asr-stub" }
func (Stub) Initialize(ctx context.Context) error { return nil }
func (Stub) Finalize(ctx context.Context) error   { return nil }
func (Stub) InferOnBoundary(ctx context.Context, frames []audioframe.Frame, contextPrompt, languageHint string) (engine.StableTranscript, error) {
	return engine.StableTranscript{}, nil
}
func (Stub) InferPartial(ctx context.Context, frames []audioframe.Frame, minIntervalMs uint64) (*engine.PartialTranscript, error) {
	return nil, nil
}
