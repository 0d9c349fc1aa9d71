package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// HTTPClient is the plain HTTP variant of spec §6's TTS engine: "POST
// { text, voice } to /tts; response body is the WAV."
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *HTTPClient) Name() string { return "tts-http" }

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (c *HTTPClient) Synthesize(ctx context.Context, text, voice, locale string, referenceAudio []byte) (*engine.TTSChunk, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice})
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, engine.NewServiceUnavailable(err.Error())
	}
	defer resp.Body.Close()

	wavData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, engine.NewDecodeFailure(err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, engine.NewServiceUnavailable(fmt.Sprintf("tts status %d: %s", resp.StatusCode, wavData))
	}

	return &engine.TTSChunk{AudioBytes: wavData, IsLast: true}, nil
}

// Stub always returns a single silent WAV chunk, for environments with no
// TTS service configured.
type Stub struct {
	SampleRate int
}

func (s Stub) Name() string { return "tts-stub" }

func (s Stub) Synthesize(ctx context.Context, text, voice, locale string, referenceAudio []byte) (*engine.TTSChunk, error) {
	rate := s.SampleRate
	if rate == 0 {
		rate = 22050
	}
	return &engine.TTSChunk{AudioBytes: silentWav(rate), IsLast: true}, nil
}
