// Package speakerembed implements the HTTP-client speaker-embedding
// capability of spec §6: "POST { audio } (16 kHz f32 array) to /extract".
package speakerembed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// HTTPClient POSTs raw float32 audio to an external `/extract` endpoint.
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

type extractRequest struct {
	Audio []float32 `json:"audio"`
}

type extractResponse struct {
	Embedding       []float32 `json:"embedding"`
	Dimension       int       `json:"dimension"`
	UseDefault      bool      `json:"use_default"`
	EstimatedGender string    `json:"estimated_gender"`
	Message         string    `json:"message"`
}

func (c *HTTPClient) Extract(ctx context.Context, audio []float32) (*engine.SpeakerEmbeddingResult, error) {
	body, err := json.Marshal(extractRequest{Audio: audio})
	if err != nil {
		return nil, fmt.Errorf("speakerembed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("speakerembed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, engine.NewServiceUnavailable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, engine.NewServiceUnavailable(fmt.Sprintf("speakerembed status %d: %s", resp.StatusCode, respBody))
	}

	var result extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, engine.NewDecodeFailure(err.Error())
	}

	return &engine.SpeakerEmbeddingResult{
		Embedding:       result.Embedding,
		Dimension:       result.Dimension,
		UseDefault:      result.UseDefault,
		EstimatedGender: result.EstimatedGender,
		Message:         result.Message,
	}, nil
}

// Stub always signals use_default, for environments with no
// speaker-embedding service configured.
type Stub struct{}

func (Stub) Extract(ctx context.Context, audio []float32) (*engine.SpeakerEmbeddingResult, error) {
	return &engine.SpeakerEmbeddingResult{UseDefault: true}, nil
}
