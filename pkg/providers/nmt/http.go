// Package nmt implements the HTTP-client variant of the NMT capability
// (spec §6 "NMT engine"), the canonical engine contract per SPEC_FULL.md's
// Open Question decision (§A.9: only the HTTP-client behavior, no
// MarianNmtOnnx/M2M100 split), plus a local-session stub.
package nmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// HTTPClient POSTs to an external `/v1/translate` endpoint per spec §6.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	sourceLanguage string
}

// New builds an HTTPClient against baseURL. sourceLanguage is the pipeline's
// configured source_language, since the wire contract's `src_lang` field is
// not part of engine.TranslationRequest.
func New(baseURL, sourceLanguage string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient, sourceLanguage: sourceLanguage}
}

func (c *HTTPClient) Name() string { return "nmt-http" }

type translateRequest struct {
	SrcLang string `json:"src_lang"`
	TgtLang string `json:"tgt_lang"`
	Text    string `json:"text"`
}

type translateResponse struct {
	OK       bool                   `json:"ok"`
	Text     string                 `json:"text"`
	Model    string                 `json:"model"`
	Provider string                 `json:"provider"`
	Extra    map[string]interface{} `json:"extra"`
	Error    string                 `json:"error"`
}

func (c *HTTPClient) Translate(ctx context.Context, req engine.TranslationRequest) (*engine.TranslationResponse, error) {
	payload := translateRequest{
		SrcLang: c.sourceLanguage,
		TgtLang: req.TargetLanguage,
		Text:    req.Transcript,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("nmt: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nmt: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, engine.NewServiceUnavailable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, engine.NewServiceUnavailable(fmt.Sprintf("nmt status %d: %s", resp.StatusCode, respBody))
	}

	var result translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, engine.NewDecodeFailure(err.Error())
	}
	if !result.OK {
		return nil, engine.NewTranslationSuspicious(result.Error)
	}

	metrics := qualityMetricsFromExtra(result.Extra)
	return &engine.TranslationResponse{
		TranslatedText: result.Text,
		IsStable:       true,
		QualityMetrics: metrics,
	}, nil
}

// qualityMetricsFromExtra reads optional `perplexity`/`avg_probability`/
// `min_probability` numbers out of the response's free-form `extra` bag.
// Providers that don't surface them leave QualityMetrics nil, and the
// orchestrator's quality-anomaly test falls back to its length-ratio check.
func qualityMetricsFromExtra(extra map[string]interface{}) *engine.QualityMetrics {
	if extra == nil {
		return nil
	}
	m := &engine.QualityMetrics{}
	found := false
	if v, ok := extra["perplexity"].(float64); ok {
		m.Perplexity = v
		found = true
	}
	if v, ok := extra["avg_probability"].(float64); ok {
		m.AvgProbability = v
		found = true
	}
	if v, ok := extra["min_probability"].(float64); ok {
		m.MinProbability = v
		found = true
	}
	if !found {
		return nil
	}
	return m
}

// Stub returns the transcript unchanged, for environments with no NMT
// service configured or for echo-testing the pipeline end-to-end.
type Stub struct{}

func (Stub) Name() string { return "nmt-stub" }
func (Stub) Translate(ctx context.Context, req engine.TranslationRequest) (*engine.TranslationResponse, error) {
	return &engine.TranslationResponse{TranslatedText: req.Transcript, IsStable: true}, nil
}
