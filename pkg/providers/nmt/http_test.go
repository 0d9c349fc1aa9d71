package nmt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
	"github.com/stretchr/testify/require"
)

func TestTranslateDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/translate", r.URL.Path)
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "en", req.SrcLang)
		require.Equal(t, "zh", req.TgtLang)
		require.Equal(t, "hello", req.Text)

		json.NewEncoder(w).Encode(translateResponse{
			OK:   true,
			Text: "你好",
			Extra: map[string]interface{}{
				"perplexity": 12.5,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "en", nil)
	resp, err := c.Translate(context.Background(), engine.TranslationRequest{Transcript: "hello", TargetLanguage: "zh"})
	require.NoError(t, err)
	require.Equal(t, "你好", resp.TranslatedText)
	require.NotNil(t, resp.QualityMetrics)
	require.Equal(t, 12.5, resp.QualityMetrics.Perplexity)
}

func TestTranslateReturnsSuspiciousWhenNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{OK: false, Error: "model unavailable"})
	}))
	defer srv.Close()

	c := New(srv.URL, "en", nil)
	_, err := c.Translate(context.Background(), engine.TranslationRequest{Transcript: "hello", TargetLanguage: "zh"})
	require.Error(t, err)
	kind, ok := engine.KindOf(err)
	require.True(t, ok)
	require.Equal(t, engine.KindTranslationSuspicious, kind)
}

func TestTranslateMapsHTTPErrorToServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "en", nil)
	_, err := c.Translate(context.Background(), engine.TranslationRequest{Transcript: "hello", TargetLanguage: "zh"})
	require.Error(t, err)
	kind, ok := engine.KindOf(err)
	require.True(t, ok)
	require.Equal(t, engine.KindServiceUnavailable, kind)
}

func TestStubEchoesTranscript(t *testing.T) {
	s := Stub{}
	resp, err := s.Translate(context.Background(), engine.TranslationRequest{Transcript: "hi"})
	require.NoError(t, err)
	require.Equal(t, "hi", resp.TranslatedText)
}
