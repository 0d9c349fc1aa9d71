// Package tts implements the TTS capability (spec §6 "TTS engine"): a
// streaming WebSocket variant grounded on the teacher's Lokutor client, a
// plain HTTP POST /tts variant, and a stub.
package tts

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// LokutorTTS streams synthesis over a persistent WebSocket connection,
// reconnecting lazily on the next Synthesize call after any read/write
// failure.
type LokutorTTS struct {
	apiKey string
	host   string
	scheme string
	mu     sync.Mutex
	conn   *websocket.Conn
}

func NewLokutorTTS(apiKey string) *LokutorTTS {
	return &LokutorTTS{
		apiKey: apiKey,
		host:   "api.lokutor.com",
		scheme: "wss",
	}
}

func (t *LokutorTTS) Name() string {
	return "lokutor"
}

func (t *LokutorTTS) getConn(ctx context.Context) (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return t.conn, nil
	}

	u := url.URL{Scheme: t.scheme, Host: t.host, Path: "/ws", RawQuery: "api_key=" + t.apiKey}
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lokutor: %w", err)
	}

	t.conn = conn
	return conn, nil
}

// Synthesize implements engine.TTS by streaming text to Lokutor and
// concatenating every binary frame it sends back into one WAV buffer.
// referenceAudio, when present, is forwarded as a voice-cloning reference.
func (t *LokutorTTS) Synthesize(ctx context.Context, text, voice, locale string, referenceAudio []byte) (*engine.TTSChunk, error) {
	var audio []byte
	err := t.streamSynthesize(ctx, text, voice, locale, referenceAudio, func(chunk []byte) error {
		audio = append(audio, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &engine.TTSChunk{AudioBytes: audio, IsLast: true}, nil
}

func (t *LokutorTTS) streamSynthesize(ctx context.Context, text, voice, locale string, referenceAudio []byte, onChunk func([]byte) error) error {
	conn, err := t.getConn(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	req := map[string]interface{}{
		"text":    text,
		"voice":   voice,
		"lang":    locale,
		"speed":   1.05,
		"steps":   5,
		"version": "versa-1.0",
	}
	if len(referenceAudio) > 0 {
		req["reference_audio"] = referenceAudio
	}

	if err := wsjson.Write(ctx, conn, req); err != nil {
		t.conn = nil
		conn.Close(websocket.StatusAbnormalClosure, "failed to write json")
		return engine.NewServiceUnavailable(fmt.Sprintf("lokutor: failed to send synthesis request: %v", err))
	}

	for {
		messageType, payload, err := conn.Read(ctx)
		if err != nil {
			t.conn = nil
			conn.Close(websocket.StatusAbnormalClosure, "failed to read")
			return engine.NewServiceUnavailable(fmt.Sprintf("lokutor: failed to read response: %v", err))
		}

		switch messageType {
		case websocket.MessageBinary:
			if err := onChunk(payload); err != nil {
				return err
			}
		case websocket.MessageText:
			msg := string(payload)
			if msg == "EOS" {
				return nil
			}
			if len(msg) >= 4 && msg[:4] == "ERR:" {
				return engine.NewServiceUnavailable("lokutor: " + msg)
			}
		}
	}
}

func (t *LokutorTTS) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		err := t.conn.Close(websocket.StatusNormalClosure, "")
		t.conn = nil
		return err
	}
	return nil
}
