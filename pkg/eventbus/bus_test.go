package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishBeforeStartIsQueued(t *testing.T) {
	b := New()
	sub := b.Subscribe("AsrFinal")

	b.Publish(Event{Topic: "AsrFinal", Payload: "hello"})
	b.Start()
	defer b.Stop()

	select {
	case ev := <-sub:
		require.Equal(t, "hello", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("expected queued event to be delivered after Start")
	}
}

func TestSubscriberOnlySeesItsTopic(t *testing.T) {
	b := New()
	b.Start()
	defer b.Stop()

	asr := b.Subscribe("AsrFinal")
	tts := b.Subscribe("Tts")

	b.Publish(Event{Topic: "AsrFinal", Payload: 1})
	b.Publish(Event{Topic: "Tts", Payload: 2})

	select {
	case ev := <-asr:
		require.Equal(t, 1, ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for AsrFinal event")
	}

	select {
	case ev := <-tts:
		require.Equal(t, 2, ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Tts event")
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	b := New()
	b.Start()
	b.Start()
	b.Stop()
	b.Stop()
}

func TestPublishOrderPreservedPerTopic(t *testing.T) {
	b := New()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe("Translation")
	for i := 0; i < 5; i++ {
		b.Publish(Event{Topic: "Translation", Payload: i})
	}

	for i := 0; i < 5; i++ {
		select {
		case ev := <-sub:
			require.Equal(t, i, ev.Payload)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}
