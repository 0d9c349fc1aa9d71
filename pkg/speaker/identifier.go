package speaker

import (
	"context"
	"strconv"

	"github.com/lokutor-ai/lingua-engine/pkg/engine"
)

// Identifier resolves a speaker_id for the current utterance (SPEC_FULL Part
// D.2). This package provides an embedding-based variant and a stub; there
// is no VAD-interval heuristic variant. The orchestrator calls it before
// Router.GetOrAssign.
type Identifier interface {
	Identify(ctx context.Context, audio []float32) (string, error)
}

// EmbeddingIdentifier resolves a speaker_id via a SpeakerEmbedder, mapping
// `use_default` responses to the DefaultMale/DefaultFemale sentinels per
// spec §A.6.
type EmbeddingIdentifier struct {
	Embedder engine.SpeakerEmbedder
}

func (e *EmbeddingIdentifier) Identify(ctx context.Context, audio []float32) (string, error) {
	result, err := e.Embedder.Extract(ctx, audio)
	if err != nil {
		return "", err
	}
	if result.UseDefault {
		switch result.EstimatedGender {
		case "male":
			return DefaultMale, nil
		case "female":
			return DefaultFemale, nil
		default:
			return DefaultSpeaker, nil
		}
	}
	if len(result.Embedding) == 0 {
		return DefaultSpeaker, nil
	}
	// Without a persistent embedding store the best we can do with a raw
	// embedding is treat it as an opaque, stable identity token; callers
	// that want real clustering provide their own Identifier.
	return embeddingToken(result.Embedding), nil
}

func embeddingToken(embedding []float32) string {
	// A coarse, deterministic bucketing so the same speaker's embedding maps
	// to the same id across calls without standing up a vector index.
	var sum float64
	for _, v := range embedding {
		sum += float64(v)
	}
	bucket := int64(sum * 1000)
	if bucket < 0 {
		bucket = -bucket
	}
	return "embedding_speaker_" + strconv.FormatInt(bucket, 10)
}

// StubIdentifier always reports the DefaultSpeaker sentinel, a valid
// capability per spec §A.9 ("a stub variant for each is valid").
type StubIdentifier struct{}

func (StubIdentifier) Identify(ctx context.Context, audio []float32) (string, error) {
	return DefaultSpeaker, nil
}
