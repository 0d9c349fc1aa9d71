// Package speaker implements spec §4.6's SpeakerRouter: a stable,
// round-robin speaker-to-voice mapping with special handling for the
// default_male/default_female/default_speaker sentinel identities.
package speaker

import (
	"strings"
	"sync"
)

const (
	DefaultMale    = "default_male"
	DefaultFemale  = "default_female"
	DefaultSpeaker = "default_speaker"
)

var maleNameTokens = []string{"huayan", "xiaoyi", "xiaofeng"}
var femaleNameTokens = []string{"xiaoyan", "xiaoxiao", "xiaomei"}

// Router maps speaker identities to a stable TTS voice, assigning new
// speakers round-robin over the configured voice pool. Once assigned, a
// speaker's voice is never reassigned within a session (until Clear).
type Router struct {
	mu sync.RWMutex

	voices  []string
	mapping map[string]string
	cursor  int
}

// New builds a Router over the given voice pool. Panics if voices is
// empty, mirroring the reference's refusal to construct a router with
// nothing to assign.
func New(voices []string) *Router {
	if len(voices) == 0 {
		panic("speaker: voice pool must not be empty")
	}
	pool := make([]string, len(voices))
	copy(pool, voices)
	return &Router{
		voices:  pool,
		mapping: make(map[string]string),
	}
}

// GetOrAssign returns speakerID's voice, assigning one on first encounter.
// Sentinel identities resolve against voice-name heuristics rather than
// plain round-robin.
func (r *Router) GetOrAssign(speakerID string) string {
	switch speakerID {
	case DefaultMale:
		return r.getOrAssignSentinel(speakerID, func() string {
			if v, ok := findByTokens(r.voices, []string{"male", "man"}, maleNameTokens); ok {
				return v
			}
			return r.voices[0]
		})
	case DefaultFemale:
		return r.getOrAssignSentinel(speakerID, func() string {
			if v, ok := findByTokens(r.voices, []string{"female", "woman"}, femaleNameTokens); ok {
				return v
			}
			if len(r.voices) >= 2 {
				return r.voices[1]
			}
			return r.voices[0]
		})
	case DefaultSpeaker:
		return r.getOrAssignSentinel(speakerID, func() string {
			if v, ok := findByTokens(r.voices, []string{"male", "man"}, maleNameTokens); ok {
				return v
			}
			return r.voices[0]
		})
	default:
		if v, ok := r.lookup(speakerID); ok {
			return v
		}
		return r.assignRoundRobin(speakerID)
	}
}

func (r *Router) getOrAssignSentinel(id string, resolve func() string) string {
	if v, ok := r.lookup(id); ok {
		return v
	}
	v := resolve()
	r.setVoice(id, v)
	return v
}

func (r *Router) lookup(speakerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.mapping[speakerID]
	return v, ok
}

func (r *Router) assignRoundRobin(speakerID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.mapping[speakerID]; ok {
		return v
	}
	v := r.voices[r.cursor%len(r.voices)]
	r.cursor = (r.cursor + 1) % len(r.voices)
	r.mapping[speakerID] = v
	return v
}

func (r *Router) setVoice(speakerID, voiceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping[speakerID] = voiceID
}

// Clear empties the mapping and resets the round-robin cursor, for a new
// session.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping = make(map[string]string)
	r.cursor = 0
}

// Count returns the number of speakers currently mapped.
func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mapping)
}

// findByTokens scans voices for a name containing any of the primary
// tokens first, then the secondary (language-specific) tokens.
func findByTokens(voices []string, primary, secondary []string) (string, bool) {
	for _, v := range voices {
		lower := strings.ToLower(v)
		for _, t := range primary {
			if strings.Contains(lower, t) {
				return v, true
			}
		}
	}
	for _, v := range voices {
		lower := strings.ToLower(v)
		for _, t := range secondary {
			if strings.Contains(lower, t) {
				return v, true
			}
		}
	}
	return "", false
}
