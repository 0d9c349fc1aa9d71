package speaker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignVoiceIsStable(t *testing.T) {
	r := New([]string{"voice1", "voice2", "voice3"})

	require.Equal(t, "voice1", r.GetOrAssign("user1"))
	require.Equal(t, "voice2", r.GetOrAssign("user2"))
	require.Equal(t, "voice1", r.GetOrAssign("user1"))
}

func TestRoundRobin(t *testing.T) {
	r := New([]string{"voice1", "voice2"})

	require.Equal(t, "voice1", r.GetOrAssign("user1"))
	require.Equal(t, "voice2", r.GetOrAssign("user2"))
	require.Equal(t, "voice1", r.GetOrAssign("user3"))
	require.Equal(t, "voice2", r.GetOrAssign("user4"))
}

func TestDefaultMaleFemaleHeuristics(t *testing.T) {
	r := New([]string{"zh_CN-huayan-medium", "zh_CN-xiaoyan-medium", "en_US-lessac-male"})

	require.Equal(t, "en_US-lessac-male", r.GetOrAssign(DefaultMale))
	require.Equal(t, "zh_CN-xiaoyan-medium", r.GetOrAssign(DefaultFemale))
}

func TestDefaultFemaleFallsBackToSecondVoice(t *testing.T) {
	r := New([]string{"voiceA", "voiceB"})
	require.Equal(t, "voiceB", r.GetOrAssign(DefaultFemale))
}

func TestDefaultSpeakerBehavesLikeDefaultMale(t *testing.T) {
	r := New([]string{"voiceA-male", "voiceB"})
	require.Equal(t, "voiceA-male", r.GetOrAssign(DefaultSpeaker))
}

func TestClearResetsMappingAndCursor(t *testing.T) {
	r := New([]string{"voice1", "voice2"})
	r.GetOrAssign("user1")
	require.Equal(t, 1, r.Count())

	r.Clear()
	require.Equal(t, 0, r.Count())
	require.Equal(t, "voice1", r.GetOrAssign("user2"))
}
