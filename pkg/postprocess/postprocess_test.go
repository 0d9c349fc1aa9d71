package postprocess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessAddsAsciiTerminator(t *testing.T) {
	p := New()
	require.Equal(t, "hello world.", p.Process("hello world", false))
}

func TestProcessAddsCJKTerminator(t *testing.T) {
	p := New()
	require.Equal(t, "你好世界。", p.Process("你好世界", true))
}

func TestProcessLeavesExistingTerminator(t *testing.T) {
	p := New()
	require.Equal(t, "hello!", p.Process("hello!", false))
	require.Equal(t, "你好！", p.Process("你好！", true))
}

func TestProcessCollapsesWhitespaceAndPunctuationRuns(t *testing.T) {
	p := New()
	require.Equal(t, "wait.", p.Process("  wait...  ", false))
	require.Equal(t, "等等。", p.Process("等等。。。", true))
}

func TestProcessAppliesTermMap(t *testing.T) {
	p := New()
	p.TermMap["Gonna"] = "going to"
	require.Equal(t, "I'm going to leave.", p.Process("I'm Gonna leave", false))
}

func TestProcessIsIdempotent(t *testing.T) {
	p := New()
	p.TermMap["foo"] = "bar"
	once := p.Process("  foo   bar!!!  ", false)
	twice := p.Process(once, false)
	require.Equal(t, once, twice)
}
