package asrfilter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newDefaultFilter() *Filter { return New(nil) }

func TestBracketsFiltering(t *testing.T) {
	f := newDefaultFilter()
	require.True(t, f.IsMeaningless("(笑)", ""))
	require.True(t, f.IsMeaningless("（笑）", ""))
	require.True(t, f.IsMeaningless("[字幕]", ""))
	require.True(t, f.IsMeaningless("【字幕】", ""))
	require.False(t, f.IsMeaningless("你好", ""))
}

func TestVideoEndSubtitles(t *testing.T) {
	f := newDefaultFilter()
	require.True(t, f.IsMeaningless("謝謝大家收看", ""))
	require.True(t, f.IsMeaningless("谢谢大家收看", ""))
	require.True(t, f.IsMeaningless("thank you for watching", ""))
	require.False(t, f.IsMeaningless("谢谢你的帮助", ""))
}

func TestSubtitleMarkers(t *testing.T) {
	f := newDefaultFilter()
	require.True(t, f.IsMeaningless("字幕:J Chong", ""))
	require.True(t, f.IsMeaningless("字幕 j chong", ""))
	require.True(t, f.IsMeaningless("字幕志愿者 杨茜茜", ""))
	require.True(t, f.IsMeaningless("詞曲:rol", ""))
	require.True(t, f.IsMeaningless("词曲:rol", ""))
	require.False(t, f.IsMeaningless("这是字幕", ""))
}

func TestEmptyText(t *testing.T) {
	f := newDefaultFilter()
	require.True(t, f.IsMeaningless("", ""))
	require.True(t, f.IsMeaningless("   ", ""))
	require.False(t, f.IsMeaningless("你好世界", ""))
}

func TestFillerWords(t *testing.T) {
	f := newDefaultFilter()
	for _, w := range []string{"嗯", "啊", "呃", "额", "哦", "噢", "诶", "欸"} {
		require.True(t, f.IsMeaningless(w, ""), "expected %q to be filtered", w)
	}
	require.False(t, f.IsMeaningless("嗯嗯", ""))
	require.False(t, f.IsMeaningless("嗯，好的", ""))
}

func TestContextAwareThanks(t *testing.T) {
	f := newDefaultFilter()
	require.True(t, f.IsMeaningless("谢谢大家", ""), "no context at all should be filtered")
	require.True(t, f.IsMeaningless("谢谢大家", "一些无关的短上下文"), "short context without indicator should be filtered")
	require.False(t, f.IsMeaningless("谢谢大家", "我们今天的分享就到这里，下次再见，谢谢大家"))
}

func TestDefaultConfigLoadsWhenPathMissing(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("/nonexistent/path/asr_filters.json")
	require.NoError(t, err)
	require.NotNil(t, cfg)
}
