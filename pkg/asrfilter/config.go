package asrfilter

import (
	"encoding/json"
	"os"
)

// ContextAwareThanks configures the rule that filters a thanks-pattern
// match unless the preceding context indicates it is genuine.
type ContextAwareThanks struct {
	Enabled            bool     `json:"enabled"`
	ThanksPatterns     []string `json:"thanks_patterns"`
	MinContextLength   int      `json:"min_context_length"`
	ContextIndicators  []string `json:"context_indicators"`
}

// AllContainsPattern requires every pattern in the group to match.
type AllContainsPattern struct {
	Patterns []string `json:"patterns"`
}

// Rules is the declarative ruleset of spec §4.5's hallucination filter.
type Rules struct {
	FilterEmpty              bool                 `json:"filter_empty"`
	SingleCharFillers         []string             `json:"single_char_fillers"`
	FilterBrackets            bool                 `json:"filter_brackets"`
	ContextAwareThanks        ContextAwareThanks   `json:"context_aware_thanks"`
	ExactMatches              []string             `json:"exact_matches"`
	ContainsPatterns          []string             `json:"contains_patterns"`
	AllContainsPatterns       []AllContainsPattern `json:"all_contains_patterns"`
	SubtitlePatterns          []string             `json:"subtitle_patterns"`
	SubtitleVolunteerMinLen   int                  `json:"subtitle_volunteer_min_length"`
	MeaninglessPatterns       []string             `json:"meaningless_patterns"`
}

// Config wraps Rules, matching the versioned-document shape spec §4.5
// describes.
type Config struct {
	Version int   `json:"version"`
	Rules   Rules `json:"rules"`
}

// DefaultConfig returns sensible defaults used when no rules file is
// present, covering the filler words, subtitle/credit patterns, and
// thanks-in-context heuristics this module's reference carried.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Rules: Rules{
			FilterEmpty: true,
			SingleCharFillers: []string{
				"嗯", "啊", "呃", "额", "哦", "噢", "诶", "欸",
			},
			FilterBrackets: true,
			ContextAwareThanks: ContextAwareThanks{
				Enabled: true,
				ThanksPatterns: []string{
					"谢谢大家", "感謝大家", "感谢大家", "感谢观看", "感謝觀看",
				},
				MinContextLength: 10,
				ContextIndicators: []string{
					"再见", "結束", "结束", "下次", "拜拜", "bye", "goodbye",
				},
			},
			ExactMatches: []string{
				"thank you", "thanks",
			},
			ContainsPatterns: []string{
				"thank you for watching", "thanks for watching",
				"謝謝大家收看", "谢谢大家收看", "謝謝大家觀看", "谢谢大家观看",
				"词曲:", "詞曲:",
			},
			AllContainsPatterns: []AllContainsPattern{
				{Patterns: []string{"字幕", "j chong"}},
			},
			SubtitlePatterns: []string{
				"字幕:", "字幕：", "字幕——", "字幕 -", "字幕制作者", "词曲:", "詞曲:",
			},
			SubtitleVolunteerMinLen: 6,
			MeaninglessPatterns: []string{
				"titled by", "title:", "subtitle:", "source:",
			},
		},
	}
}

// LoadConfig loads a ruleset from the single file at path, falling back to
// DefaultConfig if path is empty or the file does not exist. Any other read
// error, and any JSON decode error, is returned.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
