// Package asrfilter implements spec §4.5's declarative hallucination
// filter: a 9-step rule pipeline, first match filters, configured from a
// versioned JSON ruleset with safe defaults.
package asrfilter

import (
	"strings"
)

// Filter evaluates ASR text against a loaded ruleset.
type Filter struct {
	cfg *Config
}

// New wraps cfg (use DefaultConfig() or LoadConfig() to obtain one). A nil
// cfg falls back to defaults.
func New(cfg *Config) *Filter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Filter{cfg: cfg}
}

// IsMeaningless runs the 9-step rule pipeline against text given prior
// context (used only by the context-aware-thanks rule). Returns true when
// the text should be filtered (rejected) as a known hallucination pattern.
func (f *Filter) IsMeaningless(text, context string) bool {
	rules := &f.cfg.Rules
	trimmed := strings.TrimSpace(text)

	// 1. Empty.
	if rules.FilterEmpty && trimmed == "" {
		return true
	}

	// 2. Single-character filler.
	for _, filler := range rules.SingleCharFillers {
		if trimmed == filler {
			return true
		}
	}

	// 3. Brackets of any kind.
	if rules.FilterBrackets && containsAny(trimmed, "()（）[]【】") {
		return true
	}

	textLower := strings.ToLower(trimmed)
	contextLower := strings.ToLower(strings.TrimSpace(context))

	// 4. Context-aware thanks.
	if rules.ContextAwareThanks.Enabled {
		isThanks := false
		for _, pattern := range rules.ContextAwareThanks.ThanksPatterns {
			p := strings.ToLower(pattern)
			if textLower == p || strings.HasPrefix(textLower, p) {
				isThanks = true
				break
			}
		}
		if isThanks {
			if contextLower == "" || len([]rune(contextLower)) < rules.ContextAwareThanks.MinContextLength {
				return true
			}
			hasIndicator := false
			for _, ind := range rules.ContextAwareThanks.ContextIndicators {
				if strings.Contains(contextLower, strings.ToLower(ind)) {
					hasIndicator = true
					break
				}
			}
			if !hasIndicator {
				return true
			}
		}
	}

	// 5. Exact case-insensitive match.
	for _, pattern := range rules.ExactMatches {
		if strings.EqualFold(trimmed, pattern) {
			return true
		}
	}

	// 6. Contains-substring match.
	for _, pattern := range rules.ContainsPatterns {
		if strings.Contains(textLower, strings.ToLower(pattern)) {
			return true
		}
	}

	// 7. Composite "contains all of" groups.
	for _, group := range rules.AllContainsPatterns {
		allMatch := true
		for _, p := range group.Patterns {
			if !strings.Contains(textLower, strings.ToLower(p)) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return true
		}
	}

	// 8. Subtitle-related patterns.
	if strings.Contains(textLower, "字幕") {
		for _, pattern := range rules.SubtitlePatterns {
			if strings.Contains(textLower, strings.ToLower(pattern)) {
				return true
			}
		}
		if strings.Contains(textLower, "中文字幕志愿者") || strings.Contains(textLower, "中文字幕志願者") ||
			(strings.Contains(textLower, "字幕志愿者") && len([]rune(textLower)) > rules.SubtitleVolunteerMinLen) {
			return true
		}
	}

	// 9. Meaningless substrings surrounded by bracket characters.
	for _, pattern := range rules.MeaninglessPatterns {
		p := strings.ToLower(pattern)
		pos := strings.Index(textLower, p)
		if pos < 0 {
			continue
		}
		before := textLower[:pos]
		afterStart := pos + len(p)
		after := ""
		if afterStart < len(textLower) {
			after = textLower[afterStart:]
		}
		if hasBracketWithin(before, 10, true) || hasBracketWithin(after, 50, false) {
			return true
		}
	}

	return false
}

func containsAny(s, chars string) bool {
	for _, c := range chars {
		if strings.ContainsRune(s, c) {
			return true
		}
	}
	return false
}

// hasBracketWithin checks the last (reversed=true) or first n runes of s
// for an opening/closing bracket character, mirroring the reference's
// "within 10 chars before or 50 chars after" proximity check.
func hasBracketWithin(s string, n int, reversed bool) bool {
	runes := []rune(s)
	openers := "([（"
	closers := ")]）"

	check := func(r rune) bool {
		if reversed {
			return strings.ContainsRune(openers, r)
		}
		return strings.ContainsRune(closers, r)
	}

	if reversed {
		for i := len(runes) - 1; i >= 0 && len(runes)-i <= n; i-- {
			if check(runes[i]) {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(runes) && i < n; i++ {
		if check(runes[i]) {
			return true
		}
	}
	return false
}
