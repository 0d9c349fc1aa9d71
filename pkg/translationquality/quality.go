// Package translationquality implements spec §4.5's translation quality
// repair: collapsing repeated-word runs and detecting/repairing suspicious
// output.
package translationquality

import (
	"strings"
	"unicode"
)

// Checker repairs obviously broken NMT output. Disabling it returns the
// input unchanged, matching the reference behavior of a toggleable quality
// gate.
type Checker struct {
	Enabled bool
}

func New() *Checker { return &Checker{Enabled: true} }

// CheckAndFix applies, in sequence: repeated-sequence collapse, then, if
// the result is still suspicious for targetLang, an attempted punctuation
// repair — falling back to an empty string (a drop signal) if it remains
// suspicious.
func (c *Checker) CheckAndFix(tgtText, targetLang string) string {
	if !c.Enabled {
		return tgtText
	}

	result := RemoveRepetitiveSequences(tgtText)
	if IsSuspiciousQuality(result, targetLang) {
		result = c.attemptFix(result, targetLang)
	}
	return result
}

// RemoveRepetitiveSequences collapses any word that repeats more than
// twice consecutively down to a single occurrence, e.g. "to to to to" →
// "to".
func RemoveRepetitiveSequences(text string) string {
	words := strings.Fields(text)
	var out []string

	i := 0
	for i < len(words) {
		word := words[i]
		count := 1
		for i+count < len(words) && words[i+count] == word {
			count++
		}
		if count > 2 {
			out = append(out, word)
		} else {
			out = append(out, words[i:i+count]...)
		}
		i += count
	}

	return strings.Join(out, " ")
}

// IsSuspiciousQuality classifies text as suspicious per target language:
// empty text always; for "en"/"en-US", a non-letter ratio above 0.7 among
// non-whitespace runes; for "zh"/"zh-CN", no Han code points present, or
// fewer than 3 runes total. Non-empty text in any other target language is
// never classified as suspicious.
func IsSuspiciousQuality(text string, targetLang string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	switch targetLang {
	case "en", "en-US":
		var nonAlpha, total int
		for _, r := range text {
			if unicode.IsSpace(r) {
				continue
			}
			total++
			if !unicode.IsLetter(r) {
				nonAlpha++
			}
		}
		if total > 0 {
			return float64(nonAlpha)/float64(total) > 0.7
		}
	case "zh", "zh-CN":
		hasCJK := false
		for _, r := range trimmed {
			if isChineseChar(r) {
				hasCJK = true
				break
			}
		}
		if !hasCJK {
			return true
		}
		if len([]rune(trimmed)) < 3 {
			return true
		}
	}

	return false
}

func (c *Checker) attemptFix(text, targetLang string) string {
	result := RemoveExcessivePunctuation(text)
	if IsSuspiciousQuality(result, targetLang) {
		return ""
	}
	return result
}

var punctuationRuns = [][2]string{
	{"...", "."},
	{"!!!", "!"},
	{"???", "?"},
	{"。。。", "。"},
	{"！！！", "！"},
	{"？？？", "？"},
}

// RemoveExcessivePunctuation collapses known runs of repeated terminal
// punctuation.
func RemoveExcessivePunctuation(text string) string {
	for _, run := range punctuationRuns {
		text = strings.ReplaceAll(text, run[0], run[1])
	}
	return text
}

func isChineseChar(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF)
}
