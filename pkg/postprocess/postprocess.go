// Package postprocess implements spec §4.5's text post-processing:
// whitespace/punctuation normalization, user term substitution, and
// sentence-terminal punctuation insertion.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// ASCII terminal punctuation runs ("...", "!!!", "???").
	asciiPunctRun = regexp.MustCompile(`\.{2,}|!{2,}|\?{2,}`)
	// CJK terminal punctuation runs ("。。。", "！！！", "？？？").
	cjkPunctRun = regexp.MustCompile(`。{2,}|！{2,}|？{2,}`)
)

// firstRune reduces a matched punctuation run to its first character.
func firstRune(run string) string { return string([]rune(run)[:1]) }

// Processor applies the post-processing pipeline with a configurable user
// term map (literal, case-sensitive substring substitution).
type Processor struct {
	TermMap map[string]string
}

// New creates a Processor with no term substitutions.
func New() *Processor {
	return &Processor{TermMap: map[string]string{}}
}

// Process applies, in order: trim, collapse whitespace runs, collapse
// terminal-punctuation runs (ASCII and CJK), apply the term map, then add a
// sentence terminator if one is missing. targetIsCJK selects which
// terminator family to use for the final step.
func (p *Processor) Process(text string, targetIsCJK bool) string {
	out := strings.TrimSpace(text)
	out = whitespaceRun.ReplaceAllString(out, " ")
	out = asciiPunctRun.ReplaceAllStringFunc(out, firstRune)
	out = cjkPunctRun.ReplaceAllStringFunc(out, firstRune)
	out = p.applyTermMap(out)
	out = addTerminalPunctuation(out, targetIsCJK)
	return out
}

func (p *Processor) applyTermMap(text string) string {
	for from, to := range p.TermMap {
		text = strings.ReplaceAll(text, from, to)
	}
	return text
}

var asciiTerminators = []string{".", "!", "?"}
var cjkTerminators = []string{"。", "！", "？", "…"}

func addTerminalPunctuation(text string, targetIsCJK bool) string {
	if text == "" {
		return text
	}
	terminators := asciiTerminators
	if targetIsCJK {
		terminators = cjkTerminators
	}
	for _, t := range terminators {
		if strings.HasSuffix(text, t) {
			return text
		}
	}
	if targetIsCJK {
		return text + "。"
	}
	return text + "."
}
