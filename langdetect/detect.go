// Package langdetect identifies the language of a text with script checks
// and stop-word counting. It is a deterministic heuristic and exposes no
// confidence score.
package langdetect

import (
	"strings"
	"unicode"
)

// Language codes returned by Detect.
const (
	Chinese  = "zh"
	Japanese = "ja"
	Korean   = "ko"
	Russian  = "ru"
	Arabic   = "ar"
	English  = "en"
	Spanish  = "es"
	French   = "fr"
	German   = "de"
)

// scriptRule maps a set of code point ranges to a language. Rules are
// checked in order and the first script present anywhere in the text wins.
type scriptRule struct {
	lang   string
	ranges [][2]rune
}

var scriptRules = []scriptRule{
	{Chinese, [][2]rune{{0x4E00, 0x9FFF}, {0x3400, 0x4DBF}, {0x20000, 0x2A6DF}}},
	{Japanese, [][2]rune{{0x3040, 0x309F}, {0x30A0, 0x30FF}}},
	{Korean, [][2]rune{{0xAC00, 0xD7AF}}},
	{Russian, [][2]rune{{0x0400, 0x04FF}}},
	{Arabic, [][2]rune{{0x0600, 0x06FF}}},
}

// stopWords lists common function words per Latin-script language, in
// tie-break order. English is the default and must stay first.
var stopWords = []struct {
	lang  string
	words map[string]struct{}
}{
	{English, set("the", "and", "of", "to", "a", "in", "is", "it", "you", "that")},
	{Spanish, set("el", "la", "de", "que", "y", "a", "en", "un", "es", "se")},
	{French, set("le", "de", "et", "\u00e0", "un", "il", "\u00eatre", "les", "en", "avoir")},
	{German, set("der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich")},
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Detect returns the language code for text. Non-Latin scripts are checked
// first; Latin text is scored by whole-word stop-word hits. A tie or no
// signal yields English.
func Detect(text string) string {
	if lang := detectScript(text); lang != "" {
		return lang
	}
	return detectLatin(text)
}

func detectScript(text string) string {
	for _, rule := range scriptRules {
		for _, r := range text {
			if inRanges(r, rule.ranges) {
				return rule.lang
			}
		}
	}
	return ""
}

func inRanges(r rune, ranges [][2]rune) bool {
	for _, rg := range ranges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// Scores returns the stop-word hit count per Latin-script language.
func Scores(text string) map[string]int {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})

	scores := make(map[string]int, len(stopWords))
	for _, sw := range stopWords {
		n := 0
		for _, w := range words {
			if _, ok := sw.words[w]; ok {
				n++
			}
		}
		scores[sw.lang] = n
	}
	return scores
}

func detectLatin(text string) string {
	scores := Scores(text)

	best, bestScore, tied := English, 0, false
	for _, sw := range stopWords {
		s := scores[sw.lang]
		switch {
		case s > bestScore:
			best, bestScore, tied = sw.lang, s, false
		case s == bestScore && s > 0:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return English
	}
	return best
}
