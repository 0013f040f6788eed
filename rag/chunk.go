package rag

import (
	"strings"
	"unicode/utf8"
)

// Chunk is a segment with basic statistics, for callers that want more than
// the bare text.
type Chunk struct {
	// Index is the position of this chunk in the sequence (0-indexed).
	Index int `json:"index"`

	// Text is the chunk content.
	Text string `json:"text"`

	// ByteCount is len(Text), the unit chunk sizes are measured in.
	ByteCount int `json:"byte_count"`

	// CharCount is the number of runes in Text.
	CharCount int `json:"char_count"`

	// WordCount is the number of whitespace-separated words.
	WordCount int `json:"word_count"`

	// EstimatedTokens is a rough token estimate (bytes/4).
	EstimatedTokens int `json:"estimated_tokens"`
}

// Describe wraps chunk texts with their statistics.
func Describe(texts []string) []Chunk {
	out := make([]Chunk, len(texts))
	for i, t := range texts {
		out[i] = Chunk{
			Index:           i,
			Text:            t,
			ByteCount:       len(t),
			CharCount:       utf8.RuneCountInString(t),
			WordCount:       countWords(t),
			EstimatedTokens: len(t) / 4,
		}
	}
	return out
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
