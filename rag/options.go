package rag

import (
	"github.com/tsawler/docproc/docerr"
)

// ChunkOptions controls boundary selection and the post-filter.
type ChunkOptions struct {
	// RespectSentences packs whole sentences when paragraphs are not used or
	// a paragraph is too large.
	RespectSentences bool `json:"respect_sentences" yaml:"respect_sentences"`

	// RespectParagraphs packs whole blank-line-delimited paragraphs.
	// It takes priority over RespectSentences.
	RespectParagraphs bool `json:"respect_paragraphs" yaml:"respect_paragraphs"`

	// MinChunkSize drops emitted chunks shorter than this many bytes.
	// Short chunks are never merged into neighbors.
	MinChunkSize int `json:"min_chunk_size" yaml:"min_chunk_size"`

	// MaxChunkSize caps the requested chunk size when positive.
	MaxChunkSize int `json:"max_chunk_size" yaml:"max_chunk_size"`

	// Language selects the sentence splitter. Empty means detect from the text.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// DefaultChunkOptions respects paragraphs and sentences and filters nothing.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		RespectSentences:  true,
		RespectParagraphs: true,
	}
}

// Level is the boundary granularity used for packing.
type Level int

const (
	// LevelParagraph packs blank-line-delimited blocks.
	LevelParagraph Level = iota
	// LevelSentence packs sentences.
	LevelSentence
	// LevelCharacter slides a byte window snapped to spaces.
	LevelCharacter
)

// String returns a human-readable representation of the level.
func (l Level) String() string {
	switch l {
	case LevelParagraph:
		return "paragraph"
	case LevelSentence:
		return "sentence"
	case LevelCharacter:
		return "character"
	default:
		return "unknown"
	}
}

// startLevel is the granularity chosen once per call.
func (o ChunkOptions) startLevel() Level {
	switch {
	case o.RespectParagraphs:
		return LevelParagraph
	case o.RespectSentences:
		return LevelSentence
	default:
		return LevelCharacter
	}
}

// finer returns the level used to re-chunk an oversized unit.
func (o ChunkOptions) finer(l Level) Level {
	if l == LevelParagraph && o.RespectSentences {
		return LevelSentence
	}
	return LevelCharacter
}

// effectiveSize applies MaxChunkSize to the requested size.
func (o ChunkOptions) effectiveSize(chunkSize int) int {
	if o.MaxChunkSize > 0 && chunkSize > o.MaxChunkSize {
		return o.MaxChunkSize
	}
	return chunkSize
}

// validate rejects sizes that cannot make progress. An overlap equal to or
// larger than the chunk size would never advance, so it is an error.
func (o ChunkOptions) validate(chunkSize, overlap int) error {
	switch {
	case chunkSize <= 0:
		return docerr.Newf(docerr.InvalidConfig, "chunk size must be positive, got %d", chunkSize)
	case overlap < 0:
		return docerr.Newf(docerr.InvalidConfig, "overlap must not be negative, got %d", overlap)
	case overlap >= chunkSize:
		return docerr.Newf(docerr.InvalidConfig, "overlap %d must be smaller than chunk size %d", overlap, chunkSize)
	case o.MinChunkSize < 0:
		return docerr.Newf(docerr.InvalidConfig, "min chunk size must not be negative, got %d", o.MinChunkSize)
	case o.MaxChunkSize < 0:
		return docerr.Newf(docerr.InvalidConfig, "max chunk size must not be negative, got %d", o.MaxChunkSize)
	case o.MaxChunkSize > 0 && o.MinChunkSize > o.MaxChunkSize:
		return docerr.Newf(docerr.InvalidConfig, "min chunk size %d exceeds max chunk size %d", o.MinChunkSize, o.MaxChunkSize)
	}
	return nil
}
