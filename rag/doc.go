// Package rag splits normalized text into size-bounded, optionally
// overlapping chunks for embedding and retrieval pipelines.
//
// # Chunking
//
// A [Chunker] is configured once and is stateless across calls:
//
//	c, err := rag.NewChunker(1000, 100, rag.DefaultChunkOptions())
//	if err != nil {
//	    return err
//	}
//	chunks := c.Chunk(text)
//
// Sizes are measured in bytes. Text that already fits is returned whole.
//
// # Boundaries
//
// The boundary level is chosen once per call from [ChunkOptions], in
// priority order:
//
//   - paragraphs (blank-line-delimited blocks), when RespectParagraphs is set
//   - sentences, when RespectSentences is set
//   - a raw byte window snapped back to the last space
//
// Units are packed greedily. A unit larger than the chunk size is
// re-chunked at the next finer level with the same overlap.
//
// # Sentences
//
// Sentence splitting depends on the text's language. Latin and Cyrillic
// text splits on terminal punctuation followed by whitespace and an
// uppercase letter, with a naive period split as fallback. Chinese and
// Japanese split on full-width terminal punctuation. Korean and Arabic split
// on terminal punctuation followed by whitespace.
//
// # Overlap
//
// When a buffer is emitted, the next buffer starts with the emitted chunk's
// trailing overlap bytes, moved forward to a word boundary. The overlap is
// dropped when it would push the next chunk past the size limit.
//
// # Filtering
//
// Chunks shorter than MinChunkSize are dropped, never merged.
//
// # Export
//
// An [Exporter] writes described chunks as JSON Lines, a JSON array, CSV
// or TSV, for loading into a vector store:
//
//	e := rag.NewExporterWithConfig(rag.ExportConfig{Format: rag.ExportFormatCSV, IncludeHeader: true})
//	err := e.Export(rag.Describe(chunks), os.Stdout)
package rag
