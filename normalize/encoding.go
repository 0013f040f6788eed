package normalize

import "strings"

// mojibake maps UTF-8 sequences that were decoded as Windows-1252 back to
// the intended glyph. Each key is the Windows-1252 reading of the glyph's
// UTF-8 bytes; bytes Windows-1252 leaves undefined read as the C1 control
// of the same value.
var mojibake = strings.NewReplacer(
	// General punctuation, E2 80 xx.
	"\u00e2\u20ac\u2122", "\u2019", // ’
	"\u00e2\u20ac\u02dc", "\u2018", // ‘
	"\u00e2\u20ac\u0153", "\u201c", // “
	"\u00e2\u20ac\u009d", "\u201d", // ”
	"\u00e2\u20ac\u201d", "\u2014", // —
	"\u00e2\u20ac\u201c", "\u2013", // –
	"\u00e2\u20ac\u00a2", "\u2022", // •
	"\u00e2\u20ac\u00a6", "\u2026", // …
	"\u00e2\u20ac\u00ba", "\u203a", // ›
	"\u00e2\u20ac\u00b9", "\u2039", // ‹
	"\u00e2\u201a\u00ac", "\u20ac", // €
	"\u00e2\u201e\u00a2", "\u2122", // ™

	// Latin-1 supplement, C3 xx.
	"\u00c3\u00a1", "\u00e1", // á
	"\u00c3\u00a9", "\u00e9", // é
	"\u00c3\u00ad", "\u00ed", // í
	"\u00c3\u00b3", "\u00f3", // ó
	"\u00c3\u00ba", "\u00fa", // ú
	"\u00c3\u00b1", "\u00f1", // ñ
	"\u00c3\u00bc", "\u00fc", // ü
	"\u00c3\u00b6", "\u00f6", // ö
	"\u00c3\u00a4", "\u00e4", // ä
	"\u00c3\u00a8", "\u00e8", // è
	"\u00c3\u00a7", "\u00e7", // ç
	"\u00c3\u00aa", "\u00ea", // ê
	"\u00c3\u00a2", "\u00e2", // â
	"\u00c3\u00b4", "\u00f4", // ô
	"\u00c3\u00ae", "\u00ee", // î
	"\u00c3\u00ab", "\u00eb", // ë
	"\u00c3\u00af", "\u00ef", // ï
	"\u00c3\u00b9", "\u00f9", // ù
	"\u00c3\u0178", "\u00df", // ß
	"\u00c3\u2030", "\u00c9", // É
	"\u00c3\u2021", "\u00c7", // Ç
	"\u00c3\u2013", "\u00d6", // Ö
	"\u00c3\u0153", "\u00dc", // Ü
	"\u00c3\u201e", "\u00c4", // Ä

	// Latin-1 symbols, C2 xx.
	"\u00c2\u00a9", "\u00a9", // ©
	"\u00c2\u00ae", "\u00ae", // ®
	"\u00c2\u00b0", "\u00b0", // °
	"\u00c2\u00ab", "\u00ab", // «
	"\u00c2\u00bb", "\u00bb", // »
	"\u00c2\u00a3", "\u00a3", // £
)

// FixEncoding repairs a fixed set of common mis-decoded sequences. It is a
// best-effort table lookup, not encoding detection.
func FixEncoding(text string) string {
	if !strings.ContainsAny(text, "\u00e2\u00c3\u00c2") {
		return text
	}
	return mojibake.Replace(text)
}
