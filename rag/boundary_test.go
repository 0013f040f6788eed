package rag

import (
	"reflect"
	"testing"

	"github.com/tsawler/docproc/langdetect"
)

func TestSplitParagraphs(t *testing.T) {
	got := SplitParagraphs("first\n\n  second line\nstill second\n \t\nthird\n\n\n")
	want := []string{"first", "second line\nstill second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitParagraphs() = %q, want %q", got, want)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
		want []string
	}{
		{
			name: "cased",
			text: "Hello world. This is Go! Right?",
			lang: langdetect.English,
			want: []string{"Hello world.", "This is Go!", "Right?"},
		},
		{
			name: "lowercase falls back to periods",
			text: "one. two. three",
			lang: langdetect.English,
			want: []string{"one.", "two.", "three"},
		},
		{
			name: "cjk without spaces",
			text: "\u4f60\u597d\u3002\u518d\u89c1\uff01",
			lang: langdetect.Chinese,
			want: []string{"\u4f60\u597d\u3002", "\u518d\u89c1\uff01"},
		},
		{
			name: "single sentence",
			text: "  no terminal punctuation  ",
			lang: langdetect.English,
			want: []string{"no terminal punctuation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text, tt.lang)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}
