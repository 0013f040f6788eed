// Package ziptest builds in-memory ZIP containers for tests.
package ziptest

import (
	"archive/zip"
	"bytes"
	"testing"
)

// Entry is a single archive member.
type Entry struct {
	Name string
	Body string
}

// Build returns the bytes of a ZIP archive holding entries in the given order.
func Build(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("creating %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			t.Fatalf("writing %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}
