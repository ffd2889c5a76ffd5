package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChangedReportsOnlyGenuineEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.fip")
	if err := os.WriteFile(path, []byte("x: 1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	h := New()
	if !h.Changed(path) {
		t.Fatalf("first sighting should report changed")
	}
	if h.Changed(path) {
		t.Fatalf("unmodified re-save should not report changed")
	}
	if err := os.WriteFile(path, []byte("x: 2\n"), 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}
	if !h.Changed(path) {
		t.Fatalf("edited content should report changed")
	}
}

func TestChangedOnUnreadableFileReportsChanged(t *testing.T) {
	h := New()
	if !h.Changed(filepath.Join(t.TempDir(), "missing.fip")) {
		t.Fatalf("an unreadable file should report changed so the caller surfaces the error")
	}
}
