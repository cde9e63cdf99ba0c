package dirlist

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewSortsAlphabeticallyAndLocatesInitiator(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.flac", "a.flac", "b.mp3", "ignore.txt")

	d, err := New(filepath.Join(dir, "b.mp3"), false)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 3 {
		t.Fatalf("expected 3 playable files, got %d", d.Len())
	}
	want := []string{
		filepath.Join(dir, "a.flac"),
		filepath.Join(dir, "b.mp3"),
		filepath.Join(dir, "c.flac"),
	}
	for i, p := range want {
		got, _ := d.Path(i)
		if got != p {
			t.Fatalf("path[%d] = %q, want %q", i, got, p)
		}
	}
	if d.CurrentIndex() != 1 {
		t.Fatalf("expected current index 1 for b.mp3, got %d", d.CurrentIndex())
	}
}

func TestPeekAtWrapsModularly(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.flac", "b.flac", "c.flac")

	d, err := New(filepath.Join(dir, "c.flac"), false)
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsEnd() {
		t.Fatal("expected is_end at last path")
	}
	idx, ok := d.PeekAt(1)
	if !ok || idx != 0 {
		t.Fatalf("expected peek wrap to index 0, got %d ok=%v", idx, ok)
	}
}
