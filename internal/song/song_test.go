package song

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llehouerou/waves/internal/waveserr"
)

func TestNewRejectsUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(path)
	if waveserr.KindOf(err) != waveserr.KindDecoding {
		t.Fatalf("KindOf(err) = %v, want KindDecoding", waveserr.KindOf(err))
	}
}

func TestFallbackTitleStripsDirectoryAndExtension(t *testing.T) {
	got := fallbackTitle("/music/Artist/01 - Track Name.flac")
	if got != "01 - Track Name" {
		t.Fatalf("fallbackTitle() = %q", got)
	}
}
