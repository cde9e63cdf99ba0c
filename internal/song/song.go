// Package song defines the Song value type and the probing logic that
// builds one from a file on disk.
package song

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/llehouerou/waves/internal/audio"
	"github.com/llehouerou/waves/internal/waveserr"
)

// Song is an immutable description of a playable track: its path plus
// metadata cheap enough to hold for every entry in a Playlist.
type Song struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// New probes path: it reads tags via dhowden/tag and measures duration
// by opening the file's decoder header, without decoding the full track
// into memory (that only happens when the Audio Worker actually plays
// it). Returns a DecodingError if the file can't be opened or has no
// registered decoder.
func New(path string) (Song, error) {
	if !audio.IsSupported(path) {
		return Song{}, waveserr.New(waveserr.KindDecoding, "unsupported format: %s", filepath.Ext(path))
	}

	s := Song{Path: path, Title: fallbackTitle(path)}

	if f, err := os.Open(path); err == nil {
		if m, err := tag.ReadFrom(f); err == nil {
			if t := strings.TrimSpace(m.Title()); t != "" {
				s.Title = t
			}
			s.Artist = strings.TrimSpace(m.Artist())
			s.Album = strings.TrimSpace(m.Album())
		}
		f.Close()
	}

	_, dur, err := audio.Probe(path)
	if err != nil {
		return Song{}, err
	}
	s.Duration = dur

	return s, nil
}

func fallbackTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
