// Package dirlist implements the ephemeral playlist materialized when
// playback starts from a directory browse rather than a saved playlist.
package dirlist

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/llehouerou/waves/internal/audio"
	"github.com/llehouerou/waves/internal/waveserr"
)

// DirListPlaylist is a flat list of file paths plus a current index.
type DirListPlaylist struct {
	paths   []string
	current int // -1 if nothing active
}

// New builds a DirListPlaylist from every playable file in the directory
// containing initiatingPath, sorted alphabetically or shuffled when shuffle is true, and
// locates initiatingPath to become current.
func New(initiatingPath string, shuffle bool) (*DirListPlaylist, error) {
	dir := filepath.Dir(initiatingPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, waveserr.Wrap(waveserr.KindIO, err, "read directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if audio.IsSupported(full) {
			paths = append(paths, full)
		}
	}

	if shuffle {
		rand.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })
	} else {
		sort.Strings(paths)
	}

	d := &DirListPlaylist{paths: paths, current: -1}
	for i, p := range paths {
		if p == initiatingPath {
			d.current = i
			break
		}
	}
	if d.current == -1 {
		return nil, waveserr.New(waveserr.KindInvalidParameters, "initiating path %s not found in directory listing", initiatingPath)
	}
	return d, nil
}

// Len returns the number of paths.
func (d *DirListPlaylist) Len() int { return len(d.paths) }

// CurrentIndex returns the current index, or -1 if none.
func (d *DirListPlaylist) CurrentIndex() int { return d.current }

// Path returns the path at index i.
func (d *DirListPlaylist) Path(i int) (string, error) {
	if i < 0 || i >= len(d.paths) {
		return "", waveserr.New(waveserr.KindInvalidParameters, "index %d out of range", i)
	}
	return d.paths[i], nil
}

// Paths returns a copy of the full path list.
func (d *DirListPlaylist) Paths() []string {
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// SetCurrent sets the current index directly, bounds-checked.
func (d *DirListPlaylist) SetCurrent(i int) error {
	if i < 0 || i >= len(d.paths) {
		return waveserr.New(waveserr.KindInvalidParameters, "index %d out of range", i)
	}
	d.current = i
	return nil
}

// PeekAt returns the index reached by stepping step positions forward
// from current, wrapping modularly, and ok=false if current is unset.
func (d *DirListPlaylist) PeekAt(step int) (int, bool) {
	n := len(d.paths)
	if d.current < 0 || n == 0 {
		return 0, false
	}
	return ((d.current+step)%n + n) % n, true
}

// IsEnd reports whether current is unset or the next step would wrap.
func (d *DirListPlaylist) IsEnd() bool {
	if d.current < 0 {
		return true
	}
	return (d.current+1)%len(d.paths) == 0
}

// Shuffle randomizes order while keeping the current path current.
func (d *DirListPlaylist) Shuffle() {
	n := len(d.paths)
	if n <= 1 {
		return
	}
	var currentPath string
	if d.current >= 0 {
		currentPath = d.paths[d.current]
	}
	rand.Shuffle(n, func(i, j int) { d.paths[i], d.paths[j] = d.paths[j], d.paths[i] })
	if currentPath != "" {
		for i, p := range d.paths {
			if p == currentPath {
				d.current = i
				break
			}
		}
	}
}

// Unshuffle restores alphabetical order while keeping the current path current.
func (d *DirListPlaylist) Unshuffle() {
	var currentPath string
	if d.current >= 0 {
		currentPath = d.paths[d.current]
	}
	sort.Strings(d.paths)
	if currentPath != "" {
		for i, p := range d.paths {
			if p == currentPath {
				d.current = i
				break
			}
		}
	}
}
