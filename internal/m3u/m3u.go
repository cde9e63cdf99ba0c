// Package m3u is a pure codec for the M3U playlist format: parse lines,
// accept Path entries only, resolve relative paths against a working
// directory, and write paths back verbatim.
package m3u

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/waves/internal/waveserr"
)

// Read parses r as M3U, resolving relative paths against cwd. Comment
// lines (starting with '#') are ignored. Entries that don't exist or
// can't be opened are silently skipped, matching spec.md §4.6.
func Read(r io.Reader, cwd string) []string {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		path := line
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// ReadFile opens path and parses it as M3U. A missing file yields an
// empty list, not an error, since an absent playlist is a valid empty
// start state for the daemon.
func ReadFile(path, cwd string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, waveserr.Wrap(waveserr.KindIO, err, "open playlist %s", path)
	}
	defer f.Close()
	return Read(f, cwd), nil
}

// Write emits each path as a verbatim Path entry, one per line.
func Write(w io.Writer, paths []string) error {
	bw := bufio.NewWriter(w)
	for _, p := range paths {
		if _, err := bw.WriteString(p + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile rewrites path with paths, creating or truncating it.
func WriteFile(path string, paths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return waveserr.Wrap(waveserr.KindIO, err, "write playlist %s", path)
	}
	defer f.Close()
	return Write(f, paths)
}
