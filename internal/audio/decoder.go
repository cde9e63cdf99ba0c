// Package audio implements the Decoder/Sink abstraction and the dedicated
// Audio Worker goroutine that owns the realtime output callback.
//
// Decoding policy: a track is fully decoded into memory before playback
// starts. This avoids realtime decode jitter at the cost of startup
// latency, which is acceptable for local files of typical length.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"

	"github.com/llehouerou/waves/internal/waveserr"
)

// Supported file extensions.
const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOPUS = ".opus"
	extOGG  = ".ogg"
	extOGA  = ".oga"
	extM4A  = ".m4a"
	extMP4  = ".mp4"
)

// Buffer holds a fully decoded track: interleaved PCM frames at the
// format's sample rate and channel count, ready for the realtime callback
// to copy from. It never reallocates after decode.
type Buffer struct {
	Frames     [][2]float64
	Format     beep.Format
	SourcePath string
}

// Duration returns the total playable duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	return b.Format.SampleRate.D(len(b.Frames))
}

// DecodeFull opens path, decodes the entire track into memory, and closes
// the underlying file. It never leaves a streamer or file descriptor open
// past return, matching the Audio Worker's pre-decode policy.
func DecodeFull(path string) (*Buffer, error) {
	streamer, format, err := openStreamer(path)
	if err != nil {
		return nil, waveserr.Wrap(waveserr.KindDecoding, err, "decode %s", path)
	}
	defer streamer.Close()

	frames := make([][2]float64, 0, streamer.Len())
	chunk := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(chunk)
		if n > 0 {
			frames = append(frames, chunk[:n]...)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, waveserr.Wrap(waveserr.KindDecoding, err, "decode %s", path)
	}

	return &Buffer{Frames: frames, Format: format, SourcePath: path}, nil
}

// Probe opens path and reports its format and duration without retaining
// the decoded samples. Used by Song construction, which only needs
// duration, not a playable buffer.
func Probe(path string) (beep.Format, time.Duration, error) {
	streamer, format, err := openStreamer(path)
	if err != nil {
		return beep.Format{}, 0, waveserr.Wrap(waveserr.KindDecoding, err, "probe %s", path)
	}
	defer streamer.Close()
	return format, format.SampleRate.D(streamer.Len()), nil
}

// openStreamer dispatches to the per-container decoder by extension. This
// is the single generic pipeline collapsing what the source keeps as
// near-duplicate per-sample-format loops.
func openStreamer(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(path) {
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case extMP3:
		streamer, format, err = decodeGoMP3(f)
	case extFLAC:
		if skipErr := skipID3v2(f); skipErr != nil {
			f.Close()
			return nil, beep.Format{}, skipErr
		}
		streamer, format, err = flac.Decode(f)
	case extOPUS, extOGG, extOGA:
		streamer, format, err = decodeOgg(f)
	case extM4A, extMP4:
		streamer, format, _, err = decodeM4A(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}

// IsSupported reports whether path's extension has a decoder.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extOPUS, extOGG, extOGA, extM4A, extMP4:
		return true
	default:
		return false
	}
}

// skipID3v2 skips an ID3v2 tag sometimes prepended to FLAC files by taggers.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := r.Read(header)
	if err != nil {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
