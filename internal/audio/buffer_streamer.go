package audio

import (
	"math"
	"sync"
	"sync/atomic"
)

// bufferStreamer implements beep.Streamer over a fully decoded Buffer. It
// is fed to speaker.Play and invoked from the realtime audio callback, so
// Stream must never allocate and must only ever take the short mu lock.
//
// cursor advances monotonically in frames and is also read by Position()
// from the Server Loop's goroutine, hence the atomic rather than a plain
// int guarded only by mu: the realtime callback cannot afford to contend
// with a caller blocked elsewhere.
type bufferStreamer struct {
	buf    *Buffer
	cursor atomic.Int64
	volume atomic.Uint64 // math.Float64bits of the linear scale

	mu      sync.Mutex
	ended   bool
	onEnded func()

	setVolumeCh chan float64
}

func newBufferStreamer(buf *Buffer, onEnded func()) *bufferStreamer {
	s := &bufferStreamer{
		buf:         buf,
		onEnded:     onEnded,
		setVolumeCh: make(chan float64, 1),
	}
	s.volume.Store(math.Float64bits(1.0))
	return s
}

// Stream is the realtime callback body. It:
//  1. polls for a pending SetVolume without blocking;
//  2. copies scale*sample from the buffer into samples;
//  3. on exhaustion, clamps the cursor and fires onEnded exactly once.
func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	select {
	case v := <-s.setVolumeCh:
		s.volume.Store(math.Float64bits(v))
	default:
	}

	scale := math.Float64frombits(s.volume.Load())
	cur := int(s.cursor.Load())
	total := len(s.buf.Frames)

	if cur >= total {
		s.fireEnded()
		return 0, false
	}

	n = copy(samples, s.buf.Frames[cur:])
	if scale != 1.0 {
		for i := 0; i < n; i++ {
			samples[i][0] *= scale
			samples[i][1] *= scale
		}
	}
	cur += n
	s.cursor.Store(int64(cur))

	if cur >= total {
		s.fireEnded()
	}
	return n, true
}

func (s *bufferStreamer) fireEnded() {
	s.mu.Lock()
	already := s.ended
	s.ended = true
	s.mu.Unlock()
	if !already && s.onEnded != nil {
		s.onEnded()
	}
}

func (s *bufferStreamer) Err() error { return nil }

// SetVolume enqueues a volume change. If the callback hasn't drained the
// previous one yet, that pending value is discarded in favor of v — matches
// the non-blocking contract in the realtime path, never stalls the caller.
func (s *bufferStreamer) SetVolume(v float64) {
	select {
	case s.setVolumeCh <- v:
	default:
		select {
		case <-s.setVolumeCh:
		default:
		}
		select {
		case s.setVolumeCh <- v:
		default:
		}
	}
}

// Position returns the current frame cursor.
func (s *bufferStreamer) Position() int {
	return int(s.cursor.Load())
}

// Seek moves the cursor to an arbitrary frame, clamped to the buffer.
func (s *bufferStreamer) Seek(frame int) {
	if frame < 0 {
		frame = 0
	}
	if frame > len(s.buf.Frames) {
		frame = len(s.buf.Frames)
	}
	s.cursor.Store(int64(frame))
}
