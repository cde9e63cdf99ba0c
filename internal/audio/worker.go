package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/waves/internal/waveserr"
)

const progressInterval = 300 * time.Millisecond

// speaker.Init can only be called once per process with a fixed sample
// rate; the teacher's player.go guards this with package-level state and
// resamples any track decoded at a different rate, so the Worker does
// the same instead of re-initializing the device per track.
var (
	speakerOnce       sync.Once
	speakerSampleRate beep.SampleRate
)

const defaultBufferSize = 2048

func ensureSpeaker(sr beep.SampleRate) {
	speakerOnce.Do(func() {
		speakerSampleRate = sr
		_ = speaker.Init(sr, sr.N(time.Second/20))
	})
}

// Worker owns the realtime audio device and a dedicated goroutine. All
// interaction happens over Requests; Events flow out asynchronously to
// whatever queue the caller supplies.
type Worker struct {
	reqCh    chan Request
	eventsCh chan<- Event

	mu       sync.Mutex
	current  *bufferStreamer
	curBuf   *Buffer
	ctrl     *beep.Ctrl
	volume   float64
	paused   bool
	quit     chan struct{}
	quitOnce sync.Once
}

// NewWorker starts the Worker's goroutine and returns a handle. events
// receives Progress/StreamEnded notifications; the caller (Server Loop)
// owns draining it.
func NewWorker(events chan<- Event) *Worker {
	w := &Worker{
		reqCh:    make(chan Request),
		eventsCh: events,
		volume:   1.0,
		quit:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Close stops the worker goroutine and the audio device.
func (w *Worker) Close() {
	w.quitOnce.Do(func() { close(w.quit) })
}

// do sends req and blocks for its Response. This is the synchronous
// Server→Worker RPC the Server Loop relies on.
func (w *Worker) do(req Request) Response {
	req.Reply = make(chan Response, 1)
	select {
	case w.reqCh <- req:
	case <-w.quit:
		return Response{Err: waveserr.New(waveserr.KindChannel, "worker closed")}
	}
	select {
	case resp := <-req.Reply:
		return resp
	case <-w.quit:
		return Response{Err: waveserr.New(waveserr.KindChannel, "worker closed")}
	}
}

// Play decodes path fully, then starts playback immediately.
func (w *Worker) Play(path string) error {
	return w.do(Request{Op: OpPlay, Path: path}).Err
}

// Pause suspends output without discarding position.
func (w *Worker) Pause() error { return w.do(Request{Op: OpPause}).Err }

// Resume continues output from the paused position.
func (w *Worker) Resume() error { return w.do(Request{Op: OpResume}).Err }

// Stop halts output and releases the current buffer.
func (w *Worker) Stop() error { return w.do(Request{Op: OpStop}).Err }

// SetVolume applies a linear 0..1 scale to subsequent samples.
func (w *Worker) SetVolume(v float64) error {
	return w.do(Request{Op: OpSetVolume, Volume: v}).Err
}

// Seek moves the playback position by a signed delta.
func (w *Worker) Seek(delta time.Duration) error {
	return w.do(Request{Op: OpSeek, Delta: delta}).Err
}

// Position returns the current playback position and total duration.
func (w *Worker) Position() (time.Duration, time.Duration) {
	resp := w.do(Request{Op: OpPosition})
	return resp.Position, resp.Duration
}

func (w *Worker) run() {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	defer speaker.Clear()

	for {
		select {
		case <-w.quit:
			return
		case req := <-w.reqCh:
			req.Reply <- w.handle(req)
		case <-ticker.C:
			w.emitProgress()
		}
	}
}

func (w *Worker) handle(req Request) Response {
	switch req.Op {
	case OpPlay:
		return w.handlePlay(req.Path)
	case OpPause:
		return w.handlePause()
	case OpResume:
		return w.handleResume()
	case OpStop:
		return w.handleStop()
	case OpSetVolume:
		return w.handleSetVolume(req.Volume)
	case OpSeek:
		return w.handleSeek(req.Delta)
	case OpPosition:
		return w.handlePosition()
	default:
		return Response{Err: waveserr.New(waveserr.KindUnrecognizedCommand, "op %d", req.Op)}
	}
}

func (w *Worker) handlePlay(path string) Response {
	buf, err := DecodeFull(path)
	if err != nil {
		return Response{Err: err}
	}
	ensureSpeaker(buf.Format.SampleRate)

	w.mu.Lock()
	w.curBuf = buf
	w.mu.Unlock()

	speaker.Clear()

	streamer := newBufferStreamer(buf, w.notifyEnded)
	streamer.SetVolume(w.currentVolume())

	var playable beep.Streamer = streamer
	if buf.Format.SampleRate != speakerSampleRate {
		playable = beep.Resample(4, buf.Format.SampleRate, speakerSampleRate, streamer)
	}

	ctrl := &beep.Ctrl{Streamer: playable, Paused: false}
	vol := &effects.Volume{Streamer: ctrl, Base: 2, Volume: 0, Silent: false}

	w.mu.Lock()
	w.current = streamer
	w.ctrl = ctrl
	w.paused = false
	w.mu.Unlock()

	speaker.Play(vol)

	return Response{Duration: buf.Duration()}
}

func (w *Worker) handlePause() Response {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctrl == nil {
		return Response{Err: waveserr.New(waveserr.KindInvalidParameters, "no active stream")}
	}
	speaker.Lock()
	w.ctrl.Paused = true
	speaker.Unlock()
	w.paused = true
	return Response{}
}

func (w *Worker) handleResume() Response {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctrl == nil {
		return Response{Err: waveserr.New(waveserr.KindInvalidParameters, "no active stream")}
	}
	speaker.Lock()
	w.ctrl.Paused = false
	speaker.Unlock()
	w.paused = false
	return Response{}
}

func (w *Worker) handleStop() Response {
	speaker.Clear()
	w.mu.Lock()
	w.current = nil
	w.curBuf = nil
	w.ctrl = nil
	w.paused = false
	w.mu.Unlock()
	return Response{}
}

func (w *Worker) handleSetVolume(v float64) Response {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	w.mu.Lock()
	w.volume = v
	cur := w.current
	w.mu.Unlock()
	if cur != nil {
		cur.SetVolume(v)
	}
	return Response{}
}

func (w *Worker) handleSeek(delta time.Duration) Response {
	w.mu.Lock()
	cur := w.current
	buf := w.curBuf
	w.mu.Unlock()
	if cur == nil || buf == nil {
		return Response{Err: waveserr.New(waveserr.KindInvalidParameters, "no active stream")}
	}
	sr := buf.Format.SampleRate
	deltaFrames := sr.N(delta)
	speaker.Lock()
	cur.Seek(cur.Position() + deltaFrames)
	speaker.Unlock()
	return Response{}
}

func (w *Worker) handlePosition() Response {
	w.mu.Lock()
	cur := w.current
	buf := w.curBuf
	w.mu.Unlock()
	if cur == nil || buf == nil {
		return Response{}
	}
	return Response{
		Position: buf.Format.SampleRate.D(cur.Position()),
		Duration: buf.Duration(),
	}
}

func (w *Worker) currentVolume() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.volume
}

func (w *Worker) notifyEnded() {
	select {
	case w.eventsCh <- Event{Kind: EventStreamEnded}:
	default:
	}
}

func (w *Worker) emitProgress() {
	w.mu.Lock()
	cur := w.current
	buf := w.curBuf
	w.mu.Unlock()
	if cur == nil || buf == nil {
		return
	}
	pos := buf.Format.SampleRate.D(cur.Position())
	select {
	case w.eventsCh <- Event{Kind: EventProgress, Position: pos}:
	default:
	}
}
