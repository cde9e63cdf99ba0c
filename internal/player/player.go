// Package player implements the Player engine (C5): it owns the active
// Playlist, the ephemeral DirListPlaylist, and a handle to the Audio
// Worker, and exposes the play/pause/seek/volume/advance contract the
// Server Loop drives.
package player

import (
	"sync"
	"time"

	"github.com/llehouerou/waves/internal/audio"
	"github.com/llehouerou/waves/internal/dirlist"
	"github.com/llehouerou/waves/internal/playlist"
	"github.com/llehouerou/waves/internal/song"
	"github.com/llehouerou/waves/internal/waveserr"
)

// Player owns all playback state mutated by the Server Loop. It is not
// safe for concurrent use by multiple goroutines — the Server Loop is
// its only caller, matching spec.md §5's single mutator rule.
type Player struct {
	mu sync.Mutex

	worker *audio.Worker
	events chan audio.Event

	state          State
	playlistStatus PlaylistStatus
	current        *song.Song
	volume         float64 // linear 0..1

	next    bool
	repeat  bool
	shuffle bool

	playlist *playlist.Playlist
	dirlist  *dirlist.DirListPlaylist
}

// Options seed the Player's initial toggle state from configuration.
type Options struct {
	InitialNext    bool
	InitialRepeat  bool
	InitialShuffle bool
}

// New constructs a Player with a fresh Audio Worker. events is the
// unified queue the Worker posts Progress/StreamEnded notifications
// into; the caller (Server Loop) owns draining it.
func New(opts Options, events chan audio.Event) *Player {
	return &Player{
		worker:         audio.NewWorker(events),
		events:         events,
		state:          Stopped,
		playlistStatus: PlaylistStatusFile,
		volume:         1.0,
		next:           opts.InitialNext,
		repeat:         opts.InitialRepeat,
		shuffle:        opts.InitialShuffle,
		playlist:       playlist.New(),
		dirlist:        nil,
	}
}

// Close releases the Audio Worker.
func (p *Player) Close() {
	p.worker.Close()
}

// Playlist returns the active saved-playlist queue.
func (p *Player) Playlist() *playlist.Playlist { return p.playlist }

// DirList returns the current directory listing, or nil if none is active.
func (p *Player) DirList() *dirlist.DirListPlaylist {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirlist
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PlaylistStatus returns which queue type is active.
func (p *Player) PlaylistStatus() PlaylistStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playlistStatus
}

// CurrentSong returns the currently loaded song, or nil.
func (p *Player) CurrentSong() *song.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Volume returns the linear 0..1 volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Toggles returns the current next/repeat/shuffle state.
func (p *Player) Toggles() (next, repeat, shuffle bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next, p.repeat, p.shuffle
}

// Position returns elapsed and total duration from the Audio Worker.
func (p *Player) Position() (time.Duration, time.Duration) {
	return p.worker.Position()
}

// play sends song to the Audio Worker and, on success, updates state.
// State is left unchanged on failure, per spec.md §4.2.
func (p *Player) play(s song.Song) error {
	resp := p.doPlay(s.Path)
	if resp != nil {
		return resp
	}
	p.mu.Lock()
	p.state = Playing
	p.current = &s
	p.mu.Unlock()
	return nil
}

func (p *Player) doPlay(path string) error {
	if err := p.worker.Play(path); err != nil {
		return err
	}
	if err := p.worker.SetVolume(p.Volume()); err != nil {
		return err
	}
	return nil
}

// PlayFromPlaylist loads playlist.contents[i], starts playback, and
// makes i current in the play order.
func (p *Player) PlayFromPlaylist(i int) error {
	s, err := p.playlist.Song(i)
	if err != nil {
		return err
	}
	if err := p.play(s); err != nil {
		return err
	}
	if err := p.playlist.SetOrderIndexForContentsIndex(i); err != nil {
		return err
	}
	p.mu.Lock()
	p.playlistStatus = PlaylistStatusFile
	p.mu.Unlock()
	return nil
}

// PlayEntireDirectory probes path, materializes its parent directory as
// a DirListPlaylist (sorted or shuffled per the current shuffle toggle),
// locates path within it, and starts playback from there.
func (p *Player) PlayEntireDirectory(path string) error {
	s, err := song.New(path)
	if err != nil {
		return err
	}

	_, _, shuffleOn := p.Toggles()
	dl, err := dirlist.New(path, shuffleOn)
	if err != nil {
		return err
	}

	if err := p.play(s); err != nil {
		return err
	}

	p.mu.Lock()
	p.dirlist = dl
	p.playlistStatus = PlaylistStatusDirectory
	p.mu.Unlock()
	return nil
}

// PlayFromDirectory is the DirListPlaylist counterpart of PlayFromPlaylist.
func (p *Player) PlayFromDirectory(i int) error {
	p.mu.Lock()
	dl := p.dirlist
	p.mu.Unlock()
	if dl == nil {
		return waveserr.New(waveserr.KindInvalidParameters, "no active directory listing")
	}
	path, err := dl.Path(i)
	if err != nil {
		return err
	}
	s, err := song.New(path)
	if err != nil {
		return err
	}
	if err := p.play(s); err != nil {
		return err
	}
	if err := dl.SetCurrent(i); err != nil {
		return err
	}
	p.mu.Lock()
	p.playlistStatus = PlaylistStatusDirectory
	p.mu.Unlock()
	return nil
}

// Pause suspends playback.
func (p *Player) Pause() error {
	if err := p.worker.Pause(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.state == Playing {
		p.state = Paused
	}
	p.mu.Unlock()
	return nil
}

// Resume continues playback.
func (p *Player) Resume() error {
	if err := p.worker.Resume(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.state == Paused {
		p.state = Playing
	}
	p.mu.Unlock()
	return nil
}

// TogglePlay flips Playing↔Paused; Stopped is a no-op.
func (p *Player) TogglePlay() error {
	switch p.State() {
	case Playing:
		return p.Pause()
	case Paused:
		return p.Resume()
	default:
		return nil
	}
}

// SetVolume clamps v to [0,1], applies it, and persists it.
func (p *Player) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if err := p.worker.SetVolume(v); err != nil {
		return err
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	return nil
}

// Rewind seeks backward by d.
func (p *Player) Rewind(d time.Duration) error {
	return p.worker.Seek(-d)
}

// FastForward seeks forward by d.
func (p *Player) FastForward(d time.Duration) error {
	return p.worker.Seek(d)
}

// SetNext sets the next-track toggle.
func (p *Player) SetNext(on bool) {
	p.mu.Lock()
	p.next = on
	p.mu.Unlock()
}

// SetRepeat sets the repeat toggle.
func (p *Player) SetRepeat(on bool) {
	p.mu.Lock()
	p.repeat = on
	p.mu.Unlock()
}

// SetShuffle turns shuffling on or off for whichever queue is active,
// preserving the current position; turning off restores natural order.
func (p *Player) SetShuffle(on bool) {
	p.mu.Lock()
	p.shuffle = on
	status := p.playlistStatus
	p.mu.Unlock()

	if status == PlaylistStatusDirectory {
		if p.dirlist == nil {
			return
		}
		if on {
			p.dirlist.Shuffle()
		} else {
			p.dirlist.Unshuffle()
		}
		return
	}
	if on {
		p.playlist.Shuffle()
	} else {
		p.playlist.Unshuffle()
	}
}

// StepNext plays the next entry in the active queue's play order,
// without the skip-on-decode-error retry loop Advance performs — used
// by explicit user-initiated /player/play/next requests and by the
// MPRIS bridge's Next().
func (p *Player) StepNext() error {
	return p.step(1)
}

// StepPrevious is the StepNext counterpart for stepping backward.
func (p *Player) StepPrevious() error {
	return p.step(-1)
}

func (p *Player) step(delta int) error {
	status := p.PlaylistStatus()
	idx, ok := p.peekStep(status, delta)
	if !ok {
		return waveserr.New(waveserr.KindInvalidParameters, "nothing to play")
	}
	if status == PlaylistStatusDirectory {
		return p.PlayFromDirectory(idx)
	}
	return p.PlayFromPlaylist(idx)
}

// Advance implements spec.md §4.2's advancement algorithm, invoked by
// the Server Loop on PlayerDone.
func (p *Player) Advance() error {
	next, repeat, _ := p.Toggles()
	status := p.PlaylistStatus()

	if !next {
		if repeat {
			return p.replayCurrent(status)
		}
		p.mu.Lock()
		p.state = Stopped
		p.mu.Unlock()
		return nil
	}

	activeLen := p.activeLen(status)
	for step := 1; step <= activeLen; step++ {
		idx, ok := p.peekStep(status, step)
		if !ok {
			break
		}
		var err error
		if status == PlaylistStatusDirectory {
			err = p.PlayFromDirectory(idx)
		} else {
			err = p.PlayFromPlaylist(idx)
		}
		if err == nil {
			return nil
		}
		if waveserr.KindOf(err) != waveserr.KindDecoding {
			return err
		}
		// Decode error: skip to the next candidate.
	}

	p.mu.Lock()
	p.state = Stopped
	p.mu.Unlock()
	return nil
}

func (p *Player) replayCurrent(status PlaylistStatus) error {
	if status == PlaylistStatusDirectory {
		if p.dirlist == nil {
			return waveserr.New(waveserr.KindInvalidParameters, "no active directory listing")
		}
		return p.PlayFromDirectory(p.dirlist.CurrentIndex())
	}
	entry, ok := p.playlist.Current()
	if !ok {
		return waveserr.New(waveserr.KindInvalidParameters, "no current song")
	}
	return p.PlayFromPlaylist(entry.ContentsIndex)
}

func (p *Player) activeLen(status PlaylistStatus) int {
	if status == PlaylistStatusDirectory {
		if p.dirlist == nil {
			return 0
		}
		return p.dirlist.Len()
	}
	return p.playlist.Len()
}

func (p *Player) peekStep(status PlaylistStatus, step int) (int, bool) {
	if status == PlaylistStatusDirectory {
		if p.dirlist == nil {
			return 0, false
		}
		return p.dirlist.PeekAt(step)
	}
	entry, ok := p.playlist.PeekAt(step)
	if !ok {
		return 0, false
	}
	return entry.ContentsIndex, true
}
