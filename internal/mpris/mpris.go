//go:build linux

// Package mpris is an optional, config-gated second control surface:
// it exposes the daemon's Player over D-Bus/MPRIS alongside the Unix
// socket, reusing the teacher's adapter shape against the narrower
// method set player.Player actually exposes.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/waves/internal/player"
)

// Adapter connects a *player.Player to MPRIS over D-Bus.
type Adapter struct {
	p      *player.Player
	server *server.Server
}

// New creates and starts a new MPRIS adapter bound to p.
func New(p *player.Player) (*Adapter, error) {
	a := &Adapter{p: p}

	root := &rootAdapter{}
	pa := &playerAdapter{p: p}

	a.server = server.NewServer("waves", root, pa)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }
func (r *rootAdapter) Quit() error  { return nil }

func (r *rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }
func (r *rootAdapter) Identity() (string, error)   { return "Waves", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the
// optional LoopStatus/Shuffle interfaces, delegating to player.Player.
type playerAdapter struct {
	p *player.Player
}

func (a *playerAdapter) Next() error     { return a.p.StepNext() }
func (a *playerAdapter) Previous() error { return a.p.StepPrevious() }
func (a *playerAdapter) Pause() error    { return a.p.Pause() }
func (a *playerAdapter) PlayPause() error { return a.p.TogglePlay() }
func (a *playerAdapter) Stop() error {
	return a.p.Pause() // core Player has no hard Stop distinct from Pause
}

func (a *playerAdapter) Play() error {
	if a.p.State() == player.Stopped {
		return a.p.StepNext()
	}
	return a.p.TogglePlay()
}

func (a *playerAdapter) Seek(offset types.Microseconds) error {
	return a.p.FastForward(time.Duration(offset) * time.Microsecond)
}

func (a *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil // absolute seek-to is not part of the core Player contract
}

//nolint:revive // Method name required by interface.
func (a *playerAdapter) OpenUri(uri string) error {
	return a.p.PlayEntireDirectory(uri)
}

func (a *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch a.p.State() {
	case player.Playing:
		return types.PlaybackStatusPlaying, nil
	case player.Paused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (a *playerAdapter) Rate() (float64, error)        { return 1.0, nil }
func (a *playerAdapter) SetRate(_ float64) error        { return nil }
func (a *playerAdapter) MinimumRate() (float64, error)  { return 1.0, nil }
func (a *playerAdapter) MaximumRate() (float64, error)  { return 1.0, nil }

func (a *playerAdapter) Metadata() (types.Metadata, error) {
	s := a.p.CurrentSong()
	if s == nil {
		return types.Metadata{}, nil
	}
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(s.Path)),
		Length:  types.Microseconds(s.Duration.Microseconds()),
		Title:   s.Title,
		Artist:  []string{s.Artist},
		Album:   s.Album,
	}
	if artPath := FindAlbumArt(s.Path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}
	return meta, nil
}

func (a *playerAdapter) Volume() (float64, error)    { return a.p.Volume(), nil }
func (a *playerAdapter) SetVolume(v float64) error   { return a.p.SetVolume(v) }

func (a *playerAdapter) Position() (int64, error) {
	elapsed, _ := a.p.Position()
	return elapsed.Microseconds(), nil
}

func (a *playerAdapter) CanGoNext() (bool, error) {
	_, ok := a.p.Playlist().PeekNext()
	return ok, nil
}

func (a *playerAdapter) CanGoPrevious() (bool, error) {
	_, ok := a.p.Playlist().PeekPrev()
	return ok, nil
}

func (a *playerAdapter) CanPlay() (bool, error)    { return a.p.Playlist().Len() > 0, nil }
func (a *playerAdapter) CanPause() (bool, error)   { return true, nil }
func (a *playerAdapter) CanSeek() (bool, error)    { return true, nil }
func (a *playerAdapter) CanControl() (bool, error) { return true, nil }

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (a *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	_, repeat, _ := a.p.Toggles()
	if repeat {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (a *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	a.p.SetRepeat(status != types.LoopStatusNone)
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (a *playerAdapter) Shuffle() (bool, error) {
	_, _, shuffle := a.p.Toggles()
	return shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (a *playerAdapter) SetShuffle(shuffle bool) error {
	a.p.SetShuffle(shuffle)
	return nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
