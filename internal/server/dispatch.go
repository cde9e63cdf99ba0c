package server

import (
	"time"

	"github.com/llehouerou/waves/internal/eventbus"
	"github.com/llehouerou/waves/internal/song"
	"github.com/llehouerou/waves/internal/waveserr"
	"github.com/llehouerou/waves/internal/wire"
)

// dispatch routes req to its handler and, on success, broadcasts the
// resulting state. Each ClientRequest produces at most one mutation
// plus zero or more broadcasts, emitted atomically from the Server
// Loop's perspective since only this goroutine ever calls dispatch.
func (ctx *AppContext) dispatch(req eventbus.ClientRequest) error {
	switch req.Request.Tag {
	case wire.RouteClientLeave:
		delete(ctx.clients, req.ClientID)
		return nil

	case wire.RouteServerQuit:
		ctx.quit = true
		return nil

	case wire.RoutePlayerState:
		ctx.sendTo(req.ClientID, ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerPlayFile:
		if err := ctx.player.PlayEntireDirectory(req.Request.Path); err != nil {
			return err
		}
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerPlayNext:
		return ctx.advanceAndBroadcast(1)

	case wire.RoutePlayerPlayPrevious:
		return ctx.advanceAndBroadcast(-1)

	case wire.RoutePlayerPause:
		if err := ctx.player.Pause(); err != nil {
			return err
		}
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerResume:
		if err := ctx.player.Resume(); err != nil {
			return err
		}
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerTogglePlay:
		if err := ctx.player.TogglePlay(); err != nil {
			return err
		}
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerToggleNext:
		next, _, _ := ctx.player.Toggles()
		ctx.player.SetNext(!next)
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerToggleRepeat:
		_, repeat, _ := ctx.player.Toggles()
		ctx.player.SetRepeat(!repeat)
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerToggleShuffle:
		_, _, shuffle := ctx.player.Toggles()
		ctx.player.SetShuffle(!shuffle)
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerRewind:
		if err := ctx.player.Rewind(time.Duration(req.Request.Amount) * time.Millisecond); err != nil {
			return err
		}
		return nil

	case wire.RoutePlayerFastForward:
		if err := ctx.player.FastForward(time.Duration(req.Request.Amount) * time.Millisecond); err != nil {
			return err
		}
		return nil

	case wire.RoutePlayerVolumeGet:
		ctx.sendTo(req.ClientID, ctx.stateBroadcast())
		return nil

	case wire.RoutePlayerVolumeIncrease:
		return ctx.adjustVolume(float64(req.Request.Amount) / 100)

	case wire.RoutePlayerVolumeDecrease:
		return ctx.adjustVolume(-float64(req.Request.Amount) / 100)

	case wire.RoutePlaylistState:
		ctx.sendTo(req.ClientID, wire.Broadcast{Kind: wire.BroadcastPlaylistUpdate, State: ctx.playerStateDTO()})
		return nil

	case wire.RoutePlaylistOpen:
		ctx.player.Playlist().Clear()
		return ctx.appendPath(req.Request.Path)

	case wire.RoutePlaylistPlay:
		if err := ctx.player.PlayFromPlaylist(req.Request.Index); err != nil {
			return err
		}
		ctx.broadcastAll(ctx.stateBroadcast())
		return nil

	case wire.RoutePlaylistRemove:
		if err := ctx.player.Playlist().Remove(req.Request.Index); err != nil {
			return err
		}
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlaylistUpdate, State: ctx.playerStateDTO()})
		return nil

	case wire.RoutePlaylistMoveUp:
		i := req.Request.Index
		if err := ctx.player.Playlist().Swap(i, i-1); err != nil {
			return err
		}
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlaylistUpdate, State: ctx.playerStateDTO()})
		return nil

	case wire.RoutePlaylistMoveDown:
		i := req.Request.Index
		if err := ctx.player.Playlist().Swap(i, i+1); err != nil {
			return err
		}
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlaylistUpdate, State: ctx.playerStateDTO()})
		return nil

	case wire.RoutePlaylistAppend:
		if err := ctx.appendPath(req.Request.Path); err != nil {
			return err
		}
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlaylistUpdate, State: ctx.playerStateDTO()})
		return nil

	default:
		return waveserr.New(waveserr.KindUnrecognizedCommand, "unrecognized route %q", req.Request.Tag)
	}
}

func (ctx *AppContext) appendPath(path string) error {
	s, err := song.New(path)
	if err != nil {
		return err
	}
	ctx.player.Playlist().Push(s)
	return nil
}

func (ctx *AppContext) advanceAndBroadcast(step int) error {
	var err error
	if step < 0 {
		err = ctx.player.StepPrevious()
	} else {
		err = ctx.player.StepNext()
	}
	if err != nil {
		return err
	}
	ctx.broadcastAll(ctx.stateBroadcast())
	return nil
}

func (ctx *AppContext) adjustVolume(delta float64) error {
	v := ctx.player.Volume() + delta
	if err := ctx.player.SetVolume(v); err != nil {
		return err
	}
	ctx.broadcastAll(ctx.stateBroadcast())
	return nil
}
