// Package server implements the Server Loop (C7): a single-threaded
// mediator that owns AppContext, drains the unified event queue, and
// fans out broadcasts to connected clients.
package server

import (
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/waves/internal/audio"
	"github.com/llehouerou/waves/internal/client"
	"github.com/llehouerou/waves/internal/config"
	"github.com/llehouerou/waves/internal/eventbus"
	"github.com/llehouerou/waves/internal/m3u"
	"github.com/llehouerou/waves/internal/mpris"
	"github.com/llehouerou/waves/internal/player"
	"github.com/llehouerou/waves/internal/song"
	"github.com/llehouerou/waves/internal/waveserr"
	"github.com/llehouerou/waves/internal/wire"
)

// AppContext is the single owner of daemon-wide mutable state: the
// loaded configuration, the Player, and the connected-client table.
type AppContext struct {
	cfg    config.Config
	player *player.Player
	queue  *eventbus.Queue

	clients map[uuid.UUID]chan<- wire.Broadcast
	quit    bool
}

// New constructs an AppContext from cfg. It does not start listening;
// call Serve for that.
func New(cfg config.Config) *AppContext {
	queue := eventbus.New()
	audioEvents := make(chan audio.Event, 8)

	p := player.New(player.Options{
		InitialNext:    cfg.InitialNext,
		InitialRepeat:  cfg.InitialRepeat,
		InitialShuffle: cfg.InitialShuffle,
	}, audioEvents)

	ctx := &AppContext{
		cfg:     cfg,
		player:  p,
		queue:   queue,
		clients: make(map[uuid.UUID]chan<- wire.Broadcast),
	}

	go ctx.forwardAudioEvents(audioEvents)

	return ctx
}

func (ctx *AppContext) forwardAudioEvents(events <-chan audio.Event) {
	for ev := range events {
		switch ev.Kind {
		case audio.EventProgress:
			ctx.queue.Events <- eventbus.ServerEvent{Kind: eventbus.EventPlayerProgress, Elapsed: ev.Position}
		case audio.EventStreamEnded:
			ctx.queue.Events <- eventbus.ServerEvent{Kind: eventbus.EventPlayerDone}
		}
	}
}

// Serve binds the configured socket, accepts connections, and runs the
// Server Loop until ServerQuit or the context's quit flag is set.
func Serve(cfg config.Config) error {
	ctx := New(cfg)
	defer ctx.player.Close()

	if err := loadStartupPlaylist(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load startup playlist")
	}

	if cfg.MPRIS.Enabled {
		adapter, err := mpris.New(ctx.player)
		if err != nil {
			log.Warn().Err(err).Msg("failed to start MPRIS bridge")
		} else {
			defer adapter.Close()
		}
	}

	os.Remove(cfg.SocketPath)
	ln, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		return waveserr.Wrap(waveserr.KindIO, err, "listen on %s", cfg.SocketPath)
	}
	defer ln.Close()

	go acceptLoop(ln, ctx.queue)

	log.Info().Str("socket", cfg.SocketPath).Msg("wavesd listening")
	ctx.run()

	return persistPlaylist(ctx)
}

func loadStartupPlaylist(ctx *AppContext) error {
	cwd := ctx.cfg.WorkingDir
	paths, err := m3u.ReadFile(ctx.cfg.PlaylistPath, cwd)
	if err != nil {
		return err
	}
	for _, p := range paths {
		s, err := song.New(p)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("skipping unplayable song on startup")
			continue
		}
		ctx.player.Playlist().Push(s)
	}
	return nil
}

func persistPlaylist(ctx *AppContext) error {
	songs := ctx.player.Playlist().Songs()
	paths := make([]string, len(songs))
	for i, s := range songs {
		paths[i] = s.Path
	}
	return m3u.WriteFile(ctx.cfg.PlaylistPath, paths)
}

func acceptLoop(ln net.Listener, queue *eventbus.Queue) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		id := uuid.New()
		broadcastCh := make(chan wire.Broadcast, 16)
		go client.Serve(conn, id, broadcastCh, queue)
		queue.Events <- eventbus.ServerEvent{
			Kind:     eventbus.EventNewClient,
			ClientID: id,
			Conn:     eventbus.NewClientPayload{ID: id, Broadcast: broadcastCh},
		}
	}
}

// run is the Server Loop's central dispatch: block on the unified
// queue, classify, dispatch, broadcast. It is the only goroutine that
// ever mutates ctx.player or ctx.clients.
func (ctx *AppContext) run() {
	for !ctx.quit {
		select {
		case req := <-ctx.queue.Requests:
			ctx.handleRequest(req)
		case ev := <-ctx.queue.Events:
			ctx.handleServerEvent(ev)
		}
	}
}

func (ctx *AppContext) handleServerEvent(ev eventbus.ServerEvent) {
	switch ev.Kind {
	case eventbus.EventNewClient:
		ctx.clients[ev.ClientID] = ev.Conn.Broadcast
	case eventbus.EventClientGone:
		delete(ctx.clients, ev.ClientID)
	case eventbus.EventPlayerProgress:
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlayerProgress, Elapsed: ev.Elapsed.Milliseconds()})
	case eventbus.EventPlayerDone:
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlayerDone})
		if err := ctx.player.Advance(); err != nil {
			ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastServerError, Msg: err.Error()})
			return
		}
		ctx.broadcastAll(ctx.stateBroadcast())
	}
}

func (ctx *AppContext) handleRequest(req eventbus.ClientRequest) {
	if err := ctx.dispatch(req); err != nil {
		if waveserr.KindOf(err) == waveserr.KindUnrecognizedCommand {
			ctx.sendTo(req.ClientID, wire.Broadcast{Kind: wire.BroadcastServerError, Msg: err.Error()})
			return
		}
		ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastServerError, Msg: err.Error()})
	}
}

// sendTo delivers a broadcast to a single client; a full channel drops
// the message rather than blocking the Server Loop.
func (ctx *AppContext) sendTo(id uuid.UUID, b wire.Broadcast) {
	ch, ok := ctx.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- b:
	default:
	}
}

// broadcastAll fans b out to every connected client. A send failure
// (full channel, meaning the writer is stuck or gone) marks the entry
// for removal; the table itself is never mutated mid-iteration, only
// reaped afterward, per spec.md §9.
func (ctx *AppContext) broadcastAll(b wire.Broadcast) {
	var dead []uuid.UUID
	for id, ch := range ctx.clients {
		select {
		case ch <- b:
		default:
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(ctx.clients, id)
	}
}

func (ctx *AppContext) stateBroadcast() wire.Broadcast {
	return wire.Broadcast{Kind: wire.BroadcastPlayerState, State: ctx.playerStateDTO()}
}
