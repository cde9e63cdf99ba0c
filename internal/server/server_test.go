package server

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/waves/internal/config"
	"github.com/llehouerou/waves/internal/eventbus"
	"github.com/llehouerou/waves/internal/wire"
)

func newTestContext(t *testing.T) *AppContext {
	t.Helper()
	cfg := config.Default()
	cfg.PlaylistPath = ""
	ctx := New(cfg)
	t.Cleanup(ctx.player.Close)
	return ctx
}

func registerClient(ctx *AppContext, buf int) (uuid.UUID, chan wire.Broadcast) {
	id := uuid.New()
	ch := make(chan wire.Broadcast, buf)
	ctx.clients[id] = ch
	return id, ch
}

func TestToggleShuffleBroadcastsState(t *testing.T) {
	ctx := newTestContext(t)
	a, chA := registerClient(ctx, 4)

	err := ctx.dispatch(eventbus.ClientRequest{
		ClientID: a,
		Request:  wire.Request{Tag: wire.RoutePlayerToggleShuffle},
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case b := <-chA:
		if b.Kind != wire.BroadcastPlayerState || !b.State.Shuffle {
			t.Fatalf("expected PlayerState with shuffle=true, got %+v", b)
		}
	default:
		t.Fatal("expected a broadcast after toggling shuffle")
	}
}

func TestMultiClientBroadcastFanOut(t *testing.T) {
	ctx := newTestContext(t)
	_, chA := registerClient(ctx, 4)
	_, chB := registerClient(ctx, 4)

	ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastServerError, Msg: "boom"})

	for _, ch := range []chan wire.Broadcast{chA, chB} {
		select {
		case b := <-ch:
			if b.Msg != "boom" {
				t.Fatalf("got %+v", b)
			}
		default:
			t.Fatal("expected both clients to receive the same broadcast")
		}
	}
}

func TestBroadcastReapsDeadClientsWithoutMutatingMidIteration(t *testing.T) {
	ctx := newTestContext(t)
	_, _ = registerClient(ctx, 0) // unbuffered, will never drain -> reaped
	live, chLive := registerClient(ctx, 4)

	ctx.broadcastAll(wire.Broadcast{Kind: wire.BroadcastPlayerDone})

	if len(ctx.clients) != 1 {
		t.Fatalf("expected dead client reaped, %d clients remain", len(ctx.clients))
	}
	if _, ok := ctx.clients[live]; !ok {
		t.Fatal("live client should remain registered")
	}
	select {
	case <-chLive:
	default:
		t.Fatal("live client should have received the broadcast")
	}
}

func TestUnrecognizedRouteReturnsErrorToOriginatorOnly(t *testing.T) {
	ctx := newTestContext(t)
	a, chA := registerClient(ctx, 4)
	_, chB := registerClient(ctx, 4)

	ctx.handleRequest(eventbus.ClientRequest{
		ClientID: a,
		Request:  wire.Request{Tag: "/bogus/route"},
	})

	select {
	case b := <-chA:
		if b.Kind != wire.BroadcastServerError {
			t.Fatalf("expected ServerError to originator, got %+v", b)
		}
	default:
		t.Fatal("expected the originating client to receive the error")
	}
	select {
	case b := <-chB:
		t.Fatalf("did not expect other clients to receive the error, got %+v", b)
	default:
	}
}

func TestServerQuitStopsTheRunLoop(t *testing.T) {
	ctx := newTestContext(t)

	done := make(chan struct{})
	go func() {
		ctx.run()
		close(done)
	}()

	ctx.queue.Requests <- eventbus.ClientRequest{Request: wire.Request{Tag: wire.RouteServerQuit}}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run loop did not exit after ServerQuit")
	}
}
