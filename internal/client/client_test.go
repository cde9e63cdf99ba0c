package client

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/waves/internal/eventbus"
	"github.com/llehouerou/waves/internal/wire"
)

func TestServeForwardsRequestsAndReportsClientGoneOnEOF(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	queue := eventbus.New()
	broadcast := make(chan wire.Broadcast, 1)
	id := uuid.New()

	go Serve(serverConn, id, broadcast, queue)

	if _, err := clientConn.Write([]byte(`{"tag":"/player/pause"}` + "\n")); err != nil {
		t.Fatal(err)
	}

	select {
	case req := <-queue.Requests:
		if req.ClientID != id || req.Request.Tag != wire.RoutePlayerPause {
			t.Fatalf("got %+v", req)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded request")
	}

	clientConn.Close()

	select {
	case ev := <-queue.Events:
		if ev.Kind != eventbus.EventClientGone || ev.ClientID != id {
			t.Fatalf("got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EventClientGone")
	}
}

func TestServeWritesBroadcastsToTheConnection(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	queue := eventbus.New()
	broadcast := make(chan wire.Broadcast, 1)
	id := uuid.New()

	go Serve(serverConn, id, broadcast, queue)
	broadcast <- wire.Broadcast{Kind: wire.BroadcastPlayerDone}

	buf := make([]byte, 256)
	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := clientConn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	got := string(buf[:n])
	if want := `"kind":"PlayerDone"`; !strings.Contains(got, want) {
		t.Fatalf("broadcast line %q missing %q", got, want)
	}
}
