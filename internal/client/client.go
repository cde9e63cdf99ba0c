// Package client implements the per-connection Client Session (C8): one
// reader goroutine turning wire requests into eventbus.ClientRequest
// values, and one writer goroutine draining a per-client broadcast
// channel.
package client

import (
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/waves/internal/eventbus"
	"github.com/llehouerou/waves/internal/wire"
)

// Serve runs both halves of a connection's session until either side
// fails: the reader until EOF, the writer until a write error. On exit
// it reports EventClientGone so the Server Loop can reap the broadcast
// table entry.
func Serve(conn net.Conn, id uuid.UUID, broadcast <-chan wire.Broadcast, queue *eventbus.Queue) {
	defer conn.Close()

	done := make(chan struct{})
	go writer(conn, broadcast, done)
	reader(conn, id, queue)
	close(done)

	queue.Events <- eventbus.ServerEvent{Kind: eventbus.EventClientGone, ClientID: id}
}

func reader(conn net.Conn, id uuid.UUID, queue *eventbus.Queue) {
	r := wire.NewReader(conn)
	for {
		req, err := r.ReadRequest()
		if err != nil {
			if err != io.EOF {
				log.Debug().Err(err).Str("client", id.String()).Msg("client read error")
			}
			return
		}
		queue.Requests <- eventbus.ClientRequest{ClientID: id, Request: req}
	}
}

func writer(conn net.Conn, broadcast <-chan wire.Broadcast, done <-chan struct{}) {
	w := wire.NewWriter(conn)
	for {
		select {
		case <-done:
			return
		case b, ok := <-broadcast:
			if !ok {
				return
			}
			if err := w.WriteBroadcast(b); err != nil {
				return
			}
		}
	}
}
