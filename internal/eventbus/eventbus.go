// Package eventbus defines the unified event queue the Server Loop
// drains: client requests, worker-originated progress/done events, and
// listener lifecycle events, plus the per-client broadcast channel type.
package eventbus

import (
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/waves/internal/wire"
)

// ClientRequest is a parsed wire.Request tagged with the originating
// client's UUID.
type ClientRequest struct {
	ClientID uuid.UUID
	Request  wire.Request
}

// ServerEventKind classifies a ServerEvent.
type ServerEventKind int

const (
	// EventNewClient is emitted by the listener goroutine for every
	// accepted connection.
	EventNewClient ServerEventKind = iota
	// EventClientGone is emitted by a client's reader on disconnect.
	EventClientGone
	// EventPlayerProgress is emitted by the Audio Worker's heartbeat.
	EventPlayerProgress
	// EventPlayerDone is emitted once per track that finished on its own.
	EventPlayerDone
)

// ServerEvent carries listener and Audio Worker notifications into the
// Server Loop's unified queue.
type ServerEvent struct {
	Kind     ServerEventKind
	ClientID uuid.UUID       // EventNewClient, EventClientGone
	Conn     NewClientPayload // EventNewClient
	Elapsed  time.Duration    // EventPlayerProgress
}

// NewClientPayload carries what the Server Loop needs to register a
// freshly accepted connection: its UUID and its broadcast channel.
type NewClientPayload struct {
	ID        uuid.UUID
	Broadcast chan<- wire.Broadcast
}

// Queue is the unified channel the Server Loop selects on. Requests and
// ServerEvents are separate channels rather than one sum-typed channel,
// since Go's select multiplexes channels natively — there is no need to
// hand-roll a tagged union the way a single-consumer queue in another
// language would.
type Queue struct {
	Requests chan ClientRequest
	Events   chan ServerEvent
}

// New creates a Queue whose Requests channel is unbuffered and whose
// Events channel holds at most one pending event. There is no deeper
// buffering: back-pressure on a slow Server Loop should be visible to
// callers rather than silently queuing unbounded work.
func New() *Queue {
	return &Queue{
		Requests: make(chan ClientRequest),
		Events:   make(chan ServerEvent, 1),
	}
}
