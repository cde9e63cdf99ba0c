package wire

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
)

func TestReaderDecodesMultipleNewlineDelimitedRequests(t *testing.T) {
	buf := bytes.NewBufferString(
		`{"tag":"/player/pause"}` + "\n" +
			`{"tag":"/playlist/append","path":"/music/a.flac"}` + "\n",
	)
	r := NewReader(buf)

	first, err := r.ReadRequest()
	if err != nil {
		t.Fatal(err)
	}
	if first.Tag != RoutePlayerPause {
		t.Fatalf("got tag %q", first.Tag)
	}

	second, err := r.ReadRequest()
	if err != nil {
		t.Fatal(err)
	}
	if second.Tag != RoutePlaylistAppend || second.Path != "/music/a.flac" {
		t.Fatalf("got %+v", second)
	}

	if _, err := r.ReadRequest(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestWriterFramesOneBroadcastPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteBroadcast(Broadcast{Kind: BroadcastPlayerDone}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBroadcast(Broadcast{Kind: BroadcastServerError, Msg: "oops"}); err != nil {
		t.Fatal(err)
	}

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first, second Broadcast
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatal(err)
	}
	if first.Kind != BroadcastPlayerDone {
		t.Fatalf("got %+v", first)
	}
	if second.Kind != BroadcastServerError || second.Msg != "oops" {
		t.Fatalf("got %+v", second)
	}
}

func TestBroadcastElapsedDurationRoundTrip(t *testing.T) {
	b := Broadcast{Kind: BroadcastPlayerProgress, Elapsed: 1500}
	if got := b.ElapsedDuration().Milliseconds(); got != 1500 {
		t.Fatalf("got %dms", got)
	}
}
