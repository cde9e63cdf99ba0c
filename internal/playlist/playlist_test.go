package playlist

import (
	"testing"

	"github.com/llehouerou/waves/internal/song"
)

func songAt(i int) song.Song {
	return song.Song{Path: string(rune('a' + i))}
}

func fill(p *Playlist, n int) {
	for i := 0; i < n; i++ {
		p.Push(songAt(i))
	}
}

func assertPermutation(t *testing.T, p *Playlist) {
	t.Helper()
	order := p.Order()
	if len(order) != p.Len() {
		t.Fatalf("len(order)=%d != len(contents)=%d", len(order), p.Len())
	}
	seen := make(map[int]bool, len(order))
	for _, v := range order {
		if v < 0 || v >= p.Len() || seen[v] {
			t.Fatalf("order %v is not a permutation of [0,%d)", order, p.Len())
		}
		seen[v] = true
	}
}

func TestPushAppendsToOrderTail(t *testing.T) {
	p := New()
	fill(p, 3)
	assertPermutation(t, p)
	if got := p.Order(); got[len(got)-1] != 2 {
		t.Fatalf("expected new index at order tail, got %v", got)
	}
}

func TestSwapTwiceIsIdentity(t *testing.T) {
	p := New()
	fill(p, 4)
	_ = p.SetOrderIndexForContentsIndex(1)

	before := p.Order()
	beforeSongs := p.Songs()

	if err := p.Swap(1, 3); err != nil {
		t.Fatal(err)
	}
	if err := p.Swap(1, 3); err != nil {
		t.Fatal(err)
	}

	after := p.Order()
	afterSongs := p.Songs()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("order changed after double swap: %v vs %v", before, after)
		}
		if beforeSongs[i].Path != afterSongs[i].Path {
			t.Fatalf("contents changed after double swap")
		}
	}
}

func TestShufflePreservesCurrent(t *testing.T) {
	p := New()
	fill(p, 5)
	if err := p.SetOrderIndexForContentsIndex(2); err != nil {
		t.Fatal(err)
	}
	current, _ := p.Current()

	p.Shuffle()
	assertPermutation(t, p)

	if p.OrderIndex() != 0 {
		t.Fatalf("expected order_index=0 after shuffle, got %d", p.OrderIndex())
	}
	got, ok := p.Current()
	if !ok || got.ContentsIndex != current.ContentsIndex {
		t.Fatalf("shuffle did not preserve current song: want %d got %+v", current.ContentsIndex, got)
	}
}

func TestUnshuffleRestoresNaturalOrder(t *testing.T) {
	p := New()
	fill(p, 6)
	_ = p.SetOrderIndexForContentsIndex(3)
	current, _ := p.Current()

	p.Shuffle()
	p.Unshuffle()

	for i, v := range p.Order() {
		if v != i {
			t.Fatalf("order not natural after unshuffle: %v", p.Order())
		}
	}
	got, ok := p.Current()
	if !ok || got.ContentsIndex != current.ContentsIndex {
		t.Fatalf("unshuffle lost current song")
	}
}

func TestIsEndMatchesWrapToHead(t *testing.T) {
	p := New()
	fill(p, 3)
	_ = p.SetOrderIndexForContentsIndex(2)

	if !p.IsEnd() {
		t.Fatal("expected is_end at last order slot")
	}
	next, ok := p.PeekNext()
	if !ok || next.OrderIndex != 0 {
		t.Fatalf("expected peek_next to wrap to order[0], got %+v", next)
	}
}

func TestShuffleNoOpOnShortPlaylists(t *testing.T) {
	for _, n := range []int{0, 1} {
		p := New()
		fill(p, n)
		if n == 1 {
			_ = p.SetOrderIndexForContentsIndex(0)
		}
		before := p.Order()
		p.Shuffle()
		after := p.Order()
		if len(before) != len(after) {
			t.Fatalf("shuffle changed length for n=%d", n)
		}
		for i := range before {
			if before[i] != after[i] {
				t.Fatalf("shuffle mutated order for n=%d", n)
			}
		}
	}
}

func TestRemoveAtHeadTailAndCurrent(t *testing.T) {
	cases := []struct {
		name    string
		remove  int
		current int
	}{
		{"head", 0, 2},
		{"tail", 4, 2},
		{"current", 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New()
			fill(p, 5)
			if err := p.SetOrderIndexForContentsIndex(tc.current); err != nil {
				t.Fatal(err)
			}

			if err := p.Remove(tc.remove); err != nil {
				t.Fatal(err)
			}
			assertPermutation(t, p)

			if idx := p.OrderIndex(); idx != -1 && (idx < 0 || idx >= p.Len()) {
				t.Fatalf("order_index %d invalid for len %d", idx, p.Len())
			}
			if tc.remove == tc.current {
				if p.OrderIndex() != -1 {
					t.Fatalf("expected order_index cleared when current song removed")
				}
			} else if p.OrderIndex() == -1 {
				t.Fatalf("expected current song to remain identified")
			}
		})
	}
}
