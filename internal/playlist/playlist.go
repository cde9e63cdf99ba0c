// Package playlist implements the ordered song list and its independent
// play-order permutation.
package playlist

import (
	"math/rand"

	"github.com/llehouerou/waves/internal/song"
	"github.com/llehouerou/waves/internal/waveserr"
)

// Entry is the result of current/peek_next/peek_prev: the contents
// index, the order-slot index, and the song itself.
type Entry struct {
	ContentsIndex int
	OrderIndex    int
	Song          song.Song
}

// Playlist is the pair (contents, order) plus an optional order_index
// identifying the currently playing entry.
type Playlist struct {
	contents []song.Song
	order    []int
	// orderIndex is -1 when nothing is active, matching order_index = None.
	orderIndex int

	paths map[string]struct{}
}

// New returns an empty Playlist.
func New() *Playlist {
	return &Playlist{orderIndex: -1, paths: make(map[string]struct{})}
}

// Push appends song to contents and its new index to the end of order.
// order_index is unchanged.
func (p *Playlist) Push(s song.Song) {
	idx := len(p.contents)
	p.contents = append(p.contents, s)
	p.order = append(p.order, idx)
	p.paths[s.Path] = struct{}{}
}

// Contains reports whether path is already present, via the secondary
// membership index — O(1), used by client-facing file-list playlists,
// not required by the play queue's own invariants.
func (p *Playlist) Contains(path string) bool {
	_, ok := p.paths[path]
	return ok
}

// Len returns the number of songs.
func (p *Playlist) Len() int { return len(p.contents) }

// Songs returns the contents in storage order (not play order).
func (p *Playlist) Songs() []song.Song {
	out := make([]song.Song, len(p.contents))
	copy(out, p.contents)
	return out
}

// Song returns contents[i].
func (p *Playlist) Song(i int) (song.Song, error) {
	if i < 0 || i >= len(p.contents) {
		return song.Song{}, waveserr.New(waveserr.KindInvalidParameters, "index %d out of range", i)
	}
	return p.contents[i], nil
}

// Order returns a copy of the current play-order permutation.
func (p *Playlist) Order() []int {
	out := make([]int, len(p.order))
	copy(out, p.order)
	return out
}

// OrderIndex returns the current order-slot index, or -1 if none.
func (p *Playlist) OrderIndex() int { return p.orderIndex }

// SetOrderIndexForContentsIndex sets order_index to the order slot that
// refers to contentsIndex, so that the song at that content position
// becomes current. Used by play_from_playlist.
func (p *Playlist) SetOrderIndexForContentsIndex(contentsIndex int) error {
	if contentsIndex < 0 || contentsIndex >= len(p.contents) {
		return waveserr.New(waveserr.KindInvalidParameters, "index %d out of range", contentsIndex)
	}
	for slot, ci := range p.order {
		if ci == contentsIndex {
			p.orderIndex = slot
			return nil
		}
	}
	return waveserr.New(waveserr.KindInvalidParameters, "index %d not found in order", contentsIndex)
}

// Remove deletes contents[i], drops every order entry equal to i,
// decrements every order entry greater than i, and adjusts order_index
// so the same song stays current when possible (or clears it when the
// removed entry was the one playing).
func (p *Playlist) Remove(i int) error {
	if i < 0 || i >= len(p.contents) {
		return waveserr.New(waveserr.KindInvalidParameters, "index %d out of range", i)
	}

	currentContentsIndex := -1
	if p.orderIndex >= 0 {
		currentContentsIndex = p.order[p.orderIndex]
	}

	delete(p.paths, p.contents[i].Path)
	p.contents = append(p.contents[:i:i], p.contents[i+1:]...)

	newOrder := make([]int, 0, len(p.order))
	for _, ci := range p.order {
		switch {
		case ci == i:
			continue
		case ci > i:
			newOrder = append(newOrder, ci-1)
		default:
			newOrder = append(newOrder, ci)
		}
	}
	p.order = newOrder

	switch {
	case currentContentsIndex == -1:
		// Nothing was playing; stays that way.
	case currentContentsIndex == i:
		p.orderIndex = -1
	default:
		adjusted := currentContentsIndex
		if currentContentsIndex > i {
			adjusted = currentContentsIndex - 1
		}
		found := -1
		for slot, ci := range p.order {
			if ci == adjusted {
				found = slot
				break
			}
		}
		p.orderIndex = found
	}

	return nil
}

// Clear empties the playlist and clears order_index.
func (p *Playlist) Clear() {
	p.contents = nil
	p.order = nil
	p.orderIndex = -1
	p.paths = make(map[string]struct{})
}

// Swap exchanges contents[i] and contents[j]; if order_index referenced
// either position's song it is updated to follow the song, not the
// position. Used for move-up/move-down.
func (p *Playlist) Swap(i, j int) error {
	if i < 0 || i >= len(p.contents) || j < 0 || j >= len(p.contents) {
		return waveserr.New(waveserr.KindInvalidParameters, "index out of range")
	}
	if i == j {
		return nil
	}

	currentContentsIndex := -1
	if p.orderIndex >= 0 {
		currentContentsIndex = p.order[p.orderIndex]
	}

	p.contents[i], p.contents[j] = p.contents[j], p.contents[i]
	for slot, ci := range p.order {
		switch ci {
		case i:
			p.order[slot] = j
		case j:
			p.order[slot] = i
		}
	}

	switch currentContentsIndex {
	case i:
		currentContentsIndex = j
	case j:
		currentContentsIndex = i
	}
	if currentContentsIndex >= 0 {
		for slot, ci := range p.order {
			if ci == currentContentsIndex {
				p.orderIndex = slot
				break
			}
		}
	}

	return nil
}

// Shuffle places the currently playing song at order[0] and randomizes
// the rest; order_index becomes 0. If nothing is playing, the whole
// order is randomized. A length of 0 or 1 is a no-op.
func (p *Playlist) Shuffle() {
	n := len(p.order)
	if n <= 1 {
		return
	}

	if p.orderIndex < 0 {
		rand.Shuffle(n, func(i, j int) { p.order[i], p.order[j] = p.order[j], p.order[i] })
		return
	}

	current := p.order[p.orderIndex]
	rest := make([]int, 0, n-1)
	for slot, ci := range p.order {
		if slot != p.orderIndex {
			rest = append(rest, ci)
		}
	}
	rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	p.order = append([]int{current}, rest...)
	p.orderIndex = 0
}

// Unshuffle resets order to [0..len) and, if something was playing,
// sets order_index to that song's contents index (which, once the
// order is natural, equals its own order slot).
func (p *Playlist) Unshuffle() {
	current := -1
	if p.orderIndex >= 0 {
		current = p.order[p.orderIndex]
	}

	p.order = make([]int, len(p.contents))
	for i := range p.order {
		p.order[i] = i
	}

	if current >= 0 {
		p.orderIndex = current
	}
}

// Current returns the entry at order_index, or ok=false if none.
func (p *Playlist) Current() (Entry, bool) {
	if p.orderIndex < 0 || p.orderIndex >= len(p.order) {
		return Entry{}, false
	}
	ci := p.order[p.orderIndex]
	return Entry{ContentsIndex: ci, OrderIndex: p.orderIndex, Song: p.contents[ci]}, true
}

// PeekNext returns the entry one step forward in order, wrapping
// modularly. ok is false only when order_index is None or order is empty.
func (p *Playlist) PeekNext() (Entry, bool) {
	return p.peekAt(1)
}

// PeekPrev returns the entry one step back in order, wrapping modularly.
func (p *Playlist) PeekPrev() (Entry, bool) {
	return p.peekAt(-1)
}

func (p *Playlist) peekAt(delta int) (Entry, bool) {
	n := len(p.order)
	if p.orderIndex < 0 || n == 0 {
		return Entry{}, false
	}
	slot := ((p.orderIndex+delta)%n + n) % n
	ci := p.order[slot]
	return Entry{ContentsIndex: ci, OrderIndex: slot, Song: p.contents[ci]}, true
}

// PeekAt returns the entry reached by stepping forward step positions
// from order_index, wrapping modularly. Used by the advancement
// algorithm to try successive candidates.
func (p *Playlist) PeekAt(step int) (Entry, bool) {
	return p.peekAt(step)
}

// IsEnd reports whether order_index is None, or the next position would
// wrap back to order[0].
func (p *Playlist) IsEnd() bool {
	if p.orderIndex < 0 {
		return true
	}
	return (p.orderIndex+1)%len(p.order) == 0
}

// SetCurrent forces order_index to the order slot reached by stepping
// forward step positions, committing an advancement candidate once it
// has been confirmed playable.
func (p *Playlist) SetCurrent(step int) {
	n := len(p.order)
	if n == 0 {
		p.orderIndex = -1
		return
	}
	p.orderIndex = ((p.orderIndex+step)%n + n) % n
}
