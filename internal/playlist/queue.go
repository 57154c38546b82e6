package playlist

import (
	"math/rand/v2"
	"slices"

	"github.com/llehouerou/eddy/internal/playback"
)

// Queue is an ordered list of songs with a play cursor, following repeat and
// shuffle rules. It is not safe for concurrent use.
//
// order maps play positions to song indexes. Without shuffle it is the
// identity; with shuffle it is a permutation whose head is the song that was
// current when shuffle was enabled.
type Queue struct {
	songs   []playback.Song
	order   []int
	pos     int // position in order, -1 if nothing is current
	repeat  playback.RepeatMode
	shuffle bool
	rng     *rand.Rand
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return NewQueueWithRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))) //nolint:gosec // shuffle order is not security sensitive
}

// NewQueueWithRand creates an empty queue using r for shuffling.
func NewQueueWithRand(r *rand.Rand) *Queue {
	return &Queue{pos: -1, rng: r}
}

// Replace swaps the queue contents and makes the first song current.
func (q *Queue) Replace(songs []playback.Song) *playback.Song {
	q.songs = slices.Clone(songs)
	q.pos = -1
	if len(q.songs) == 0 {
		q.order = nil
		return nil
	}
	q.rebuildOrder(0)
	return q.Current()
}

// rebuildOrder recomputes the play order keeping songs[head] first when
// shuffling, and points the cursor at songs[head].
func (q *Queue) rebuildOrder(head int) {
	n := len(q.songs)
	q.order = make([]int, n)
	for i := range q.order {
		q.order[i] = i
	}
	if !q.shuffle || n == 0 {
		q.pos = head
		return
	}
	rest := append(q.order[:head:head], q.order[head+1:]...)
	q.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	q.order = append([]int{head}, rest...)
	q.pos = 0
}

// Songs returns a copy of the songs in insertion order.
func (q *Queue) Songs() []playback.Song {
	return slices.Clone(q.songs)
}

// Len returns the number of songs.
func (q *Queue) Len() int {
	return len(q.songs)
}

// Current returns the current song, or nil if none.
func (q *Queue) Current() *playback.Song {
	if q.pos < 0 || q.pos >= len(q.order) {
		return nil
	}
	return &q.songs[q.order[q.pos]]
}

// CurrentIndex returns the insertion index of the current song (-1 if none).
func (q *Queue) CurrentIndex() int {
	if q.pos < 0 || q.pos >= len(q.order) {
		return -1
	}
	return q.order[q.pos]
}

// HasNext reports whether Next would move to another song.
// RepeatOne does not wrap on manual navigation.
func (q *Queue) HasNext() bool {
	if len(q.order) == 0 || q.pos < 0 {
		return false
	}
	return q.pos < len(q.order)-1 || q.repeat == playback.RepeatAll
}

// HasPrevious reports whether Previous would move to another song.
func (q *Queue) HasPrevious() bool {
	if len(q.order) == 0 || q.pos < 0 {
		return false
	}
	return q.pos > 0 || q.repeat == playback.RepeatAll
}

// Next moves to the next song in play order. Returns nil at the end.
func (q *Queue) Next() *playback.Song {
	if !q.HasNext() {
		return nil
	}
	q.pos = (q.pos + 1) % len(q.order)
	return q.Current()
}

// Previous moves to the previous song in play order. Returns nil at the start.
func (q *Queue) Previous() *playback.Song {
	if !q.HasPrevious() {
		return nil
	}
	q.pos = (q.pos - 1 + len(q.order)) % len(q.order)
	return q.Current()
}

// Advance moves on after the current song finished on its own.
// RepeatOne stays on the current song.
func (q *Queue) Advance() *playback.Song {
	if q.repeat == playback.RepeatOne {
		return q.Current()
	}
	return q.Next()
}

// JumpTo makes songs[index] current. Returns nil if index is out of range.
func (q *Queue) JumpTo(index int) *playback.Song {
	if index < 0 || index >= len(q.songs) {
		return nil
	}
	q.pos = slices.Index(q.order, index)
	return q.Current()
}

// RepeatMode returns the repeat mode.
func (q *Queue) RepeatMode() playback.RepeatMode {
	return q.repeat
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(m playback.RepeatMode) {
	q.repeat = m
}

// Shuffle returns whether shuffle is enabled.
func (q *Queue) Shuffle() bool {
	return q.shuffle
}

// SetShuffle enables or disables shuffle, keeping the current song current.
func (q *Queue) SetShuffle(enabled bool) {
	if q.shuffle == enabled {
		return
	}
	q.shuffle = enabled
	if len(q.songs) == 0 {
		return
	}
	head := max(q.CurrentIndex(), 0)
	q.rebuildOrder(head)
}
