// Package history keeps the lines most recently submitted by the player so
// they can be recalled while typing.
package history

import (
	"strings"
	"sync"
)

// Capacity is the number of lines a Ring created with NewRing(0) holds.
const Capacity = 10

// Direction is which way to move through history.
type Direction int

const (
	// Older moves towards lines that were entered longer ago.
	Older Direction = iota

	// Newer moves back towards the line being typed.
	Newer
)

// Ring is a bounded list of previously submitted lines, most recent first,
// along with a cursor for browsing it. A cursor of -1 means the player is not
// browsing history but typing a fresh line.
//
// Ring is safe for concurrent use. Lines are recorded by whatever reads
// input while the line editor browses from its own goroutine.
type Ring struct {
	mtx    sync.Mutex
	lines  []string
	cap    int
	cursor int
}

// NewRing creates a Ring that holds at most n lines. If n is less than 1,
// Capacity is used.
func NewRing(n int) *Ring {
	if n < 1 {
		n = Capacity
	}
	return &Ring{cap: n, cursor: -1}
}

// Record adds a submitted line to the front of the history, dropping the oldest
// line if the Ring is full, and stops any browsing in progress. Lines that are
// empty or only whitespace are not recorded.
func (r *Ring) Record(line string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.cursor = -1
	if strings.TrimSpace(line) == "" {
		return
	}

	r.lines = append([]string{line}, r.lines...)
	if len(r.lines) > r.cap {
		r.lines = r.lines[:r.cap]
	}
}

// Navigate moves the cursor one step in the given direction and returns the
// line it now points at. Moving stops at either end; there is no wraparound.
// When the cursor is back at -1, the empty string is returned.
func (r *Ring) Navigate(dir Direction) string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	switch dir {
	case Older:
		if r.cursor < len(r.lines)-1 {
			r.cursor++
		}
	case Newer:
		if r.cursor > -1 {
			r.cursor--
		}
	}
	return r.current()
}

// Rewind stops any browsing in progress without recording anything.
func (r *Ring) Rewind() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.cursor = -1
}

// Current returns the line at the cursor, or the empty string if not browsing.
func (r *Ring) Current() string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.current()
}

func (r *Ring) current() string {
	if r.cursor < 0 {
		return ""
	}
	return r.lines[r.cursor]
}

// Cursor returns the current cursor position.
func (r *Ring) Cursor() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.cursor
}

// Len returns the number of lines held.
func (r *Ring) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.lines)
}

// Lines returns a copy of the held lines, most recent first.
func (r *Ring) Lines() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]string{}, r.lines...)
}
