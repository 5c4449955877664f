package tmerrors

import (
	"math/rand"
	"sync"
	"time"
)

// hints is the pool a ParseFailure draws from. Two failures in a row may well
// get the same one.
var hints = []string{
	"Huh?",
	"I don't understand that.",
	"That doesn't make any sense.",
	"What?",
	"You try to do that, but can't quite figure out how.",
	"Come again?",
	"Nobody knows what you mean by that.",
	"Try #help if you are stuck.",
}

var (
	hintMu  sync.Mutex
	hintRNG = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// SeedHints replaces the hint random source. Used to get repeatable hints.
func SeedHints(seed int64) {
	hintMu.Lock()
	defer hintMu.Unlock()
	hintRNG = rand.New(rand.NewSource(seed))
}

// Hints returns a copy of the hint pool.
func Hints() []string {
	return append([]string{}, hints...)
}

// Hint returns a random hint from the pool.
func Hint() string {
	hintMu.Lock()
	defer hintMu.Unlock()
	return hints[hintRNG.Intn(len(hints))]
}
