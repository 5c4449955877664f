package session

import "fmt"

// State is where the player is in logging in.
type State int

const (
	// Anonymous is not logged in and not waiting on the server.
	Anonymous State = iota

	// Authenticating is waiting on the server to answer a login, character
	// creation, or restore.
	Authenticating

	// Authenticated is logged in as a character.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "ANONYMOUS"
	case Authenticating:
		return "AUTHENTICATING"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State][]State{
	Anonymous:      {Authenticating},
	Authenticating: {Authenticated, Anonymous},
	Authenticated:  {Anonymous},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
