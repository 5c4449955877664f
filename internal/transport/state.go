package transport

import "fmt"

// State is the state of the connection.
type State int

const (
	// Closed is no connection and no attempt in progress.
	Closed State = iota

	// ConnectingSecure is an encrypted (wss) connection attempt in progress.
	ConnectingSecure

	// ConnectingInsecure is an unencrypted (ws) connection attempt in
	// progress, either as the fallback from a failed secure attempt or
	// because secure connections are turned off.
	ConnectingInsecure

	// Open is an established connection.
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case ConnectingSecure:
		return "CONNECTING(secure)"
	case ConnectingInsecure:
		return "CONNECTING(insecure)"
	case Open:
		return "OPEN"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Connecting returns whether s is one of the connecting states.
func (s State) Connecting() bool {
	return s == ConnectingSecure || s == ConnectingInsecure
}

// transitions lists, for each state, the states it may move to.
var transitions = map[State][]State{
	Closed:             {ConnectingSecure, ConnectingInsecure},
	ConnectingSecure:   {Open, ConnectingInsecure, Closed},
	ConnectingInsecure: {Open, Closed},
	Open:               {Closed},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
