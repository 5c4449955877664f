// Package tmerrors holds the player-facing error types of the TunaMUD client.
// Each carries a human-readable message to show in the console as well as a
// more technical "error message" style description.
//
// The four classes are ParseFailure, TransportFailure, AuthFailure, and
// ValidationFailure. None of them is fatal to the client.
package tmerrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/tunamud/internal/util"
)

var (
	// ErrNotConnected is returned when something is sent while the connection
	// is not open.
	ErrNotConnected = errors.New("not connected to the server")

	// ErrRequestPending is returned when a session request is attempted while
	// another one is still waiting on the server.
	ErrRequestPending = errors.New("another session request is still pending")

	// ErrInvalidState is returned when an operation is attempted from a state
	// that does not allow it.
	ErrInvalidState = errors.New("operation not valid in current state")
)

// Reason is why a ParseFailure occurred.
type Reason int

const (
	// Empty means there was nothing to parse.
	Empty Reason = iota

	// UnrecognizedForm means the tokens did not match any known form for the
	// verb.
	UnrecognizedForm
)

func (r Reason) String() string {
	switch r {
	case Empty:
		return "EMPTY"
	case UnrecognizedForm:
		return "UNRECOGNIZED_FORM"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ParseFailure is returned by the command parser when input cannot be turned
// into exactly one command. Input is never guessed at.
type ParseFailure struct {
	Reason Reason

	// Input is the tokens that failed to parse.
	Input []string

	// Detail is an optional note on which part of the form was wrong.
	Detail string
}

func (e *ParseFailure) Error() string {
	msg := fmt.Sprintf("parse %q: %s", strings.Join(e.Input, " "), e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// GameMessage gives a hint to show the player. It is drawn from the hint pool
// so repeated failures do not always read the same.
func (e *ParseFailure) GameMessage() string {
	if e.Reason == Empty {
		return "You need to type something first."
	}
	return Hint()
}

// Parse returns a new ParseFailure.
func Parse(reason Reason, tokens []string, detailFormat string, a ...interface{}) error {
	return &ParseFailure{
		Reason: reason,
		Input:  append([]string{}, tokens...),
		Detail: fmt.Sprintf(detailFormat, a...),
	}
}

// TransportFailure is a connection that could not be established or that was
// lost.
type TransportFailure struct {
	URL  string
	wrap error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("connection to %s: %v", e.URL, e.wrap)
}

// GameMessage shows the message that should be displayed in the console.
func (e *TransportFailure) GameMessage() string {
	return "Lost contact with the server. Type #connect to try again."
}

// Unwrap gives the error that caused the connection to fail.
func (e *TransportFailure) Unwrap() error {
	return e.wrap
}

// Transport returns a new TransportFailure for the given URL.
func Transport(url string, cause error) error {
	return &TransportFailure{URL: url, wrap: cause}
}

// AuthFailure is a login, restore, or character creation that the server
// rejected. Message is what the server said and is shown to the player
// verbatim.
type AuthFailure struct {
	Op      string
	Message string
}

func (e *AuthFailure) Error() string {
	return fmt.Sprintf("%s rejected by server: %s", e.Op, e.Message)
}

// GameMessage shows the message that should be displayed in the console.
func (e *AuthFailure) GameMessage() string {
	if e.Message == "" {
		return "The server refused your " + e.Op + "."
	}
	return e.Message
}

// Auth returns a new AuthFailure.
func Auth(op, serverMessage string) error {
	return &AuthFailure{Op: op, Message: serverMessage}
}

// ValidationFailure is a form that failed local checks before it was sent.
type ValidationFailure struct {
	// Missing is the names of required fields that were empty.
	Missing []string

	// Problems is any other issue found, such as mismatched passwords.
	Problems []string
}

func (e *ValidationFailure) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Problems...)
	return "validation failed: " + strings.Join(parts, "; ")
}

// GameMessage shows the message that should be displayed in the console.
func (e *ValidationFailure) GameMessage() string {
	var sb strings.Builder
	if len(e.Missing) > 0 {
		sb.WriteString("Please fill in ")
		sb.WriteString(util.MakeTextList(e.Missing, "and"))
		sb.WriteString(".")
	}
	for _, p := range e.Problems {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(strings.ToUpper(p[:1]) + p[1:] + ".")
	}
	return sb.String()
}

// Empty returns whether no problems at all were recorded.
func (e *ValidationFailure) Empty() bool {
	return len(e.Missing) == 0 && len(e.Problems) == 0
}

// GameMessage gets the message to display to the console for the given error.
// If it is one of the types defined in tmerrors, the special game message is
// returned. Otherwise, err.Error() is returned.
func GameMessage(err error) string {
	var gm interface{ GameMessage() string }
	if errors.As(err, &gm) {
		return gm.GameMessage()
	}
	if errors.Is(err, ErrNotConnected) {
		return "You are not connected. Type #connect first."
	}
	if errors.Is(err, ErrRequestPending) {
		return "Hold on, still waiting to hear back from the server."
	}
	return err.Error()
}
