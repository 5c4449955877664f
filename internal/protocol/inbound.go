package protocol

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Message is a decoded inbound envelope. It is one of LoginResult,
// CreateCharacterResult, RestoreResult, StateSync, Display, or Unknown.
type Message interface {
	// Kind is the "type" of the envelope the Message was decoded from.
	Kind() string

	inbound()
}

// Result is the reply to a session request.
type Result struct {
	Success      bool
	Message      string
	SessionToken string
	PlayerName   string
	RequestID    string

	// State is the player state sent along with a successful reply, if any.
	State PlayerState
}

// LoginResult is the reply to a LoginRequest.
type LoginResult struct{ Result }

// CreateCharacterResult is the reply to a CreateCharacterRequest.
type CreateCharacterResult struct{ Result }

// RestoreResult is the reply to a RestoreRequest.
type RestoreResult struct{ Result }

// StateSync carries the full current state of the player.
type StateSync struct {
	State PlayerState
}

// Display is text for the player. MessageType controls how it is shown.
type Display struct {
	MessageType string
	Content     string
}

// Unknown is an envelope of a type this client does not handle.
type Unknown struct {
	Type string
	Raw  []byte
}

func (LoginResult) Kind() string           { return KindLogin }
func (CreateCharacterResult) Kind() string { return KindCreateCharacter }
func (RestoreResult) Kind() string         { return KindRestoreSession }
func (StateSync) Kind() string             { return KindPlayerState }
func (Display) Kind() string               { return KindMessage }
func (u Unknown) Kind() string             { return u.Type }

func (LoginResult) inbound()           {}
func (CreateCharacterResult) inbound() {}
func (RestoreResult) inbound()         {}
func (StateSync) inbound()             {}
func (Display) inbound()               {}
func (Unknown) inbound()               {}

// PlayerState is the player's state as sent by the server. Its fields are
// defined by the server; the client only shows them.
type PlayerState map[string]interface{}

// FieldError is returned by Decode along with a usable Message when some
// fields of an envelope could not be decoded. Those fields are left at their
// zero value in the Message.
type FieldError struct {
	Type   string
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s envelope has malformed fields: %s", e.Type, strings.Join(e.Fields, ", "))
}

// fields decodes the members of an envelope one at a time so that one bad
// member does not lose the rest.
type fields struct {
	raw map[string]json.RawMessage
	bad []string
}

// get decodes the named member into v. Members that are absent or null leave
// v alone. It returns false if the member was there but could not be decoded.
func (f *fields) get(name string, v interface{}) bool {
	data, ok := f.raw[name]
	if !ok || string(data) == "null" {
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		f.bad = append(f.bad, name)
		return false
	}
	return true
}

func (f *fields) str(name string) string {
	var s string
	if !f.get(name, &s) {
		return ""
	}
	return s
}

// Decode decodes an inbound envelope. An envelope with a type that is not
// known decodes to Unknown. Data that is not a JSON object with a string type
// is an error and no Message is returned.
//
// A malformed member other than type does not stop decoding; the Message is
// returned with that member left at its zero value, along with a *FieldError
// naming it. A reply whose success member is malformed is taken as a failure.
func Decode(data []byte) (Message, error) {
	f := &fields{}
	if err := json.Unmarshal(data, &f.raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	var kind string
	if raw, ok := f.raw["type"]; ok {
		if err := json.Unmarshal(raw, &kind); err != nil {
			return nil, fmt.Errorf("decode envelope type: %w", err)
		}
	}

	var success bool
	f.get("success", &success)

	var state PlayerState
	if !f.get("playerState", &state) {
		// may be partly filled
		state = nil
	}

	res := Result{
		Success:      success,
		Message:      f.str("message"),
		SessionToken: f.str("sessionToken"),
		PlayerName:   f.str("playerName"),
		RequestID:    f.str("requestId"),
		State:        state,
	}

	var msg Message
	switch kind {
	case KindLogin:
		msg = LoginResult{res}
	case KindCreateCharacter:
		msg = CreateCharacterResult{res}
	case KindRestoreSession:
		msg = RestoreResult{res}
	case KindPlayerState:
		msg = StateSync{State: state}
	case KindMessage:
		content := f.str("content")
		if content == "" {
			content = res.Message
		}
		msg = Display{MessageType: f.str("messageType"), Content: content}
	default:
		return Unknown{Type: kind, Raw: append([]byte{}, data...)}, nil
	}

	if len(f.bad) > 0 {
		return msg, &FieldError{Type: kind, Fields: f.bad}
	}
	return msg, nil
}
