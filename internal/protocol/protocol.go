// Package protocol defines the envelopes exchanged with the game server over
// the real-time connection. Every envelope is a JSON object with a "type"
// field; the other fields depend on the type.
package protocol

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Outbound envelope types.
const (
	KindLogin           = "login"
	KindCreateCharacter = "createNewCharacter"
	KindRestoreSession  = "restoreSession"
	KindLogout          = "logout"
	KindAction          = "action"
)

// Inbound envelope types that are not replies to one of the above.
const (
	KindPlayerState = "playerState"
	KindMessage     = "message"
)

// LoginRequest asks the server to log in an existing character.
type LoginRequest struct {
	RequestID string `json:"requestId"`
	Name      string `json:"name"`
	Password  string `json:"password"`
}

// CreateCharacterRequest asks the server to create a new character and log
// into it.
type CreateCharacterRequest struct {
	RequestID       string `json:"requestId"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email,omitempty"`
	Age             int    `json:"age,omitempty"`
	Sex             string `json:"sex"`
	Title           string `json:"title,omitempty"`
	Reputation      string `json:"reputation,omitempty"`
	Profession      string `json:"profession,omitempty"`
	Description     string `json:"description,omitempty"`
}

// RestoreRequest asks the server to resume the session the token was issued
// for.
type RestoreRequest struct {
	RequestID    string `json:"requestId"`
	SessionToken string `json:"sessionToken"`
}

// LogoutNotice tells the server the session is over. No reply is expected.
type LogoutNotice struct {
	SessionToken string `json:"sessionToken"`
}

// ActionRequest is a gameplay command.
type ActionRequest struct {
	Action string   `json:"action"`
	Args   []string `json:"args"`
}

// NewRequestID returns a fresh ID for correlating a request with its reply.
func NewRequestID() string {
	return uuid.NewString()
}

// Encode builds the envelope for the given kind with the fields of payload.
// payload must encode to a JSON object, or be nil for an envelope with only a
// type.
func Encode(kind string, payload interface{}) ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("%s payload is not an object: %w", kind, err)
		}
	}

	kindData, err := json.Marshal(kind)
	if err != nil {
		return nil, fmt.Errorf("marshal type: %w", err)
	}
	fields["type"] = kindData

	return json.Marshal(fields)
}
