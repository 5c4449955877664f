// Package session tracks whether the player is logged in and runs the login,
// character creation, restore, and logout exchanges with the server.
//
// A Manager is not safe for concurrent use; like the transport Manager it
// belongs to the event loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/store"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"go.uber.org/zap"
)

// Sender sends an envelope to the server.
type Sender interface {
	Send(kind string, payload interface{}) error
}

// Notifier shows the player what happened to their session.
type Notifier interface {
	// Notice shows an informational message.
	Notice(msg string)

	// Problem shows an error.
	Problem(err error)
}

// op is a session request that expects a reply.
type op string

const (
	opNone    op = ""
	opLogin   op = "login"
	opCreate  op = "character creation"
	opRestore op = "session restore"
)

// Manager is the session state machine. Create one with New.
type Manager struct {
	send   Sender
	store  store.Store
	notify Notifier
	log    *zap.Logger

	state State
	name  string

	pending   op
	pendingID string

	// OnCreateRejected is called when the server refuses a character
	// creation, with the *tmerrors.AuthFailure it was refused with.
	OnCreateRejected func(err error)
}

// New creates a Manager in the Anonymous state. If log is nil, nothing is
// logged.
func New(send Sender, st store.Store, notify Notifier, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		send:   send,
		store:  st,
		notify: notify,
		log:    log,
		state:  Anonymous,
	}
}

// State returns the current state.
func (m *Manager) State() State {
	return m.state
}

// PlayerName returns the name of the logged-in character, or the empty string
// if not Authenticated.
func (m *Manager) PlayerName() string {
	if m.state != Authenticated {
		return ""
	}
	return m.name
}

// Pending returns whether a request is waiting on the server.
func (m *Manager) Pending() bool {
	return m.pending != opNone
}

// Login asks the server to log in as an existing character. It is only valid
// while Anonymous and no other request is pending.
func (m *Manager) Login(ctx context.Context, name, password string) error {
	name = strings.TrimSpace(name)

	vf := &tmerrors.ValidationFailure{}
	if name == "" {
		vf.Missing = append(vf.Missing, "name")
	}
	if password == "" {
		vf.Missing = append(vf.Missing, "password")
	}
	if !vf.Empty() {
		return vf
	}

	return m.request(opLogin, protocol.KindLogin, func(id string) interface{} {
		return protocol.LoginRequest{RequestID: id, Name: name, Password: password}
	})
}

// CreateCharacter validates the form and, if it is good, asks the server to
// create the character and log into it. A form that fails validation returns
// a *tmerrors.ValidationFailure and nothing is sent.
func (m *Manager) CreateCharacter(ctx context.Context, cd CharacterData) error {
	if err := cd.Validate(); err != nil {
		return err
	}

	return m.request(opCreate, protocol.KindCreateCharacter, func(id string) interface{} {
		return cd.request(id)
	})
}

// Restore asks the server to resume the session of the stored token. If no
// token is stored, it does nothing. It is meant to be called each time a
// connection is established.
func (m *Manager) Restore(ctx context.Context) error {
	tok, err := m.store.Get(ctx, store.KeySessionToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.log.Debug("no stored session to restore")
			return nil
		}
		return fmt.Errorf("read stored session: %w", err)
	}

	if m.state == Authenticated {
		// the server forgets a session when its socket goes; if we were still
		// marked logged in, that is stale.
		m.setState(Anonymous)
	}

	return m.request(opRestore, protocol.KindRestoreSession, func(id string) interface{} {
		return protocol.RestoreRequest{RequestID: id, SessionToken: tok}
	})
}

// Logout ends the session. The notice to the server is sent if possible but
// not waited on; the stored token is cleared either way. It is only valid
// while Authenticated.
func (m *Manager) Logout(ctx context.Context) error {
	if m.state != Authenticated {
		return fmt.Errorf("logout while %s: %w", m.state, tmerrors.ErrInvalidState)
	}

	tok, err := m.store.Get(ctx, store.KeySessionToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		m.log.Warn("could not read session token for logout", zap.Error(err))
	}
	if err := m.send.Send(protocol.KindLogout, protocol.LogoutNotice{SessionToken: tok}); err != nil {
		m.log.Info("logout notice not sent", zap.Error(err))
	}

	m.forget(ctx)
	m.setState(Anonymous)
	return nil
}

// Disconnected tells the Manager the connection went away. Any pending
// request will never be answered, so it is abandoned. The stored token is
// kept so the session can be restored on the next connection.
func (m *Manager) Disconnected() {
	m.Abandon()
	if m.state != Anonymous {
		m.setState(Anonymous)
	}
}

// Abandon gives up on the pending request, if there is one, and returns to
// Anonymous so another can be made. A reply that arrives for it afterwards is
// ignored.
func (m *Manager) Abandon() {
	if m.pending == opNone {
		return
	}
	m.log.Info("abandoning request", zap.String("op", string(m.pending)))
	m.pending = opNone
	m.pendingID = ""
	m.setState(Anonymous)
}

func (m *Manager) request(o op, kind string, payload func(id string) interface{}) error {
	if m.pending != opNone {
		return fmt.Errorf("%s while %s is pending: %w", o, m.pending, tmerrors.ErrRequestPending)
	}
	if m.state != Anonymous {
		return fmt.Errorf("%s while %s: %w", o, m.state, tmerrors.ErrInvalidState)
	}

	id := protocol.NewRequestID()
	if err := m.send.Send(kind, payload(id)); err != nil {
		return err
	}

	m.pending = o
	m.pendingID = id
	m.setState(Authenticating)
	m.log.Debug("request sent", zap.String("op", string(o)), zap.String("request", id))
	return nil
}

// Handle takes the replies to session requests. It returns whether msg was
// one; anything else is left for the caller. Replies that do not answer the
// pending request are consumed and ignored.
func (m *Manager) Handle(ctx context.Context, msg protocol.Message) bool {
	var res protocol.Result
	var o op
	switch msg := msg.(type) {
	case protocol.LoginResult:
		res, o = msg.Result, opLogin
	case protocol.CreateCharacterResult:
		res, o = msg.Result, opCreate
	case protocol.RestoreResult:
		res, o = msg.Result, opRestore
	default:
		return false
	}

	if o != m.pending {
		m.log.Warn("ignoring unrequested reply", zap.String("op", string(o)), zap.String("pending", string(m.pending)))
		return true
	}
	if res.RequestID != "" && res.RequestID != m.pendingID {
		m.log.Warn("ignoring reply to another request", zap.String("op", string(o)), zap.String("request", res.RequestID))
		return true
	}
	m.pending = opNone
	m.pendingID = ""

	if res.Success {
		m.accept(ctx, o, res)
	} else {
		m.reject(ctx, o, res)
	}
	return true
}

func (m *Manager) accept(ctx context.Context, o op, res protocol.Result) {
	if res.SessionToken != "" {
		if err := m.store.Set(ctx, store.KeySessionToken, res.SessionToken); err != nil {
			m.log.Error("could not store session token", zap.Error(err))
		}
	}

	name := res.PlayerName
	if name == "" {
		stored, err := m.store.Get(ctx, store.KeyPlayerName)
		if err == nil {
			name = stored
		}
	}
	if name != "" {
		if err := m.store.Set(ctx, store.KeyPlayerName, name); err != nil {
			m.log.Error("could not store player name", zap.Error(err))
		}
	}

	m.name = name
	m.setState(Authenticated)
	m.log.Info("authenticated", zap.String("op", string(o)), zap.String("player", name))

	switch o {
	case opRestore:
		m.notify.Notice(fmt.Sprintf("Welcome back, %s.", displayName(name)))
	case opCreate:
		m.notify.Notice(fmt.Sprintf("%s has entered the world for the first time.", displayName(name)))
	default:
		m.notify.Notice(fmt.Sprintf("Welcome, %s.", displayName(name)))
	}
}

func (m *Manager) reject(ctx context.Context, o op, res protocol.Result) {
	m.setState(Anonymous)
	m.log.Info("rejected", zap.String("op", string(o)), zap.String("message", res.Message))

	err := tmerrors.Auth(string(o), res.Message)

	switch o {
	case opRestore:
		m.forget(ctx)
		m.notify.Problem(err)
	case opCreate:
		m.notify.Problem(err)
		if m.OnCreateRejected != nil {
			m.OnCreateRejected(err)
		}
	default:
		m.notify.Problem(err)
	}
}

// forget clears everything stored about the session.
func (m *Manager) forget(ctx context.Context) {
	if err := m.store.Remove(ctx, store.KeySessionToken); err != nil {
		m.log.Error("could not clear session token", zap.Error(err))
	}
	if err := m.store.Remove(ctx, store.KeyPlayerName); err != nil {
		m.log.Error("could not clear player name", zap.Error(err))
	}
	m.name = ""
}

func (m *Manager) setState(to State) {
	if !canTransition(m.state, to) {
		// every caller checks first, so this is a bug
		panic(fmt.Sprintf("session: illegal transition %s -> %s", m.state, to))
	}
	m.log.Debug("session state change", zap.Stringer("from", m.state), zap.Stringer("to", to))
	m.state = to
}

func displayName(name string) string {
	if name == "" {
		return "adventurer"
	}
	return name
}
