// Package transport owns the real-time connection to the game server. It
// negotiates a websocket connection, trying a secure one first and falling back
// once to an insecure one, and moves envelopes between the server and the
// rest of the client.
//
// A Manager is driven by an event loop: network activity happens on background
// goroutines that only ever post Events to a channel, and all state changes
// happen when the loop passes those Events to Manager.Handle. Manager methods
// must only be called from that loop.
package transport

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventKind is the kind of an Event.
type EventKind int

const (
	// EventDialed is a connection attempt that succeeded.
	EventDialed EventKind = iota

	// EventDialFailed is a connection attempt that failed.
	EventDialFailed

	// EventMessage is a frame received from the server.
	EventMessage

	// EventClosed is the established connection going away.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventDialed:
		return "dialed"
	case EventDialFailed:
		return "dial-failed"
	case EventMessage:
		return "message"
	case EventClosed:
		return "closed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is something that happened on the network. Events are produced by
// the Manager's goroutines and must be passed back to the Manager's Handle
// method by the event loop.
type Event struct {
	Kind EventKind
	Data []byte
	Err  error

	gen  uint64
	conn *websocket.Conn
}

// Receiver is given every envelope received from the server, unmodified.
type Receiver interface {
	Receive(data []byte)
}

// ReceiverFunc is a function that implements Receiver.
type ReceiverFunc func(data []byte)

// Receive calls f(data).
func (f ReceiverFunc) Receive(data []byte) {
	f(data)
}

// DialFunc opens a websocket connection to the given URL.
type DialFunc func(ctx context.Context, url string) (*websocket.Conn, error)

// Config is where and how to connect.
type Config struct {
	// Host is the HOST[:PORT] to connect to.
	Host string

	// Path is the path of the websocket endpoint.
	Path string

	// Insecure skips the secure attempt.
	Insecure bool

	// DialTimeout limits each connection attempt. Zero means no limit.
	DialTimeout time.Duration

	// WriteTimeout limits each send. Zero means no limit.
	WriteTimeout time.Duration
}

// URL returns the websocket URL for either the secure or the insecure scheme.
func (c Config) URL(secure bool) string {
	u := url.URL{Scheme: "ws", Host: c.Host, Path: c.Path}
	if secure {
		u.Scheme = "wss"
	}
	return u.String()
}

// Manager is the connection state machine. Create one with New.
type Manager struct {
	cfg    Config
	events chan<- Event
	recv   Receiver
	log    *zap.Logger
	dial   DialFunc
	done   chan struct{}

	state State
	url   string
	conn  *websocket.Conn

	// gen identifies the current attempt or connection. Events carrying any
	// other generation are from a superseded socket and are dropped.
	gen uint64

	// fellBack is whether the one fallback allowed for the current connect
	// has been used.
	fellBack bool

	// connectCtx is the context given to the current Connect. The fallback
	// dial runs under it as well.
	connectCtx context.Context

	cancelDial context.CancelFunc

	// OnOpen is called on entering Open.
	OnOpen func()

	// OnClosed is called on entering Closed. err is the TransportFailure
	// that caused it, or nil if the client closed the connection itself.
	OnClosed func(err error)
}

// New creates a Manager that posts its events to the given channel and gives
// everything received to recv. If log is nil, nothing is logged.
func New(cfg Config, events chan<- Event, recv Receiver, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		events: events,
		recv:   recv,
		log:    log,
		done:   make(chan struct{}),
		state:  Closed,
	}
	m.dial = m.defaultDial
	return m
}

func (m *Manager) defaultDial(ctx context.Context, u string) (*websocket.Conn, error) {
	d := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: m.cfg.DialTimeout,
	}
	conn, _, err := d.DialContext(ctx, u, nil)
	return conn, err
}

// State returns the current state.
func (m *Manager) State() State {
	return m.state
}

// URL returns the URL of the current or most recent connection attempt.
func (m *Manager) URL() string {
	return m.url
}

// Connect starts connecting. It is only valid from Closed. It returns as soon
// as the attempt is started; the outcome arrives as an Event.
func (m *Manager) Connect(ctx context.Context) error {
	if m.state != Closed {
		return fmt.Errorf("connect while %s: %w", m.state, tmerrors.ErrInvalidState)
	}

	m.fellBack = false
	m.connectCtx = ctx
	if m.cfg.Insecure {
		return m.startDial(ctx, false)
	}
	return m.startDial(ctx, true)
}

func (m *Manager) startDial(ctx context.Context, secure bool) error {
	to := ConnectingInsecure
	if secure {
		to = ConnectingSecure
	}
	if err := m.transition(to); err != nil {
		return err
	}

	m.release()
	m.gen++
	gen := m.gen
	m.url = m.cfg.URL(secure)

	var dialCtx context.Context
	var cancel context.CancelFunc
	if m.cfg.DialTimeout > 0 {
		dialCtx, cancel = context.WithTimeout(ctx, m.cfg.DialTimeout)
	} else {
		dialCtx, cancel = context.WithCancel(ctx)
	}
	m.cancelDial = cancel

	u := m.url
	m.log.Debug("dialing", zap.String("url", u), zap.Uint64("gen", gen))
	go func() {
		defer cancel()
		conn, err := m.dial(dialCtx, u)
		if err != nil {
			m.post(Event{Kind: EventDialFailed, Err: err, gen: gen})
			return
		}
		m.post(Event{Kind: EventDialed, conn: conn, gen: gen})
	}()
	return nil
}

// Handle applies an Event to the Manager. It is the only way the state
// changes in response to the network and must be called from the event loop
// for every Event received on the channel given to New.
func (m *Manager) Handle(ev Event) {
	if ev.gen != m.gen {
		m.log.Debug("dropping event from superseded socket", zap.Stringer("kind", ev.Kind), zap.Uint64("gen", ev.gen))
		if ev.conn != nil {
			ev.conn.Close()
		}
		return
	}

	switch ev.Kind {
	case EventDialed:
		m.handleDialed(ev)
	case EventDialFailed:
		m.handleDialFailed(ev)
	case EventMessage:
		if m.state == Open {
			m.recv.Receive(ev.Data)
		}
	case EventClosed:
		if m.state == Open {
			m.log.Info("connection lost", zap.String("url", m.url), zap.Error(ev.Err))
			m.fail(ev.Err)
		}
	}
}

func (m *Manager) handleDialed(ev Event) {
	if err := m.transition(Open); err != nil {
		m.log.Error("dialed in wrong state", zap.Error(err))
		ev.conn.Close()
		return
	}
	m.cancelDial = nil
	m.conn = ev.conn
	m.log.Info("connected", zap.String("url", m.url))

	go m.read(ev.conn, m.gen)

	if m.OnOpen != nil {
		m.OnOpen()
	}
}

func (m *Manager) handleDialFailed(ev Event) {
	m.log.Info("connection attempt failed", zap.String("url", m.url), zap.Error(ev.Err))
	m.cancelDial = nil

	if m.state == ConnectingSecure && !m.fellBack {
		m.fellBack = true
		if err := m.startDial(m.connectCtx, false); err != nil {
			m.log.Error("could not start fallback", zap.Error(err))
			m.fail(ev.Err)
		}
		return
	}
	m.fail(ev.Err)
}

// fail moves to Closed because of err and reports it.
func (m *Manager) fail(err error) {
	m.release()
	m.gen++
	if terr := m.transition(Closed); terr != nil {
		m.log.Error("fail in wrong state", zap.Error(terr))
	}
	if m.OnClosed != nil {
		m.OnClosed(tmerrors.Transport(m.url, err))
	}
}

func (m *Manager) read(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.post(Event{Kind: EventClosed, Err: err, gen: gen})
			return
		}
		m.post(Event{Kind: EventMessage, Data: data, gen: gen})
	}
}

func (m *Manager) post(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
		if ev.conn != nil {
			ev.conn.Close()
		}
	}
}

// Send sends an envelope of the given kind with the fields of payload. It is
// only valid while Open; otherwise an error matching tmerrors.ErrNotConnected
// is returned and nothing is queued. If the write fails, the connection is
// closed.
func (m *Manager) Send(kind string, payload interface{}) error {
	if m.state != Open {
		return fmt.Errorf("send %s while %s: %w", kind, m.state, tmerrors.ErrNotConnected)
	}

	data, err := protocol.Encode(kind, payload)
	if err != nil {
		return err
	}

	if m.cfg.WriteTimeout > 0 {
		m.conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		m.log.Info("write failed", zap.String("kind", kind), zap.Error(err))
		m.fail(err)
		return fmt.Errorf("send %s: %w", kind, err)
	}
	m.log.Debug("sent", zap.String("kind", kind))
	return nil
}

// Close closes the connection or abandons the attempt in progress. It is not
// an error to call Close while already Closed.
func (m *Manager) Close() error {
	if m.state == Closed {
		return nil
	}

	if m.conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = m.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	m.release()
	m.gen++
	if err := m.transition(Closed); err != nil {
		return err
	}
	if m.OnClosed != nil {
		m.OnClosed(nil)
	}
	return nil
}

// Shutdown closes the connection and stops all of the Manager's goroutines
// from posting further events. The Manager cannot be used afterwards.
func (m *Manager) Shutdown() {
	if m.state != Closed {
		m.release()
		m.gen++
		m.state = Closed
	}
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

// release drops the current socket, if any, and cancels any dial in
// progress. Its goroutines may still post events, but they will carry an old
// generation once gen is bumped.
func (m *Manager) release() {
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

func (m *Manager) transition(to State) error {
	if !canTransition(m.state, to) {
		return fmt.Errorf("transition %s -> %s: %w", m.state, to, tmerrors.ErrInvalidState)
	}
	m.log.Debug("state change", zap.Stringer("from", m.state), zap.Stringer("to", to))
	m.state = to
	return nil
}
