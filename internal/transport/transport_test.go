package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

type testServer struct {
	*httptest.Server
	conns chan *websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{conns: make(chan *websocket.Conn, 4)}
	up := websocket.Upgrader{}

	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		c, err := up.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		ts.conns <- c
	})
	ts.Server = httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) host() string {
	return strings.TrimPrefix(ts.URL, "http://")
}

func (ts *testServer) accept(t *testing.T) *websocket.Conn {
	select {
	case c := <-ts.conns:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(testTimeout):
		t.Fatal("server never got a connection")
		return nil
	}
}

// deadHost returns an address nothing is listening on.
func deadHost(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

type recorder struct {
	mtx      sync.Mutex
	dials    []string
	received [][]byte
	opened   int
	closed   []error
}

func (r *recorder) Receive(data []byte) {
	r.received = append(r.received, data)
}

func (r *recorder) dialURLs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]string{}, r.dials...)
}

// newTestManager creates a Manager wired to a recorder that counts dials,
// opens, and closes.
func newTestManager(t *testing.T, cfg Config) (*Manager, chan Event, *recorder) {
	events := make(chan Event, 16)
	rec := &recorder{}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	m := New(cfg, events, rec, nil)

	orig := m.dial
	m.dial = func(ctx context.Context, u string) (*websocket.Conn, error) {
		rec.mtx.Lock()
		rec.dials = append(rec.dials, u)
		rec.mtx.Unlock()
		return orig(ctx, u)
	}
	m.OnOpen = func() { rec.opened++ }
	m.OnClosed = func(err error) { rec.closed = append(rec.closed, err) }

	t.Cleanup(m.Shutdown)
	return m, events, rec
}

// pump hands events to the manager the way the event loop does until done
// returns true.
func pump(t *testing.T, m *Manager, events <-chan Event, done func() bool) {
	t.Helper()
	deadline := time.After(testTimeout)
	for !done() {
		select {
		case ev := <-events:
			m.Handle(ev)
		case <-deadline:
			t.Fatalf("timed out in state %s", m.State())
		}
	}
}

func assertNoEvents(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected %s event", ev.Kind)
	case <-time.After(100 * time.Millisecond):
	}
}

func Test_Manager_Connect_secureFallsBackToInsecure(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)
	m, events, rec := newTestManager(t, Config{Host: ts.host(), DialTimeout: time.Second})

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(ConnectingSecure, m.State())

	pump(t, m, events, func() bool { return m.State() == Open })

	assert.Equal([]string{"wss://" + ts.host() + "/ws", "ws://" + ts.host() + "/ws"}, rec.dialURLs())
	assert.Equal(1, rec.opened)
	assert.Empty(rec.closed)
	assert.Equal("ws://"+ts.host()+"/ws", m.URL())
}

func Test_Manager_Connect_fallsBackOnlyOnce(t *testing.T) {
	assert := assert.New(t)
	host := deadHost(t)
	m, events, rec := newTestManager(t, Config{Host: host, DialTimeout: time.Second})

	require.NoError(t, m.Connect(context.Background()))
	pump(t, m, events, func() bool { return len(rec.closed) > 0 })

	assert.Equal(Closed, m.State())
	assert.Equal([]string{"wss://" + host + "/ws", "ws://" + host + "/ws"}, rec.dialURLs())
	assert.Equal(0, rec.opened)

	var tf *tmerrors.TransportFailure
	assert.ErrorAs(rec.closed[0], &tf)
	assertNoEvents(t, events)
	assert.Len(rec.dialURLs(), 2)
}

func Test_Manager_Connect_fallbackResetsPerConnect(t *testing.T) {
	assert := assert.New(t)
	host := deadHost(t)
	m, events, rec := newTestManager(t, Config{Host: host, DialTimeout: time.Second})

	require.NoError(t, m.Connect(context.Background()))
	pump(t, m, events, func() bool { return len(rec.closed) == 1 })
	require.NoError(t, m.Connect(context.Background()))
	pump(t, m, events, func() bool { return len(rec.closed) == 2 })

	assert.Len(rec.dialURLs(), 4)
}

func Test_Manager_Connect_fallbackUsesConnectContext(t *testing.T) {
	assert := assert.New(t)
	m, events, rec := newTestManager(t, Config{Host: deadHost(t)})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mtx sync.Mutex
	var dialCtxErrs []error
	m.dial = func(dialCtx context.Context, u string) (*websocket.Conn, error) {
		mtx.Lock()
		dialCtxErrs = append(dialCtxErrs, dialCtx.Err())
		mtx.Unlock()

		// the caller gives up while the secure attempt is failing
		cancel()
		return nil, errors.New("connection refused")
	}

	require.NoError(t, m.Connect(ctx))
	pump(t, m, events, func() bool { return len(rec.closed) > 0 })

	mtx.Lock()
	defer mtx.Unlock()
	assert.Equal([]error{nil, context.Canceled}, dialCtxErrs)
	assert.Equal(Closed, m.State())
}

func Test_Manager_Connect_insecureOnly(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)
	m, events, rec := newTestManager(t, Config{Host: ts.host(), Insecure: true})

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(ConnectingInsecure, m.State())
	pump(t, m, events, func() bool { return m.State() == Open })

	assert.Equal([]string{"ws://" + ts.host() + "/ws"}, rec.dialURLs())
}

func Test_Manager_Connect_whileNotClosed(t *testing.T) {
	ts := newTestServer(t)
	m, events, _ := newTestManager(t, Config{Host: ts.host(), Insecure: true})

	require.NoError(t, m.Connect(context.Background()))
	assert.ErrorIs(t, m.Connect(context.Background()), tmerrors.ErrInvalidState)

	pump(t, m, events, func() bool { return m.State() == Open })
	assert.ErrorIs(t, m.Connect(context.Background()), tmerrors.ErrInvalidState)
}

func Test_Manager_Send(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ts := newTestServer(t)
	m, events, _ := newTestManager(t, Config{Host: ts.host(), Insecure: true, WriteTimeout: time.Second})

	err := m.Send(protocol.KindAction, protocol.ActionRequest{Action: "SIT", Args: []string{}})
	assert.ErrorIs(err, tmerrors.ErrNotConnected)

	require.NoError(m.Connect(context.Background()))
	err = m.Send(protocol.KindAction, protocol.ActionRequest{Action: "SIT", Args: []string{}})
	assert.ErrorIs(err, tmerrors.ErrNotConnected, "sending while connecting must fail")

	pump(t, m, events, func() bool { return m.State() == Open })
	srv := ts.accept(t)

	require.NoError(m.Send(protocol.KindAction, protocol.ActionRequest{Action: "GET_ALL", Args: []string{}}))

	srv.SetReadDeadline(time.Now().Add(testTimeout))
	_, data, err := srv.ReadMessage()
	require.NoError(err)

	var got map[string]interface{}
	require.NoError(json.Unmarshal(data, &got))
	assert.Equal(map[string]interface{}{"type": "action", "action": "GET_ALL", "args": []interface{}{}}, got)
}

func Test_Manager_receivesInOrderUnmodified(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)
	m, events, rec := newTestManager(t, Config{Host: ts.host(), Insecure: true})

	require.NoError(t, m.Connect(context.Background()))
	pump(t, m, events, func() bool { return m.State() == Open })
	srv := ts.accept(t)

	frames := []string{
		`{"type":"message","content":"one"}`,
		`{"type":"whatever",   "x":1}`,
		`not even json`,
	}
	for _, f := range frames {
		require.NoError(t, srv.WriteMessage(websocket.TextMessage, []byte(f)))
	}

	pump(t, m, events, func() bool { return len(rec.received) == len(frames) })

	for i := range frames {
		assert.Equal(frames[i], string(rec.received[i]))
	}
}

func Test_Manager_serverCloseDoesNotReconnect(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)
	m, events, rec := newTestManager(t, Config{Host: ts.host(), Insecure: true})

	require.NoError(t, m.Connect(context.Background()))
	pump(t, m, events, func() bool { return m.State() == Open })
	srv := ts.accept(t)

	srv.Close()
	pump(t, m, events, func() bool { return m.State() == Closed })

	assert.Len(rec.closed, 1)
	assert.Error(rec.closed[0])
	assertNoEvents(t, events)
	assert.Len(rec.dialURLs(), 1)
	assert.ErrorIs(m.Send(protocol.KindLogout, nil), tmerrors.ErrNotConnected)
}

func Test_Manager_Close(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)
	m, events, rec := newTestManager(t, Config{Host: ts.host(), Insecure: true})

	assert.NoError(m.Close(), "closing while closed")

	require.NoError(t, m.Connect(context.Background()))
	pump(t, m, events, func() bool { return m.State() == Open })
	srv := ts.accept(t)

	assert.NoError(m.Close())

	assert.Equal(Closed, m.State())
	assert.Equal([]error{nil}, rec.closed)

	srv.SetReadDeadline(time.Now().Add(testTimeout))
	_, _, err := srv.ReadMessage()
	assert.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	// the reader's closed event is from the old socket and changes nothing
	assertStaysClosed(t, m, events)
	assert.Len(rec.closed, 1)
}

func Test_Manager_Close_whileConnectingDropsLateResult(t *testing.T) {
	assert := assert.New(t)
	events := make(chan Event, 4)
	m := New(Config{Host: "example.invalid", Path: "/ws", Insecure: true}, events, ReceiverFunc(func([]byte) {}), nil)
	t.Cleanup(m.Shutdown)

	release := make(chan struct{})
	m.dial = func(ctx context.Context, u string) (*websocket.Conn, error) {
		<-release
		return nil, errors.New("too late")
	}
	var closes int
	m.OnClosed = func(error) { closes++ }

	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Close())
	close(release)

	select {
	case ev := <-events:
		m.Handle(ev)
	case <-time.After(testTimeout):
		t.Fatal("dial result never posted")
	}

	assert.Equal(Closed, m.State())
	assert.Equal(1, closes)
}

func assertStaysClosed(t *testing.T, m *Manager, events <-chan Event) {
	t.Helper()
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case ev := <-events:
			m.Handle(ev)
			assert.Equal(t, Closed, m.State())
		case <-deadline:
			return
		}
	}
}

func Test_canTransition(t *testing.T) {
	testCases := []struct {
		from   State
		to     State
		expect bool
	}{
		{Closed, ConnectingSecure, true},
		{Closed, ConnectingInsecure, true},
		{Closed, Open, false},
		{ConnectingSecure, ConnectingInsecure, true},
		{ConnectingSecure, Open, true},
		{ConnectingInsecure, ConnectingSecure, false},
		{ConnectingInsecure, Open, true},
		{Open, Closed, true},
		{Open, ConnectingSecure, false},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String()+" to "+tc.to.String(), func(t *testing.T) {
			assert.Equal(t, tc.expect, canTransition(tc.from, tc.to))
		})
	}
}

func Test_Config_URL(t *testing.T) {
	assert := assert.New(t)
	cfg := Config{Host: "mud.example.com:4000", Path: "/ws"}

	assert.Equal("wss://mud.example.com:4000/ws", cfg.URL(true))
	assert.Equal("ws://mud.example.com:4000/ws", cfg.URL(false))
}
