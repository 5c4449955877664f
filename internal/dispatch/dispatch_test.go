package dispatch

import (
	"context"
	"testing"

	"github.com/dekarrin/tunamud/internal/protocol"
	"github.com/dekarrin/tunamud/internal/session"
	"github.com/dekarrin/tunamud/internal/store/inmem"
	"github.com/dekarrin/tunamud/internal/tmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shown struct {
	tag     Tag
	content string
}

type fakeUI struct {
	shown  []shown
	states []protocol.PlayerState
}

func (f *fakeUI) Show(tag Tag, content string)       { f.shown = append(f.shown, shown{tag, content}) }
func (f *fakeUI) ApplyState(st protocol.PlayerState) { f.states = append(f.states, st) }

type fakeSession struct {
	got  []protocol.Message
	take bool
}

func (f *fakeSession) Handle(ctx context.Context, msg protocol.Message) bool {
	f.got = append(f.got, msg)
	return f.take
}

func Test_TagFor(t *testing.T) {
	testCases := []struct {
		kind   string
		expect Tag
	}{
		{"error", TagError},
		{"info", TagInfo},
		{"combat", TagCombat},
		{"npc", TagNPC},
		{"emote", TagEmote},
		{"tell", TagTell},
		{"tell-all", TagTellAll},
		{"tell-room", TagTellRoom},
		{"", TagPlain},
		{"weather", TagPlain},
		{"ERROR", TagPlain},
	}

	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			assert.Equal(t, tc.expect, TagFor(tc.kind))
		})
	}
}

func Test_Dispatcher_Receive(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		takeSession  bool
		expectShown  []shown
		expectStates int
		expectToSess int
	}{
		{
			name:        "display",
			input:       `{"type":"message","messageType":"combat","content":"You hit the rat."}`,
			expectShown: []shown{{TagCombat, "You hit the rat."}},
		},
		{
			name:        "display unknown kind is plain",
			input:       `{"type":"message","messageType":"weather","content":"It rains."}`,
			expectShown: []shown{{TagPlain, "It rains."}},
		},
		{
			name:         "state sync",
			input:        `{"type":"playerState","playerState":{"hp":10}}`,
			expectStates: 1,
		},
		{
			name:  "unknown type is ignored",
			input: `{"type":"fireworks","content":"boom"}`,
		},
		{
			name:  "garbage is dropped",
			input: `not json`,
		},
		{
			name:         "login result goes to session",
			input:        `{"type":"login","success":true,"playerName":"Brill","playerState":{"hp":10}}`,
			takeSession:  true,
			expectStates: 1,
			expectToSess: 1,
		},
		{
			name:         "failed login result applies no state",
			input:        `{"type":"login","success":false,"message":"no"}`,
			takeSession:  true,
			expectToSess: 1,
		},
		{
			name:         "result with malformed state still goes to session",
			input:        `{"type":"login","success":true,"playerName":"Brill","playerState":[1,2]}`,
			takeSession:  true,
			expectToSess: 1,
		},
		{
			name:        "display with malformed type is still shown",
			input:       `{"type":"message","messageType":7,"content":"A bell rings."}`,
			expectShown: []shown{{TagPlain, "A bell rings."}},
		},
		{
			name:         "result session does not take",
			input:        `{"type":"restoreSession","success":true,"playerState":{"hp":10}}`,
			expectToSess: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			ui := &fakeUI{}
			sess := &fakeSession{take: tc.takeSession}
			d := Dispatcher{Session: sess, UI: ui}

			d.Receive(context.Background(), []byte(tc.input))

			assert.Equal(tc.expectShown, ui.shown)
			assert.Len(ui.states, tc.expectStates)
			assert.Len(sess.got, tc.expectToSess)
		})
	}
}

func Test_Dispatcher_inOrder(t *testing.T) {
	assert := assert.New(t)
	ui := &fakeUI{}
	d := Dispatcher{Session: &fakeSession{}, UI: ui}

	for _, c := range []string{"one", "two", "three"} {
		d.Dispatch(context.Background(), protocol.Display{MessageType: "info", Content: c})
	}

	assert.Equal([]shown{{TagInfo, "one"}, {TagInfo, "two"}, {TagInfo, "three"}}, ui.shown)
}

type okSender struct{}

func (okSender) Send(kind string, payload interface{}) error { return nil }

type problemNotifier struct {
	problems []error
}

func (pn *problemNotifier) Notice(msg string) {}
func (pn *problemNotifier) Problem(err error) { pn.problems = append(pn.problems, err) }

func Test_Dispatcher_Receive_malformedReplyAnswersRequest(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	notes := &problemNotifier{}
	sess := session.New(okSender{}, inmem.NewDatastore(), notes, nil)
	d := Dispatcher{Session: sess, UI: &fakeUI{}}
	require.NoError(t, sess.Login(ctx, "Brill", "hunter2"))

	d.Receive(ctx, []byte(`{"type":"login","success":false,"message":"bad password","playerState":"n/a"}`))

	assert.Equal(session.Anonymous, sess.State())
	assert.False(sess.Pending())
	if assert.Len(notes.problems, 1) {
		assert.Equal("bad password", tmerrors.GameMessage(notes.problems[0]))
	}
	assert.NoError(sess.Login(ctx, "Brill", "pw"))
}
