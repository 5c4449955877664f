// Package dispatch routes decoded server envelopes to the part of the client
// that handles them.
package dispatch

import (
	"context"

	"github.com/dekarrin/tunamud/internal/protocol"
	"go.uber.org/zap"
)

// SessionHandler takes the replies to session requests. Handle returns
// whether msg was one.
type SessionHandler interface {
	Handle(ctx context.Context, msg protocol.Message) bool
}

// UI is where server output ends up.
type UI interface {
	// Show displays server text presented per tag.
	Show(tag Tag, content string)

	// ApplyState replaces the displayed player state. Applying the same state
	// twice must look the same as applying it once.
	ApplyState(st protocol.PlayerState)
}

// Dispatcher sends each inbound envelope to its handler.
type Dispatcher struct {
	Session SessionHandler
	UI      UI
	Log     *zap.Logger
}

// Receive decodes an envelope and dispatches it. Envelopes that cannot be
// decoded are logged and dropped. An envelope with only some malformed fields
// is still dispatched without them, so a reply to a session request is never
// lost.
func (d Dispatcher) Receive(ctx context.Context, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		if msg == nil {
			d.logger().Warn("dropping undecodable envelope", zap.Error(err), zap.ByteString("data", data))
			return
		}
		d.logger().Warn("ignoring malformed fields", zap.Error(err))
	}
	d.Dispatch(ctx, msg)
}

// Dispatch sends msg to its handler.
func (d Dispatcher) Dispatch(ctx context.Context, msg protocol.Message) {
	switch msg := msg.(type) {
	case protocol.LoginResult:
		d.result(ctx, msg, msg.Result)
	case protocol.CreateCharacterResult:
		d.result(ctx, msg, msg.Result)
	case protocol.RestoreResult:
		d.result(ctx, msg, msg.Result)
	case protocol.StateSync:
		if msg.State != nil {
			d.UI.ApplyState(msg.State)
		}
	case protocol.Display:
		d.UI.Show(TagFor(msg.MessageType), msg.Content)
	case protocol.Unknown:
		d.logger().Debug("ignoring envelope of unknown type", zap.String("type", msg.Type))
	default:
		// only reachable if protocol adds a variant this switch was not
		// updated for
		d.logger().Error("no handler for inbound message", zap.String("type", msg.Kind()))
	}
}

func (d Dispatcher) result(ctx context.Context, msg protocol.Message, res protocol.Result) {
	if d.Session != nil && d.Session.Handle(ctx, msg) {
		if res.Success && res.State != nil {
			d.UI.ApplyState(res.State)
		}
		return
	}
	d.logger().Debug("session result not taken", zap.String("type", msg.Kind()))
}

func (d Dispatcher) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}
