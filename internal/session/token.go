package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dekarrin/tunamud/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

// Info is a summary of the session for showing to the player.
type Info struct {
	State      State
	PlayerName string

	// HasToken is whether a session token is stored.
	HasToken bool

	// Expires is when the stored token stops being good. It is the zero
	// time if the token is not a JWT or does not say.
	Expires time.Time
}

func (i Info) String() string {
	who := "nobody"
	if i.PlayerName != "" {
		who = i.PlayerName
	}
	s := fmt.Sprintf("%s (%s)", who, i.State)
	if !i.HasToken {
		return s + ", no saved session"
	}
	if i.Expires.IsZero() {
		return s + ", saved session"
	}
	return s + ", saved session expires " + i.Expires.Format(time.RFC1123)
}

// Info returns a summary of the session.
func (m *Manager) Info(ctx context.Context) (Info, error) {
	info := Info{State: m.state, PlayerName: m.PlayerName()}

	tok, err := m.store.Get(ctx, store.KeySessionToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return info, nil
		}
		return info, fmt.Errorf("read stored session: %w", err)
	}
	info.HasToken = true
	info.Expires = tokenExpiry(tok)

	if info.PlayerName == "" {
		if name, err := m.store.Get(ctx, store.KeyPlayerName); err == nil {
			info.PlayerName = name
		}
	}
	return info, nil
}

// tokenExpiry reads the expiry of a JWT without checking its signature. The
// client only ever displays it; the server is what decides if it is good.
func tokenExpiry(tok string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
