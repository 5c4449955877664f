// Package store provides durable client-side key-value storage, used to keep
// the session token and player name between runs of the client.
package store

import (
	"context"
	"errors"
)

// Keys used by the session manager.
const (
	KeySessionToken = "sessionToken"
	KeyPlayerName   = "playerName"
)

var (
	ErrNotFound = errors.New("the requested key was not found")
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value stored under key. If there is none, the returned
	// error will match ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes the value under key. Removing a key that does not exist
	// is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the Store.
	Close() error
}
