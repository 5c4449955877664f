// Package storetest holds checks that every store.Store implementation must
// pass.
package storetest

import (
	"context"
	"testing"

	"github.com/dekarrin/tunamud/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run runs the store checks against stores made by newStore. newStore is
// called once per check and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		assert := assert.New(t)
		s := newStore(t)
		defer s.Close()

		_, err := s.Get(ctx, store.KeySessionToken)

		assert.ErrorIs(err, store.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		s := newStore(t)
		defer s.Close()

		require.NoError(s.Set(ctx, store.KeySessionToken, "abc"))
		require.NoError(s.Set(ctx, store.KeyPlayerName, "Bob"))

		tok, err := s.Get(ctx, store.KeySessionToken)
		assert.NoError(err)
		assert.Equal("abc", tok)

		name, err := s.Get(ctx, store.KeyPlayerName)
		assert.NoError(err)
		assert.Equal("Bob", name)
	})

	t.Run("set replaces", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		s := newStore(t)
		defer s.Close()

		require.NoError(s.Set(ctx, store.KeySessionToken, "old"))
		require.NoError(s.Set(ctx, store.KeySessionToken, "new"))

		tok, err := s.Get(ctx, store.KeySessionToken)
		assert.NoError(err)
		assert.Equal("new", tok)
	})

	t.Run("remove", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		s := newStore(t)
		defer s.Close()

		require.NoError(s.Set(ctx, store.KeySessionToken, "abc"))
		require.NoError(s.Remove(ctx, store.KeySessionToken))

		_, err := s.Get(ctx, store.KeySessionToken)
		assert.ErrorIs(err, store.ErrNotFound)
	})

	t.Run("remove missing is not an error", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()

		assert.NoError(t, s.Remove(ctx, "nothing-here"))
	})
}
