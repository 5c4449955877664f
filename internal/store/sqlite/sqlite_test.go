package sqlite

import (
	"context"
	"testing"

	"github.com/dekarrin/tunamud/internal/store"
	"github.com/dekarrin/tunamud/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Store(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := NewDatastore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func Test_Store_persistsAcrossReopen(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewDatastore(dir)
	require.NoError(err)
	require.NoError(s.Set(ctx, store.KeySessionToken, "keep-me"))
	require.NoError(s.Close())

	s, err = NewDatastore(dir)
	require.NoError(err)
	defer s.Close()

	tok, err := s.Get(ctx, store.KeySessionToken)
	assert.NoError(err)
	assert.Equal("keep-me", tok)
}
