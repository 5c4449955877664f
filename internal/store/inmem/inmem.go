// Package inmem provides a Store that keeps everything in memory. Nothing
// survives the process exiting.
package inmem

import (
	"context"
	"sync"

	"github.com/dekarrin/tunamud/internal/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mtx  sync.Mutex
	data map[string]string
}

// NewDatastore creates an empty in-memory Store.
func NewDatastore() *Store {
	return &Store{data: map[string]string{}}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	v, ok := s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.data[key] = value
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.data, key)
	return nil
}

func (s *Store) Close() error {
	return nil
}
