// Package bolt provides a Store backed by a single bbolt database file.
package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/dekarrin/tunamud/internal/store"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("tunamud")

// Store is a store.Store that keeps its data in a bbolt file.
type Store struct {
	db *bolt.DB
}

// NewDatastore opens (creating if needed) the bbolt file at path.
func NewDatastore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(key))
		if data == nil {
			return store.ErrNotFound
		}
		// data is only valid for the life of the transaction
		value = string(data)
		return nil
	})
	return value, err
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
