package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dekarrin/tunamud/internal/store"
	"github.com/dekarrin/tunamud/internal/store/bolt"
	"github.com/dekarrin/tunamud/internal/store/inmem"
	"github.com/dekarrin/tunamud/internal/store/sqlite"
)

// StoreType is the type of a durable store.
type StoreType string

func (st StoreType) String() string {
	return string(st)
}

const (
	StoreNone     StoreType = "none"
	StoreSQLite   StoreType = "sqlite"
	StoreBolt     StoreType = "bolt"
	StoreInMemory StoreType = "inmem"
)

// ParseStoreType parses a string found in a connection string into a
// StoreType.
func ParseStoreType(s string) (StoreType, error) {
	sLower := strings.ToLower(s)

	switch sLower {
	case StoreSQLite.String():
		return StoreSQLite, nil
	case StoreBolt.String():
		return StoreBolt, nil
	case StoreInMemory.String():
		return StoreInMemory, nil
	default:
		return StoreNone, fmt.Errorf("store type not one of 'sqlite', 'bolt', or 'inmem': %q", s)
	}
}

// StoreConfig contains settings for opening the durable store.
type StoreConfig struct {
	// Type is the type of store. It also determines which of the other fields
	// are valid.
	Type StoreType

	// Path is the data directory for SQLite or the database file for bolt.
	Path string
}

// Connect opens the configured store.
func (sc StoreConfig) Connect() (store.Store, error) {
	switch sc.Type {
	case StoreInMemory:
		return inmem.NewDatastore(), nil
	case StoreSQLite:
		err := os.MkdirAll(sc.Path, 0770)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		st, err := sqlite.NewDatastore(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		return st, nil
	case StoreBolt:
		err := os.MkdirAll(filepath.Dir(sc.Path), 0770)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		st, err := bolt.NewDatastore(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("initialize bolt: %w", err)
		}
		return st, nil
	case StoreNone:
		return nil, fmt.Errorf("cannot connect to 'none' store")
	default:
		return nil, fmt.Errorf("unknown store type: %q", sc.Type.String())
	}
}

// ParseStoreConnString parses a store connection string of the form
// "engine:params" (or just "engine" if no other params are required) into a
// StoreConfig. For example, "sqlite:/data" gives a SQLite store that keeps its
// file in /data, "bolt:/data/client.bolt" gives a bolt store using that file,
// and "inmem" gives an in-memory store.
func ParseStoreConnString(s string) (StoreConfig, error) {
	var paramStr string
	parts := strings.SplitN(s, ":", 2)

	if len(parts) == 2 {
		paramStr = strings.TrimSpace(parts[1])
	}

	eng, err := ParseStoreType(strings.TrimSpace(parts[0]))
	if err != nil {
		return StoreConfig{}, fmt.Errorf("unsupported store engine: %w", err)
	}

	switch eng {
	case StoreInMemory:
		if paramStr != "" {
			return StoreConfig{}, fmt.Errorf("unsupported param(s) for in-memory store: %s", paramStr)
		}
		return StoreConfig{Type: StoreInMemory}, nil
	case StoreSQLite:
		if paramStr == "" {
			return StoreConfig{}, fmt.Errorf("sqlite store requires path to data directory after ':'")
		}
		return StoreConfig{Type: StoreSQLite, Path: paramStr}, nil
	case StoreBolt:
		if paramStr == "" {
			return StoreConfig{}, fmt.Errorf("bolt store requires path to database file after ':'")
		}
		return StoreConfig{Type: StoreBolt, Path: paramStr}, nil
	default:
		return StoreConfig{}, fmt.Errorf("unknown store engine: %q", eng.String())
	}
}
