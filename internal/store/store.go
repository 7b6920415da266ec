package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value for key")

	// ErrUnknownDriver is returned by Open for an unsupported backend name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Keys owned by the stores. They never overlap, so no cross-key
// transactions are needed.
const (
	KeyTasks = "tasks"
	KeyUser  = "user"
)

// KV is the persistence adapter contract: a durable string-keyed map of
// raw JSON documents.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Open returns the backend selected by driver. path is a directory for the
// file driver and a database file for sqlite; it is ignored for memory.
func Open(driver, path string) (KV, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		return NewFileStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// LoadJSON decodes the document under key into v. It returns ErrNotFound
// when the key is absent.
func LoadJSON(kv KV, key string, v any) error {
	raw, err := kv.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(key, raw)
}
