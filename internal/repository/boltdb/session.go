// Package boltdb persists the advisory session cache in a local bbolt
// file. The cache survives process restarts and is shared by every portal
// tab because it lives in the widget service, but it is never the source
// of truth: reconciliation against the attendance server always wins.
package boltdb

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/hrportal/attendance-widget-go/internal/domain/session"
)

var sessionBucket = []byte("session_state")

// Client wraps a bbolt database holding session state.
type Client struct {
	db *bolt.DB
}

// NewClient opens (or creates) the session database at path.
func NewClient(path string) (*Client, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare session store: %w", err)
	}

	return &Client{db: db}, nil
}

// Close releases the underlying database file.
func (c *Client) Close() error {
	return c.db.Close()
}

// SessionStore implements session.Store for one employee.
type SessionStore struct {
	client *Client
	key    []byte
}

// NewSessionStore returns the session.Store persisted under the given
// employee identity.
func NewSessionStore(client *Client, employeeID string) *SessionStore {
	return &SessionStore{
		client: client,
		key:    []byte(employeeID),
	}
}

// Get implements session.Store. A missing record is the zero State.
func (s *SessionStore) Get() (session.State, error) {
	var st session.State

	err := s.client.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(sessionBucket).Get(s.key)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &st)
	})
	if err != nil {
		return session.State{}, fmt.Errorf("failed to read session state: %w", err)
	}

	return st, nil
}

// Set implements session.Store.
func (s *SessionStore) Set(st session.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	err = s.client.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(s.key, raw)
	})
	if err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	return nil
}

// Clear implements session.Store.
func (s *SessionStore) Clear() error {
	err := s.client.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(s.key)
	})
	if err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}

	return nil
}
