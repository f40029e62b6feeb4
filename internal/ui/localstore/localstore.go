// Package localstore is the terminal reader's localStorage: a small
// persistent string key/value store.
package localstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketLocal = []byte("local")

// Storage is the key/value view the page collaborators use.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Bolt is a Storage kept in a bbolt file.
type Bolt struct {
	db *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Bolt, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("local store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLocal)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (s *Bolt) Get(key string) (string, bool, error) {
	var (
		val   string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketLocal).Get([]byte(key)); v != nil {
			val, found = string(v), true
		}
		return nil
	})
	return val, found, err
}

func (s *Bolt) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocal).Put([]byte(key), []byte(value))
	})
}

func (s *Bolt) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocal).Delete([]byte(key))
	})
}

func (s *Bolt) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Memory is a Storage that forgets everything on exit.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
