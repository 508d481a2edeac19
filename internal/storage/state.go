// Package storage persists the little client-side state that outlives a
// process: the auth token and the language preference.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")
	keyToken      = []byte("token")
	keyLanguage   = []byte("language")
)

type StateStore struct {
	db *bolt.DB
}

// Open opens (or creates) the state file, creating parent directories as
// needed.
func Open(path string) (*StateStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state bucket: %w", err)
	}
	return &StateStore{db: db}, nil
}

func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) get(key []byte) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSession).Get(key); v != nil {
			value = string(v)
		}
		return nil
	})
	return value, err
}

func (s *StateStore) put(key []byte, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put(key, []byte(value))
	})
}

// Token returns the stored auth token, empty when logged out.
func (s *StateStore) Token() (string, error) {
	return s.get(keyToken)
}

func (s *StateStore) SaveToken(token string) error {
	return s.put(keyToken, token)
}

func (s *StateStore) ClearToken() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(keyToken)
	})
}

// Language returns the stored language preference, empty if never set.
func (s *StateStore) Language() (string, error) {
	return s.get(keyLanguage)
}

func (s *StateStore) SaveLanguage(lang string) error {
	return s.put(keyLanguage, lang)
}
