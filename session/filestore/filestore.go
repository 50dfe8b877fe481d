// Package filestore persists session tokens to a JSON file, the durable
// per-user equivalent of the browser's origin-scoped local storage.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/jobtrackapp/go-jobtrack-client/session"
)

const credentialsFile = "credentials.json"

var _ session.Store = (*Store)(nil)

// Store keeps its keys in a single JSON file under the given folder,
// created on first write with owner-only permissions.
type Store struct {
	path string
	lock sync.Mutex
}

func New(folder string) *Store {
	return &Store{path: filepath.Join(folder, credentialsFile)}
}

func (s *Store) Get(key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *Store) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return session.ErrKeyNotFound
	}
	delete(values, key)
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filestore] read")
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		// A corrupt credentials file reads as empty; the session
		// degrades to anonymous instead of failing.
		return map[string]string{}, nil
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "[filestore] create folder")
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[filestore] marshal")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[filestore] write")
	}
	return nil
}
