package storefakes

import (
	"fmt"
	"sync"

	"github.com/jobtrackapp/go-jobtrack-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests. Err, when set, is
// returned from every operation to exercise the degraded-storage paths.
type FakeStore struct {
	values map[string]string
	ops    []string
	lock   sync.RWMutex

	Err error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (s *FakeStore) Get(key string) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.Err != nil {
		return "", s.Err
	}
	value, ok := s.values[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}
	return value, nil
}

func (s *FakeStore) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.values[key] = value
	s.ops = append(s.ops, fmt.Sprintf("set %s=%s", key, value))
	return nil
}

func (s *FakeStore) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.values[key]; !ok {
		return session.ErrKeyNotFound
	}
	delete(s.values, key)
	s.ops = append(s.ops, "delete "+key)
	return nil
}

// Has reports whether a value is stored for key.
func (s *FakeStore) Has(key string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Ops returns the mutation log, in order.
func (s *FakeStore) Ops() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]string(nil), s.ops...)
}
