// Package secstore provides small named-secret stores for session
// tokens: an in-memory store for tests and throwaway sessions, and an
// encrypted file store for persistence across runs.
package secstore

import "sync"

// Mem is an in-memory secret store. Contents die with the process.
type Mem struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMem returns an empty in-memory store.
func NewMem() *Mem {
	return &Mem{m: make(map[string]string)}
}

func (s *Mem) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *Mem) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Mem) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
