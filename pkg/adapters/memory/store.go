package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/ports"
)

// Store implements ports.MachineStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save keeps a copy of data.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	cp := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = cp
	return nil
}

// Load returns a copy so callers can't mutate the stored machine.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, domain.ErrMachineNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
