package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps records in a map. Records are copied through the codec
// so callers cannot alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string][]byte
}

// NewMemoryStore returns a store that must be initialized before use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, record Record) error {
	payload, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.genomes[record.ID()] = payload
	return nil
}

// GetGenome reports false when no record has the id.
func (s *MemoryStore) GetGenome(_ context.Context, id string) (Record, bool, error) {
	s.mu.RLock()
	payload, ok := s.genomes[id]
	s.mu.RUnlock()

	if !ok {
		return Record{}, false, nil
	}
	record, err := DecodeRecord(payload)
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "decode genome %s", id)
	}
	return record, true, nil
}

// ListGenomes returns the stored ids in ascending order.
func (s *MemoryStore) ListGenomes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.genomes))
	for id := range s.genomes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
