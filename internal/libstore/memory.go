package libstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eagraf/habitat-store/core/state/library"
)

// MemoryStore keeps the library in memory. It backs tests and runs where the library
// does not need to survive the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]library.Data
	now     func() time.Time
}

var _ library.Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]library.Data),
		now:     time.Now,
	}
}

func (s *MemoryStore) TryGet(ctx context.Context, appID string) (*library.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[appID]
	if !ok {
		return nil, false, nil
	}
	return &library.Entry{AppID: appID, Data: data}, true, nil
}

func (s *MemoryStore) Update(ctx context.Context, appID string, fn func(library.Data) library.Data) (*library.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before, ok := s.entries[appID]
	if !ok {
		before = library.Data{AddedAt: s.now()}
	}
	after := fn(before)
	s.entries[appID] = after
	logChange(appID, before, after)
	return &library.Entry{AppID: appID, Data: after}, nil
}

func (s *MemoryStore) Add(ctx context.Context, appID string) (*library.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[appID]
	if !ok {
		data = library.Data{AddedAt: s.now()}
		s.entries[appID] = data
	}
	return &library.Entry{AppID: appID, Data: data}, nil
}

func (s *MemoryStore) Remove(ctx context.Context, appID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[appID]
	delete(s.entries, appID)
	return ok, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*library.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*library.Entry, 0, len(s.entries))
	for id, data := range s.entries {
		entries = append(entries, &library.Entry{AppID: id, Data: data})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AppID < entries[j].AppID
	})
	return entries, nil
}
