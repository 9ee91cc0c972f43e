package templates

import (
	"context"
	"sync"
)

// MemoryStore is used when no redis address is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Template
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]Template{}}
}

func (s *MemoryStore) Get(_ context.Context, owner, recruiterID string) (Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.items[Key(owner, recruiterID)]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return tpl, nil
}

func (s *MemoryStore) Put(_ context.Context, owner, recruiterID string, tpl Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[Key(owner, recruiterID)] = tpl
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, owner, recruiterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key(owner, recruiterID)
	if _, ok := s.items[key]; !ok {
		return ErrTemplateNotFound
	}
	delete(s.items, key)
	return nil
}
