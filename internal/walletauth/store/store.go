// Package store persists registry state. Every backend stores the same three
// things: one record per registered wallet, the admin and the next-contract
// pointer.
package store

import (
	"context"
	"maps"
	"sync"

	"microauth/internal/walletauth/models"
	dErrors "microauth/pkg/domain-errors"
)

// ErrNotFound is returned by Load when nothing has been persisted yet.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "registry state not found")

// InMemoryStore keeps state in process memory. It is the default backend for
// local runs and tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	admin        string
	nextContract string
	records      map[string]models.Record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]models.Record)}
}

func (s *InMemoryStore) Load(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == "" {
		return nil, ErrNotFound
	}
	return &models.Snapshot{
		Admin:        s.admin,
		NextContract: s.nextContract,
		Records:      maps.Clone(s.records),
	}, nil
}

func (s *InMemoryStore) SaveRecord(_ context.Context, wallet string, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[wallet] = record
	return nil
}

func (s *InMemoryStore) SaveAdmin(_ context.Context, admin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = admin
	return nil
}

func (s *InMemoryStore) SaveNextContract(_ context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextContract = addr
	return nil
}

// Health always succeeds.
func (s *InMemoryStore) Health(context.Context) error { return nil }
