// Package store provides client-side persistence for the interpreter: a
// content-addressed continuation store backing merkleized-case disclosure,
// and an instance store for (contract, state) session snapshots. The
// interpreter core never performs lookups itself; callers resolve
// continuations here before constructing inputs.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/Mindburn-Labs/accord/pkg/contract"
	"github.com/Mindburn-Labs/accord/pkg/semantics"
)

// ErrNotFound reports a missing continuation or instance.
var ErrNotFound = errors.New("not found")

// ContinuationStore is the content-addressed continuation collaborator.
// Put returns the contract's hash; Get resolves a hash disclosed earlier.
type ContinuationStore interface {
	Put(ctx context.Context, c contract.Contract) (string, error)
	Get(ctx context.Context, hash string) (contract.Contract, error)
}

// Instance is a persisted contract session snapshot.
type Instance struct {
	ID       string
	Contract contract.Contract
	State    semantics.State
}

// InstanceStore persists contract sessions between transactions.
type InstanceStore interface {
	SaveInstance(ctx context.Context, inst Instance) (string, error)
	LoadInstance(ctx context.Context, id string) (Instance, error)
}

// MemoryStore is an in-memory ContinuationStore, safe for concurrent use.
// Contracts are immutable values, so stored references are shared safely.
type MemoryStore struct {
	mu            sync.RWMutex
	continuations map[string]contract.Contract
}

// NewMemoryStore creates an empty in-memory continuation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{continuations: make(map[string]contract.Contract)}
}

// Put stores a contract under its content hash.
func (m *MemoryStore) Put(_ context.Context, c contract.Contract) (string, error) {
	hash, err := contract.Hash(c)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.continuations[hash] = c
	return hash, nil
}

// Get resolves a contract by content hash.
func (m *MemoryStore) Get(_ context.Context, hash string) (contract.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.continuations[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}
