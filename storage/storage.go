// Package storage holds single-document state backends used to persist favorites.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no document has been saved yet.
var ErrNotFound = errors.New("state not found")

// State loads and saves one opaque document.
type State interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// MemoryState is an in-memory State, mainly for tests.
type MemoryState struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func NewMemoryState(data []byte) *MemoryState {
	return &MemoryState{data: data}
}

// NewMemoryStateWithErrors returns a state whose Load and Save fail with the given errors (nil means succeed).
func NewMemoryStateWithErrors(loadErr, saveErr error) *MemoryState {
	return &MemoryState{loadErr: loadErr, saveErr: saveErr}
}

func (m *MemoryState) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryState) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many successful Save calls were made.
func (m *MemoryState) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Bytes returns a copy of the stored document.
func (m *MemoryState) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
