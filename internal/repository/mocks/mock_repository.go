// Package mocks provides an in-memory GateRepository for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/repository"
)

// MockRepository is an in-memory GateRepository honouring the full contract.
// The mutex stands in for the single-item atomicity a real backend provides.
type MockRepository struct {
	mu sync.RWMutex

	gates map[gate.Key]gate.Gate

	// For testing error scenarios
	shouldFailOn map[string]error
	calls        map[string]int
}

var _ repository.GateRepository = (*MockRepository)(nil)

// NewMockRepository creates an empty repository, optionally seeded.
func NewMockRepository(seed ...gate.Gate) *MockRepository {
	m := &MockRepository{
		gates:        make(map[gate.Key]gate.Gate),
		shouldFailOn: make(map[string]error),
		calls:        make(map[string]int),
	}
	for _, g := range seed {
		m.gates[g.Key] = g.Clone()
	}
	return m
}

// SetError configures the mock to return an error for a specific operation,
// e.g. repository.OpInsert.
func (m *MockRepository) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[op] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// Calls returns how often op was invoked.
func (m *MockRepository) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Len returns the number of stored gates.
func (m *MockRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.gates)
}

// record counts the call and returns any injected error. Callers hold mu.
func (m *MockRepository) record(op string) error {
	m.calls[op]++
	if err, exists := m.shouldFailOn[op]; exists {
		return err
	}
	return nil
}

func (m *MockRepository) Insert(ctx context.Context, g gate.Gate) (gate.Gate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(repository.OpInsert); err != nil {
		return gate.Gate{}, err
	}
	if _, exists := m.gates[g.Key]; exists {
		return gate.Gate{}, repository.NewAlreadyExists(repository.OpInsert, g.Key)
	}
	stored := g.Clone()
	if stored.Comments == nil {
		stored.Comments = map[string]gate.Comment{}
	}
	m.gates[g.Key] = stored
	return stored.Clone(), nil
}

func (m *MockRepository) FindOne(ctx context.Context, key gate.Key) (gate.Gate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(repository.OpFindOne); err != nil {
		return gate.Gate{}, false, err
	}
	g, ok := m.gates[key]
	if !ok {
		return gate.Gate{}, false, nil
	}
	return g.Clone(), true, nil
}

func (m *MockRepository) FindAll(ctx context.Context) ([]gate.Gate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(repository.OpFindAll); err != nil {
		return nil, err
	}
	out := make([]gate.Gate, 0, len(m.gates))
	for _, g := range m.gates {
		out = append(out, g.Clone())
	}
	return out, nil
}

func (m *MockRepository) Delete(ctx context.Context, key gate.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(repository.OpDelete); err != nil {
		return err
	}
	if _, ok := m.gates[key]; !ok {
		return repository.NewNotFound(repository.OpDelete, key)
	}
	delete(m.gates, key)
	return nil
}

// mutate applies fn to an existing gate under the write lock.
func (m *MockRepository) mutate(op string, key gate.Key, now time.Time, fn func(*gate.Gate) error) (gate.Gate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(op); err != nil {
		return gate.Gate{}, err
	}
	g, ok := m.gates[key]
	if !ok {
		return gate.Gate{}, repository.NewNotFound(op, key)
	}
	g = g.Clone()
	if err := fn(&g); err != nil {
		return gate.Gate{}, err
	}
	g.LastUpdated = now
	m.gates[key] = g
	return g.Clone(), nil
}

func (m *MockRepository) UpdateState(ctx context.Context, key gate.Key, state gate.State, now time.Time) (gate.Gate, error) {
	return m.mutate(repository.OpUpdateState, key, now, func(g *gate.Gate) error {
		g.State = state
		return nil
	})
}

func (m *MockRepository) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32, now time.Time) (gate.Gate, error) {
	return m.mutate(repository.OpUpdateDisplayOrder, key, now, func(g *gate.Gate) error {
		g.DisplayOrder = &order
		return nil
	})
}

func (m *MockRepository) UpsertComment(ctx context.Context, key gate.Key, comment gate.Comment, now time.Time) (gate.Gate, error) {
	return m.mutate(repository.OpUpsertComment, key, now, func(g *gate.Gate) error {
		g.Comments[comment.ID] = comment
		return nil
	})
}

func (m *MockRepository) DeleteCommentByID(ctx context.Context, key gate.Key, commentID string, now time.Time) (gate.Gate, error) {
	return m.mutate(repository.OpDeleteCommentByID, key, now, func(g *gate.Gate) error {
		if _, ok := g.Comments[commentID]; !ok {
			return repository.NewNotFound(repository.OpDeleteCommentByID, key)
		}
		delete(g.Comments, commentID)
		return nil
	})
}
