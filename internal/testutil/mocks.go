// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sync"

	"sql-eval/internal/domain"
)

// === Run Repository Mock ===

// MockRunRepo implements domain.RunRepository for testing. Calls without a
// configured Fn panic, except Create, which records the run in Runs.
type MockRunRepo struct {
	CreateFn    func(ctx context.Context, run *domain.Run, items []domain.RunItem) (*domain.Run, error)
	GetFn       func(ctx context.Context, id string) (*domain.Run, error)
	ListFn      func(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Run], error)
	ListItemsFn func(ctx context.Context, runID string) ([]domain.RunItem, error)

	mu    sync.Mutex
	Runs  []*domain.Run // collected runs for assertions
	Items map[string][]domain.RunItem
}

// Create implements the interface method for testing.
func (m *MockRunRepo) Create(ctx context.Context, run *domain.Run, items []domain.RunItem) (*domain.Run, error) {
	if m.CreateFn != nil {
		stored, err := m.CreateFn(ctx, run, items)
		if err != nil {
			return nil, err
		}
		m.collect(stored, items)
		return stored, nil
	}
	m.collect(run, items)
	return run, nil
}

func (m *MockRunRepo) collect(run *domain.Run, items []domain.RunItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, run)
	if m.Items == nil {
		m.Items = make(map[string][]domain.RunItem)
	}
	m.Items[run.ID] = items
}

// Get implements the interface method for testing.
func (m *MockRunRepo) Get(ctx context.Context, id string) (*domain.Run, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	panic("unexpected call to MockRunRepo.Get")
}

// List implements the interface method for testing.
func (m *MockRunRepo) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Run], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}
	panic("unexpected call to MockRunRepo.List")
}

// ListItems implements the interface method for testing.
func (m *MockRunRepo) ListItems(ctx context.Context, runID string) ([]domain.RunItem, error) {
	if m.ListItemsFn != nil {
		return m.ListItemsFn(ctx, runID)
	}
	panic("unexpected call to MockRunRepo.ListItems")
}

// LastRun returns the last collected run, or nil if none.
func (m *MockRunRepo) LastRun() *domain.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Runs) == 0 {
		return nil
	}
	return m.Runs[len(m.Runs)-1]
}
