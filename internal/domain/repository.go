package domain

import "context"

// RunRepository persists evaluation runs and their per-pair scores.
type RunRepository interface {
	// Create stores run and its items atomically and returns the stored run.
	Create(ctx context.Context, run *Run, items []RunItem) (*Run, error)
	// Get returns a run by ID, or a *NotFoundError.
	Get(ctx context.Context, id string) (*Run, error)
	// List returns runs newest first.
	List(ctx context.Context, page PageRequest) (Page[Run], error)
	// ListItems returns the items of a run ordered by position.
	ListItems(ctx context.Context, runID string) ([]RunItem, error)
}
