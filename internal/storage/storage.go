package storage

import (
	"context"
	"time"

	"github.com/michaelbrown/runcheck/internal/runner"
)

// Run is one recorded execution.
type Run struct {
	ID        string          `json:"id"`
	FileName  string          `json:"file_name"`
	Language  runner.Language `json:"language"`
	Status    runner.Status   `json:"status"`
	RuntimeMS float64         `json:"runtime_ms"`
	Stdout    string          `json:"stdout"`
	Stderr    string          `json:"stderr"`
	ExitCode  int             `json:"exit_code"`
	CreatedAt time.Time       `json:"created_at"`
}

// RunListOptions controls filtering and pagination for ListRuns.
type RunListOptions struct {
	Status runner.Status
	Limit  int
	Offset int
}

// Store is the persistence interface for run history.
type Store interface {
	// CreateRun inserts a new run record. The ID field must be set by the caller.
	CreateRun(ctx context.Context, run *Run) error

	// GetRun returns a run by ID or unambiguous ID prefix.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs ordered by created_at descending.
	ListRuns(ctx context.Context, opts RunListOptions) ([]Run, error)

	// DeleteRun removes a run record.
	DeleteRun(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
