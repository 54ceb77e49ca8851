package journal

import (
	"context"
	"time"

	"github.com/krancour/dqueue/pkg/consumer"
)

// Run is a record of a single consumer's run against a named queue.
type Run struct {
	ID               string         `json:"id" bson:"id"`
	Queue            string         `json:"queue" bson:"queue"`
	State            consumer.State `json:"state" bson:"state"`
	ItemsConsumed    int64          `json:"itemsConsumed" bson:"itemsConsumed"`
	SentinelRepushed bool           `json:"sentinelRepushed" bson:"sentinelRepushed"` // nolint: lll
	Started          time.Time      `json:"started" bson:"started"`
	Ended            *time.Time     `json:"ended,omitempty" bson:"ended,omitempty"`
	Error            string         `json:"error,omitempty" bson:"error,omitempty"`
}

// Store is an interface for components that persist Runs.
type Store interface {
	// CreateRun persists a new Run.
	CreateRun(ctx context.Context, run Run) error
	// UpdateRunState records a state change for the specified Run. Recording
	// consumer.StateDone also marks the sentinel as re-pushed.
	UpdateRunState(ctx context.Context, id string, state consumer.State) error
	// IncrementItemsConsumed adds one to the specified Run's count of consumed
	// items.
	IncrementItemsConsumed(ctx context.Context, id string) error
	// EndRun marks the specified Run as ended. errMsg is empty if the run ended
	// because the sentinel was observed and re-pushed.
	EndRun(ctx context.Context, id string, ended time.Time, errMsg string) error
	// ListRuns returns the most recent Runs, newest first, optionally
	// restricted to a single queue.
	ListRuns(ctx context.Context, queueName string, limit int64) ([]Run, error)
}
