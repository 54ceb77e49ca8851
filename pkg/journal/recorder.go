package journal

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/dqueue/pkg/consumer"
)

const defaultWriteTimeout = 5 * time.Second

// Recorder is a consumer.Observer that journals consumer runs to a Store.
// Store failures are logged and otherwise ignored; journaling never
// interferes with consumption.
type Recorder struct {
	store        Store
	writeTimeout time.Duration
	// now can be overridden for testing purposes
	now func() time.Time
}

// NewRecorder returns a Recorder backed by the provided Store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:        store,
		writeTimeout: defaultWriteTimeout,
		now:          time.Now,
	}
}

func (r *Recorder) do(
	consumerID string,
	op string,
	fn func(ctx context.Context) error,
) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		glog.Warningf(
			"error recording %s for consumer %q: %s",
			op,
			consumerID,
			err,
		)
	}
}

// ConsumerStarted implements consumer.Observer.
func (r *Recorder) ConsumerStarted(consumerID, queueName string) {
	r.do(consumerID, "start", func(ctx context.Context) error {
		return r.store.CreateRun(
			ctx,
			Run{
				ID:      consumerID,
				Queue:   queueName,
				State:   consumer.StateIdle,
				Started: r.now().UTC(),
			},
		)
	})
}

// ItemConsumed implements consumer.Observer.
func (r *Recorder) ItemConsumed(consumerID, _ string, _ int) {
	r.do(consumerID, "consumed item", func(ctx context.Context) error {
		return r.store.IncrementItemsConsumed(ctx, consumerID)
	})
}

// StateChanged implements consumer.Observer.
func (r *Recorder) StateChanged(
	consumerID string,
	_ string,
	state consumer.State,
) {
	r.do(consumerID, "state change", func(ctx context.Context) error {
		return r.store.UpdateRunState(ctx, consumerID, state)
	})
}

// ConsumerStopped implements consumer.Observer.
func (r *Recorder) ConsumerStopped(consumerID, _ string, err error) {
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	r.do(consumerID, "stop", func(ctx context.Context) error {
		return r.store.EndRun(ctx, consumerID, r.now().UTC(), errMsg)
	})
}
