package consumer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/retries"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/time/rate"
)

// Consumer is an interface for components that drain items from a shared
// queue until they observe the sentinel, at which point they re-push the
// sentinel for the benefit of any sibling consumers and stop.
type Consumer interface {
	// ID returns the consumer's unique identifier.
	ID() string
	// QueueName returns the name of the queue the consumer drains.
	QueueName() string
	// State returns the consumer's current state.
	State() State
	// Consumed returns the number of real items the consumer has handled.
	Consumed() uint64
	// Run pops and handles items until the sentinel is observed, in which case
	// it returns nil, or until a fatal error occurs or the context is canceled,
	// in which case it returns a non-nil error. Run may only be called once.
	Run(context.Context) error
}

type consumer struct {
	id       string
	queue    queue.Queue
	options  Options
	started  int32
	consumed uint64

	mu    sync.RWMutex
	state State

	// The following behavior can be overridden for testing purposes
	repush func() error
}

// NewConsumer returns a Consumer that drains the provided queue.
func NewConsumer(q queue.Queue, options *Options) Consumer {
	if options == nil {
		options = &Options{}
	}
	options.applyDefaults()
	c := &consumer{
		id:      uuid.NewV4().String(),
		queue:   q,
		options: *options,
		state:   StateIdle,
	}
	c.repush = c.defaultRepush
	return c
}

// newPacer returns a limiter that admits one item per delay. Its only token is
// spent up front, so a wait on it lasts until a full delay has elapsed since
// the pacer was created. A fresh pacer is created for every item so that
// time spent parked in Pop never counts toward the next pause.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)
	limiter.Allow()
	return limiter
}

func (c *consumer) ID() string {
	return c.id
}

func (c *consumer) QueueName() string {
	return c.queue.Name()
}

func (c *consumer) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *consumer) Consumed() uint64 {
	return atomic.LoadUint64(&c.consumed)
}

func (c *consumer) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.options.Observer.StateChanged(c.id, c.queue.Name(), state)
}

func (c *consumer) Run(ctx context.Context) (err error) {
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		return errors.Errorf(
			"queue %q consumer %q has already been run",
			c.queue.Name(),
			c.id,
		)
	}

	c.options.Observer.ConsumerStarted(c.id, c.queue.Name())
	c.setState(StateRunning)
	defer func() {
		if err != nil {
			c.setState(StateFailed)
		}
		c.options.Observer.ConsumerStopped(c.id, c.queue.Name(), err)
	}()

	for {
		item, err := c.queue.Pop(ctx)
		if err != nil {
			// Not retried. A consumer that cannot pop is done for.
			return errors.Wrapf(
				err,
				"queue %q consumer %q failed to pop",
				c.queue.Name(),
				c.id,
			)
		}

		fmt.Fprintf(c.options.Output, "Consumed: %d\n", item)

		if item == queue.Sentinel {
			c.setState(StateShuttingDown)
			if err := c.repush(); err != nil {
				return errors.Wrapf(
					err,
					"queue %q consumer %q failed to re-push sentinel",
					c.queue.Name(),
					c.id,
				)
			}
			c.setState(StateDone)
			fmt.Fprintln(c.options.Output, "Consumer Finished!")
			return nil
		}

		pacer := newPacer(*c.options.ProcessingDelay)
		atomic.AddUint64(&c.consumed, 1)
		c.options.Observer.ItemConsumed(c.id, c.queue.Name(), item)
		if c.options.Handler != nil {
			if err := c.options.Handler(ctx, item); err != nil {
				glog.Errorf(
					"queue %q consumer %q encountered an error handling item %d: %s",
					c.queue.Name(),
					c.id,
					item,
					err,
				)
			}
		}

		if err := pacer.Wait(ctx); err != nil {
			return errors.Wrapf(
				&queue.ErrInterruptedWait{
					Queue: c.queue.Name(),
					Cause: err,
				},
				"queue %q consumer %q interrupted while pacing",
				c.queue.Name(),
				c.id,
			)
		}
	}
}

// defaultRepush puts the sentinel back onto the queue. It does not use the
// consumer's context. Once the sentinel has been popped, this consumer is its
// only custodian.
func (c *consumer) defaultRepush() error {
	ctx := context.Background()
	return retries.ManageRetries(
		ctx,
		fmt.Sprintf("re-push sentinel onto queue %q", c.queue.Name()),
		*c.options.RepushMaxAttempts,
		*c.options.RepushMaxBackoff,
		func() (bool, error) {
			err := c.queue.Push(ctx, queue.Sentinel)
			if err == nil {
				return false, nil
			}
			unavailable := &queue.ErrQueueUnavailable{}
			return errors.As(err, &unavailable), err
		},
	)
}
