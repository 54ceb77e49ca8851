package producer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/krancour/dqueue/pkg/queue"
	"github.com/krancour/dqueue/pkg/retries"
	"github.com/pkg/errors"
)

// ErrReservedValue is returned when a caller attempts to publish the
// sentinel as though it were a real item.
var ErrReservedValue = errors.Errorf(
	"%d is reserved as the end-of-stream sentinel",
	queue.Sentinel,
)

// ErrClosed is returned when a caller attempts to publish to a Producer that
// has already been closed.
var ErrClosed = errors.New("producer is closed")

// Options represents configuration options for a Producer.
type Options struct {
	// CloseMaxAttempts specifies the maximum number of attempts that will be
	// made to push the sentinel when the producer is closed.
	// Min: 1
	// Max: 10
	// Default: 3
	CloseMaxAttempts *uint8
	// CloseMaxBackoff specifies the maximum delay between attempts to push the
	// sentinel.
	// Min: 1 second
	// Max: 1 minute
	// Default: 10 seconds
	CloseMaxBackoff *time.Duration
}

func (o *Options) applyDefaults() {
	var minCloseMaxAttempts uint8 = 1
	var maxCloseMaxAttempts uint8 = 10
	var defaultCloseMaxAttempts uint8 = 3
	if o.CloseMaxAttempts == nil {
		o.CloseMaxAttempts = &defaultCloseMaxAttempts
	} else if *o.CloseMaxAttempts < minCloseMaxAttempts {
		o.CloseMaxAttempts = &minCloseMaxAttempts
	} else if *o.CloseMaxAttempts > maxCloseMaxAttempts {
		o.CloseMaxAttempts = &maxCloseMaxAttempts
	}

	minCloseMaxBackoff := time.Second
	maxCloseMaxBackoff := time.Minute
	defaultCloseMaxBackoff := 10 * time.Second
	if o.CloseMaxBackoff == nil {
		o.CloseMaxBackoff = &defaultCloseMaxBackoff
	} else if *o.CloseMaxBackoff < minCloseMaxBackoff {
		o.CloseMaxBackoff = &minCloseMaxBackoff
	} else if *o.CloseMaxBackoff > maxCloseMaxBackoff {
		o.CloseMaxBackoff = &maxCloseMaxBackoff
	}
}

// Producer is an interface for components that push work items onto a shared
// queue and, once all work has been pushed, push exactly one sentinel.
type Producer interface {
	// Publish pushes a real item. The sentinel value is rejected, as is any
	// item published after Close.
	Publish(ctx context.Context, item int) error
	// Close pushes the sentinel. Only the first successful call has any
	// effect.
	Close(ctx context.Context) error
}

type producer struct {
	queue   queue.Queue
	options Options
	mu      sync.Mutex
	closed  bool
}

// NewProducer returns a Producer that pushes onto the provided queue.
func NewProducer(q queue.Queue, options *Options) Producer {
	if options == nil {
		options = &Options{}
	}
	options.applyDefaults()
	return &producer{
		queue:   q,
		options: *options,
	}
}

func (p *producer) Publish(ctx context.Context, item int) error {
	if item == queue.Sentinel {
		return ErrReservedValue
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return errors.Wrapf(
		p.queue.Push(ctx, item),
		"error publishing %d to queue %q",
		item,
		p.queue.Name(),
	)
}

func (p *producer) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	if err := retries.ManageRetries(
		ctx,
		fmt.Sprintf("push sentinel onto queue %q", p.queue.Name()),
		*p.options.CloseMaxAttempts,
		*p.options.CloseMaxBackoff,
		func() (bool, error) {
			err := p.queue.Push(ctx, queue.Sentinel)
			if err == nil {
				return false, nil
			}
			unavailable := &queue.ErrQueueUnavailable{}
			return errors.As(err, &unavailable), err
		},
	); err != nil {
		return err
	}
	p.closed = true
	return nil
}

// PublishAll publishes each of the provided items, pausing for the specified
// delay between items, then closes the producer. The pause is abandoned if
// the context is canceled.
func PublishAll(
	ctx context.Context,
	p Producer,
	items []int,
	delay time.Duration,
) error {
	for i, item := range items {
		if err := p.Publish(ctx, item); err != nil {
			return err
		}
		if delay <= 0 || i == len(items)-1 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(ctx.Err(), "publishing was interrupted")
		}
	}
	return errors.Wrap(p.Close(ctx), "error closing producer")
}

// Sequence returns the items 1 through n, inclusive.
func Sequence(n int) []int {
	items := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, i)
	}
	return items
}
