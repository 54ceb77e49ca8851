package memory

import (
	"context"
	"sync"

	"github.com/krancour/dqueue/pkg/queue"
)

// blockingQueue is an in-process implementation of the queue.Queue and
// queue.Inspector interfaces.
type blockingQueue struct {
	name  string
	mu    sync.Mutex
	items []int
	// notifyCh is closed and replaced on every push, waking every parked
	// popper at once. Woken poppers race for the lock and any losers park
	// again on the replacement channel.
	notifyCh chan struct{}
	waiting  int
}

// Queue is the in-process queue handle. In addition to the queue.Queue and
// queue.Inspector interfaces, it reports how many callers are parked in Pop.
type Queue interface {
	queue.Queue
	queue.Inspector
	// Waiting returns the number of callers currently parked in Pop.
	Waiting() int
}

// NewQueue returns a new, empty, in-process queue. Most callers should attach
// to a queue by name via an Attacher instead.
func NewQueue(name string) Queue {
	return &blockingQueue{
		name:     name,
		notifyCh: make(chan struct{}),
	}
}

func (b *blockingQueue) Name() string {
	return b.name
}

func (b *blockingQueue) Push(ctx context.Context, item int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, item)
	close(b.notifyCh)
	b.notifyCh = make(chan struct{})
	return nil
}

func (b *blockingQueue) Pop(ctx context.Context) (int, error) {
	for {
		b.mu.Lock()
		if len(b.items) > 0 {
			item := b.items[0]
			b.items = b.items[1:]
			b.mu.Unlock()
			return item, nil
		}
		ch := b.notifyCh
		b.waiting++
		b.mu.Unlock()
		select {
		case <-ch:
			b.mu.Lock()
			b.waiting--
			b.mu.Unlock()
		case <-ctx.Done():
			b.mu.Lock()
			b.waiting--
			b.mu.Unlock()
			return 0, &queue.ErrInterruptedWait{
				Queue: b.name,
				Cause: ctx.Err(),
			}
		}
	}
}

func (b *blockingQueue) Len(context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.items)), nil
}

func (b *blockingQueue) Peek(_ context.Context, n int64) ([]int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > int64(len(b.items)) || n < 0 {
		n = int64(len(b.items))
	}
	items := make([]int, n)
	copy(items, b.items[:n])
	return items, nil
}

func (b *blockingQueue) Purge(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	return nil
}

func (b *blockingQueue) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waiting
}
