package queue

import "context"

// Sentinel is the reserved value a producer pushes to signal that no more
// items will be produced. It is not a real payload value.
const Sentinel = -1

// Queue is a handle to a named, shared, blocking FIFO queue of integers.
// Implementations must make Push and Pop atomic and linearizable with respect
// to all other callers attached to the same named queue.
type Queue interface {
	// Name returns the name the queue was attached by.
	Name() string
	// Push appends an item to the tail of the queue.
	Push(ctx context.Context, item int) error
	// Pop removes and returns the item at the head of the queue. If the queue
	// is empty, Pop parks the caller until an item becomes available or the
	// context is canceled. A canceled wait returns an *ErrInterruptedWait.
	Pop(ctx context.Context) (int, error)
}

// Attacher is an interface for components that hand out Queue handles by
// name. The first attachment to a given name creates the queue; subsequent
// attachments refer to the same logical queue.
type Attacher interface {
	Attach(name string) (Queue, error)
}

// Inspector is an optional capability implemented by Queues that support
// operator tooling.
type Inspector interface {
	// Len returns the number of items currently in the queue.
	Len(ctx context.Context) (int64, error)
	// Peek returns up to n items from the head of the queue without removing
	// them. The head is the first element of the returned slice.
	Peek(ctx context.Context, n int64) ([]int, error)
	// Purge removes every item from the queue, including any sentinel.
	Purge(ctx context.Context) error
}
