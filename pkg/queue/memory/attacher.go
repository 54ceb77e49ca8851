package memory

import (
	"sync"

	"github.com/krancour/dqueue/pkg/queue"
)

// Attacher hands out in-process queues by name. All handles attached by the
// same name through the same Attacher share one underlying queue.
type Attacher struct {
	mu     sync.Mutex
	queues map[string]Queue
}

// NewAttacher returns a new in-process Attacher with no queues.
func NewAttacher() *Attacher {
	return &Attacher{
		queues: map[string]Queue{},
	}
}

// Attach implements queue.Attacher.
func (a *Attacher) Attach(name string) (queue.Queue, error) {
	return a.AttachMemory(name), nil
}

// AttachMemory is like Attach, but returns the richer in-process handle.
func (a *Attacher) AttachMemory(name string) Queue {
	a.mu.Lock()
	defer a.mu.Unlock()
	q, ok := a.queues[name]
	if !ok {
		q = NewQueue(name)
		a.queues[name] = q
	}
	return q
}
