package redis

import "time"

// QueueOptions represents configuration options for Redis-backed queues.
type QueueOptions struct {
	// RedisPrefix specifies a prefix for all Redis keys to effect some
	// rudimentary namespacing within a single Redis database.
	RedisPrefix string

	// PopWaitTimeout specifies how long a single server-side blocking pop may
	// wait before it is re-issued. Between waits, the caller's context is
	// checked for cancellation. Redis only honors whole seconds here.
	// Min: 1 second
	// Max: 1 minute
	// Default: 1 second
	PopWaitTimeout *time.Duration
}

func (q *QueueOptions) applyDefaults() {
	minPopWaitTimeout := time.Second
	maxPopWaitTimeout := time.Minute
	defaultPopWaitTimeout := time.Second
	if q.PopWaitTimeout == nil {
		q.PopWaitTimeout = &defaultPopWaitTimeout
	} else if *q.PopWaitTimeout < minPopWaitTimeout {
		q.PopWaitTimeout = &minPopWaitTimeout
	} else if *q.PopWaitTimeout > maxPopWaitTimeout {
		q.PopWaitTimeout = &maxPopWaitTimeout
	}
}
