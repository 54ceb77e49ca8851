package redis

import (
	"context"
	"strconv"

	"github.com/go-redis/redis"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/pkg/errors"
)

// redisQueue is a Redis-based implementation of the queue.Queue and
// queue.Inspector interfaces. Items are pushed onto the left end of a list and
// popped from the right end, which yields FIFO ordering.
type redisQueue struct {
	name        string
	redisClient *redis.Client
	options     QueueOptions
	// itemsListKey is the key for the list holding the queue's items.
	itemsListKey string
}

// Attacher hands out Redis-backed queues by name. Redis creates the
// underlying list on first push, so attaching never touches the server.
type Attacher struct {
	redisClient *redis.Client
	options     QueueOptions
}

// NewAttacher returns a new Redis-based implementation of the queue.Attacher
// interface.
//
// Every consumer blocked in Pop holds one connection from the client's pool
// for the duration of its wait. Size the pool accordingly.
func NewAttacher(
	redisClient *redis.Client,
	options *QueueOptions,
) *Attacher {
	if options == nil {
		options = &QueueOptions{}
	}
	options.applyDefaults()
	return &Attacher{
		redisClient: redisClient,
		options:     *options,
	}
}

// Attach implements queue.Attacher.
func (a *Attacher) Attach(name string) (queue.Queue, error) {
	if name == "" {
		return nil, errors.New("queue name must not be empty")
	}
	return &redisQueue{
		name:         name,
		redisClient:  a.redisClient,
		options:      a.options,
		itemsListKey: itemsListKey(a.options.RedisPrefix, name),
	}, nil
}

func (r *redisQueue) Name() string {
	return r.name
}

func (r *redisQueue) Push(ctx context.Context, item int) error {
	if err := r.redisClient.WithContext(ctx).LPush(
		r.itemsListKey,
		strconv.Itoa(item),
	).Err(); err != nil {
		return &queue.ErrQueueUnavailable{
			Queue: r.name,
			Cause: errors.Wrapf(err, "error pushing %d", item),
		}
	}
	return nil
}

func (r *redisQueue) Pop(ctx context.Context) (int, error) {
	client := r.redisClient.WithContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return 0, &queue.ErrInterruptedWait{
				Queue: r.name,
				Cause: ctx.Err(),
			}
		default:
		}
		res, err := client.BRPop(*r.options.PopWaitTimeout, r.itemsListKey).Result()
		if err == redis.Nil {
			// Nothing arrived within this wait. Park again.
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return 0, &queue.ErrInterruptedWait{
					Queue: r.name,
					Cause: ctx.Err(),
				}
			}
			return 0, &queue.ErrQueueUnavailable{
				Queue: r.name,
				Cause: errors.Wrap(err, "error popping"),
			}
		}
		// BRPOP returns a key/value pair
		if len(res) != 2 {
			return 0, &queue.ErrQueueUnavailable{
				Queue: r.name,
				Cause: errors.Errorf("unexpected reply to pop: %v", res),
			}
		}
		item, err := strconv.Atoi(res[1])
		if err != nil {
			return 0, &queue.ErrQueueUnavailable{
				Queue: r.name,
				Cause: errors.Wrapf(err, "error decoding item %q", res[1]),
			}
		}
		return item, nil
	}
}

func (r *redisQueue) Len(ctx context.Context) (int64, error) {
	length, err := r.redisClient.WithContext(ctx).LLen(r.itemsListKey).Result()
	if err != nil {
		return 0, &queue.ErrQueueUnavailable{
			Queue: r.name,
			Cause: errors.Wrap(err, "error getting length"),
		}
	}
	return length, nil
}

func (r *redisQueue) Peek(ctx context.Context, n int64) ([]int, error) {
	if n == 0 {
		return []int{}, nil
	}
	// The head of the queue is the right end of the list
	start := -n
	if n < 0 {
		start = 0
	}
	vals, err := r.redisClient.WithContext(ctx).LRange(
		r.itemsListKey,
		start,
		-1,
	).Result()
	if err != nil {
		return nil, &queue.ErrQueueUnavailable{
			Queue: r.name,
			Cause: errors.Wrap(err, "error peeking"),
		}
	}
	items := make([]int, len(vals))
	for i, val := range vals {
		item, err := strconv.Atoi(val)
		if err != nil {
			return nil, &queue.ErrQueueUnavailable{
				Queue: r.name,
				Cause: errors.Wrapf(err, "error decoding item %q", val),
			}
		}
		items[len(vals)-1-i] = item
	}
	return items, nil
}

func (r *redisQueue) Purge(ctx context.Context) error {
	if err := r.redisClient.WithContext(ctx).Del(r.itemsListKey).Err(); err != nil {
		return &queue.ErrQueueUnavailable{
			Queue: r.name,
			Cause: errors.Wrap(err, "error purging"),
		}
	}
	return nil
}
