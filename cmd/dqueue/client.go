package main

import (
	"github.com/go-redis/redis"
	"github.com/krancour/dqueue/pkg/queue"
	redisQueue "github.com/krancour/dqueue/pkg/queue/redis"
	myRedis "github.com/krancour/dqueue/pkg/redis"
	"github.com/pkg/errors"
)

// getQueue attaches to the named queue using the saved connection profile.
// The caller is responsible for closing the returned client.
func getQueue(name string) (queue.Queue, *redis.Client, error) {
	config, err := getConfig()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error retrieving configuration")
	}
	redisClient := myRedis.NewClient(config.Redis)
	q, err := redisQueue.NewAttacher(
		redisClient,
		&redisQueue.QueueOptions{
			RedisPrefix: config.Redis.Prefix,
		},
	).Attach(name)
	if err != nil {
		redisClient.Close()
		return nil, nil, err
	}
	return q, redisClient, nil
}

// getInspector is like getQueue, but returns a handle that can also be used
// to look inside the queue.
func getInspector(name string) (queue.Inspector, *redis.Client, error) {
	q, redisClient, err := getQueue(name)
	if err != nil {
		return nil, nil, err
	}
	inspector, ok := q.(queue.Inspector)
	if !ok {
		redisClient.Close()
		return nil, nil, errors.Errorf("queue %q cannot be inspected", name)
	}
	return inspector, redisClient, nil
}
