package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/krancour/dqueue/pkg/producer"
	redisQueue "github.com/krancour/dqueue/pkg/queue/redis"
	myRedis "github.com/krancour/dqueue/pkg/redis"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/krancour/dqueue/pkg/version"
)

func main() {
	// We need to parse flags for glog-related options to take effect
	flag.Parse()
	defer glog.Flush()

	glog.Infof(
		"Starting dqueue producer -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	config, err := getConfigFromEnvironment()
	if err != nil {
		glog.Fatal(err)
	}

	redisClient, redisConfig, err := myRedis.Client()
	if err != nil {
		glog.Fatal(err)
	}
	defer redisClient.Close()

	q, err := redisQueue.NewAttacher(
		redisClient,
		&redisQueue.QueueOptions{
			RedisPrefix: redisConfig.Prefix,
		},
	).Attach(config.QueueName)
	if err != nil {
		glog.Fatal(err)
	}

	if err := producer.PublishAll(
		signals.Context(),
		producer.NewProducer(q, nil),
		producer.Sequence(config.ItemCount),
		config.Delay,
	); err != nil {
		glog.Fatal(err)
	}
	glog.Infof(
		"published %d item(s) and the sentinel to queue %q",
		config.ItemCount,
		config.QueueName,
	)
}
