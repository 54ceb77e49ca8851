package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/golang/glog"
	"github.com/krancour/dqueue/pkg/api"
	"github.com/krancour/dqueue/pkg/consumer"
	"github.com/krancour/dqueue/pkg/journal"
	journalMongo "github.com/krancour/dqueue/pkg/journal/mongodb"
	"github.com/krancour/dqueue/pkg/metrics"
	"github.com/krancour/dqueue/pkg/mongodb"
	redisQueue "github.com/krancour/dqueue/pkg/queue/redis"
	myRedis "github.com/krancour/dqueue/pkg/redis"
	"github.com/krancour/dqueue/pkg/signals"
	"github.com/krancour/dqueue/pkg/version"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// We need to parse flags for glog-related options to take effect
	flag.Parse()
	defer glog.Flush()

	glog.Infof(
		"Starting dqueue consumer -- version %s -- commit %s",
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

	attacher := redisQueue.NewAttacher(
		redisClient,
		&redisQueue.QueueOptions{
			RedisPrefix: redisConfig.Prefix,
		},
	)
	q, err := attacher.Attach(config.QueueName)
	if err != nil {
		glog.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		glog.Fatal(err)
	}
	observers := consumer.Observers{m}

	if config.JournalEnabled {
		database, err := mongodb.Database()
		if err != nil {
			glog.Fatal(err)
		}
		store, err := journalMongo.NewStore(database)
		if err != nil {
			glog.Fatal(err)
		}
		observers = append(observers, journal.NewRecorder(store))
	}

	consumers := make([]consumer.Consumer, config.Count)
	for i := range consumers {
		consumers[i] = consumer.NewConsumer(
			q,
			&consumer.Options{
				ProcessingDelay: &config.ProcessingDelay,
				Observer:        observers,
			},
		)
	}

	ctx, cancel := context.WithCancel(signals.Context())
	defer cancel()

	if config.StatusServerEnabled {
		serverConfig, err := api.GetConfigFromEnvironment()
		if err != nil {
			glog.Fatal(err)
		}
		server := api.NewServer(
			serverConfig,
			reg,
			api.NewConsumerEndpoints(consumers...),
		)
		go func() {
			if err := server.Run(ctx); err != nil &&
				errors.Cause(err) != context.Canceled &&
				err != http.ErrServerClosed {
				glog.Error(errors.Wrap(err, "status server stopped"))
			}
		}()
	}

	if err := consumer.RunGroup(ctx, consumers...); err != nil {
		glog.Fatal(err)
	}
	glog.Infof(
		"all %d consumer(s) of queue %q finished",
		config.Count,
		config.QueueName,
	)
}
