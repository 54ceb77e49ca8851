package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/krancour/dqueue/pkg/api"
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
		"Starting dqueue API server -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	serverConfig, err := api.GetConfigFromEnvironment()
	if err != nil {
		glog.Fatal(err)
	}

	redisClient, redisConfig, err := myRedis.Client()
	if err != nil {
		glog.Fatal(err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping().Err(); err != nil {
		glog.Fatal(errors.Wrap(err, "error pinging redis"))
	}

	attacher := redisQueue.NewAttacher(
		redisClient,
		&redisQueue.QueueOptions{
			RedisPrefix: redisConfig.Prefix,
		},
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	err = api.NewServer(
		serverConfig,
		reg,
		api.NewQueueEndpoints(attacher),
	).Run(signals.Context())
	if err != nil && errors.Cause(err) != context.Canceled {
		glog.Fatal(err)
	}
}
