package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "PRODUCER"

// config represents configuration for the producer process.
type config struct {
	QueueName string        `envconfig:"QUEUE_NAME" default:"queue"`
	ItemCount int           `envconfig:"ITEM_COUNT" default:"100"`
	Delay     time.Duration `envconfig:"DELAY" default:"1s"`
}

// getConfigFromEnvironment returns configuration derived from environment
// variables
func getConfigFromEnvironment() (config, error) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, errors.Wrap(
			err,
			"error getting producer configuration from environment",
		)
	}
	if c.ItemCount < 0 {
		return c, errors.Errorf(
			"%s_ITEM_COUNT must not be negative; got %d",
			envconfigPrefix,
			c.ItemCount,
		)
	}
	return c, nil
}
