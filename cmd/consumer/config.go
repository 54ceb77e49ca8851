package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "CONSUMER"

// config represents configuration for the consumer process.
type config struct {
	QueueName           string        `envconfig:"QUEUE_NAME" default:"queue"`
	Count               int           `envconfig:"COUNT" default:"1"`
	ProcessingDelay     time.Duration `envconfig:"PROCESSING_DELAY" default:"5s"`
	StatusServerEnabled bool          `envconfig:"STATUS_SERVER_ENABLED" default:"false"` // nolint: lll
	JournalEnabled      bool          `envconfig:"JOURNAL_ENABLED" default:"false"`
}

// getConfigFromEnvironment returns configuration derived from environment
// variables
func getConfigFromEnvironment() (config, error) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, errors.Wrap(
			err,
			"error getting consumer configuration from environment",
		)
	}
	if c.Count < 1 {
		return c, errors.Errorf(
			"%s_COUNT must be at least 1; got %d",
			envconfigPrefix,
			c.Count,
		)
	}
	return c, nil
}
