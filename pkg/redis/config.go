package redis

import (
	"crypto/tls"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "REDIS"

// Config represents common configuration options for a Redis connection
type Config struct {
	Host      string `envconfig:"HOST" required:"true" json:"host"`
	Port      int    `envconfig:"PORT" default:"6379" json:"port"`
	Password  string `envconfig:"PASSWORD" json:"password,omitempty"`
	DB        int    `envconfig:"DB" default:"0" json:"db"`
	EnableTLS bool   `envconfig:"ENABLE_TLS" default:"false" json:"enableTLS"`
	// Prefix is prepended to every key to effect some rudimentary namespacing
	// within a single Redis database.
	Prefix string `envconfig:"PREFIX" json:"prefix,omitempty"`
}

// GetConfigFromEnvironment returns Redis connection options gleaned from
// environment variables.
func GetConfigFromEnvironment() (Config, error) {
	c := Config{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, errors.Wrap(
		err,
		"error getting redis configuration from environment",
	)
}

// Client returns a Redis client configured from environment variables.
func Client() (*redis.Client, Config, error) {
	c, err := GetConfigFromEnvironment()
	if err != nil {
		return nil, c, err
	}
	return NewClient(c), c, nil
}

// NewClient returns a Redis client for the provided configuration.
func NewClient(c Config) *redis.Client {
	redisOpts := &redis.Options{
		Addr:       fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:   c.Password,
		DB:         c.DB,
		MaxRetries: 5,
	}
	if c.EnableTLS {
		redisOpts.TLSConfig = &tls.Config{
			ServerName: c.Host,
		}
	}
	return redis.NewClient(redisOpts)
}
