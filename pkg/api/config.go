package api

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "API_SERVER"

// Config represents configuration options for the HTTP server.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	TLSEnabled  bool   `envconfig:"TLS_ENABLED" default:"false"`
	TLSCertPath string `envconfig:"TLS_CERT_PATH" default:"/app/certs/tls.crt"`
	TLSKeyPath  string `envconfig:"TLS_KEY_PATH" default:"/app/certs/tls.key"`
}

// GetConfigFromEnvironment returns server configuration gleaned from
// environment variables.
func GetConfigFromEnvironment() (Config, error) {
	c := Config{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, errors.Wrap(
		err,
		"error getting api server configuration from environment",
	)
}
