package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	flagConsumers         = "consumers"
	flagsConsumers        = "consumers, c"
	flagDelay             = "delay"
	flagsDelay            = "delay, d"
	flagHead              = "head"
	flagItems             = "items"
	flagsItems            = "items, n"
	flagJournal           = "journal"
	flagsJournal          = "journal, j"
	flagLimit             = "limit"
	flagsLimit            = "limit, l"
	flagMongoDBDatabase   = "mongodb-database"
	flagMongoDBHost       = "mongodb-host"
	flagMongoDBPassword   = "mongodb-password"
	flagMongoDBPort       = "mongodb-port"
	flagMongoDBReplicaSet = "mongodb-replica-set"
	flagMongoDBUsername   = "mongodb-username"
	flagOutput            = "output"
	flagsOutput           = "output, o"
	flagRedisDB           = "redis-db"
	flagRedisHost         = "redis-host"
	flagRedisPassword     = "redis-password"
	flagRedisPort         = "redis-port"
	flagRedisPrefix       = "redis-prefix"
	flagRedisTLS          = "redis-tls"
	flagYes               = "yes"
	flagsYes              = "yes, y"
)

const (
	outputFormatJSON  = "json"
	outputFormatTable = "table"
)

var (
	cliFlagOutput = cli.StringFlag{
		Name:  flagsOutput,
		Usage: "Return output in another format. Supported formats: table, json",
		Value: outputFormatTable,
	}
)

// validateOutputFormat returns an error if the value of the --output flag
// names a format that dqueue can't render.
func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case outputFormatTable, outputFormatJSON:
		return nil
	}
	return errors.Errorf(
		"--%s %q is not supported; use %q or %q",
		flagOutput,
		outputFormat,
		outputFormatTable,
		outputFormatJSON,
	)
}
