package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const envconfigPrefix = "MONGODB"

// Config represents common configuration options for a MongoDB connection
type Config struct {
	Host       string `envconfig:"HOST" required:"true" json:"host"`
	Port       int    `envconfig:"PORT" default:"27017" json:"port"`
	Database   string `envconfig:"DATABASE" default:"dqueue" json:"database"`
	ReplicaSet string `envconfig:"REPLICA_SET" json:"replicaSet,omitempty"`
	Username   string `envconfig:"USERNAME" json:"username,omitempty"`
	Password   string `envconfig:"PASSWORD" json:"password,omitempty"`
}

// GetConfigFromEnvironment returns MongoDB connection options gleaned from
// environment variables.
func GetConfigFromEnvironment() (Config, error) {
	c := Config{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, errors.Wrap(
		err,
		"error getting mongo configuration from environment",
	)
}

// URI returns a connection string for the configured database.
func (c Config) URI() string {
	var userInfo string
	if c.Username != "" {
		userInfo = fmt.Sprintf(
			"%s:%s@",
			url.QueryEscape(c.Username),
			url.QueryEscape(c.Password),
		)
	}
	uri := fmt.Sprintf(
		"mongodb://%s%s:%d/%s",
		userInfo,
		c.Host,
		c.Port,
		c.Database,
	)
	if c.ReplicaSet != "" {
		uri = fmt.Sprintf("%s?replicaSet=%s", uri, c.ReplicaSet)
	}
	return uri
}

// Database returns a connection to a MongoDB database specified by environment
// variables
func Database() (*mongo.Database, error) {
	c, err := GetConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	return Connect(c)
}

// Connect returns a connection to the MongoDB database specified by the
// provided configuration.
func Connect(c Config) (*mongo.Database, error) {
	connectCtx, connectCancel :=
		context.WithTimeout(context.Background(), 10*time.Second)
	defer connectCancel()
	client, err := mongo.Connect(
		connectCtx,
		options.Client().ApplyURI(c.URI()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}

	// Test connection
	pingCtx, pingCancel :=
		context.WithTimeout(context.Background(), 2*time.Second)
	defer pingCancel()
	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		return nil, errors.Wrap(err, "error pinging mongo")
	}

	return client.Database(c.Database), nil
}
