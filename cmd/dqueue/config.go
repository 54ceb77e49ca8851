package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path"

	"github.com/krancour/dqueue/pkg/file"
	"github.com/krancour/dqueue/pkg/mongodb"
	myRedis "github.com/krancour/dqueue/pkg/redis"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// config is the connection profile written by `dqueue connect`.
type config struct {
	Redis myRedis.Config `json:"redis"`
	// MongoDB is optional. It is only needed for journaling consumer runs.
	MongoDB *mongodb.Config `json:"mongodb,omitempty"`
}

func getConfig() (*config, error) {
	dqueueHome, err := getDqueueHome()
	if err != nil {
		return nil, errors.Wrapf(err, "error finding dqueue home")
	}
	dqueueConfigFile := path.Join(dqueueHome, "config")
	if !file.Exists(dqueueConfigFile) {
		return nil, errors.Errorf(
			"no dqueue configuration was found at %s; please use "+
				"`dqueue connect` to continue\n",
			dqueueConfigFile,
		)
	}

	configBytes, err := ioutil.ReadFile(dqueueConfigFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading dqueue config file at %s",
			dqueueConfigFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing dqueue config file at %s",
			dqueueConfigFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	dqueueHome, err := getDqueueHome()
	if err != nil {
		return errors.Wrapf(err, "error finding dqueue home")
	}
	if _, err := os.Stat(dqueueHome); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(
				err,
				"error checking for existence of dqueue home at %s",
				dqueueHome,
			)
		}
		// The directory doesn't exist-- create it
		if err := os.MkdirAll(dqueueHome, 0755); err != nil {
			return errors.Wrapf(
				err,
				"error creating dqueue home at %s",
				dqueueHome,
			)
		}
	}
	dqueueConfigFile := path.Join(dqueueHome, "config")

	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	// The profile may hold passwords
	if err :=
		ioutil.WriteFile(dqueueConfigFile, configBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", dqueueConfigFile)
	}
	return nil
}

func deleteConfig() error {
	dqueueHome, err := getDqueueHome()
	if err != nil {
		return errors.Wrapf(err, "error finding dqueue home")
	}
	dqueueConfigFile := path.Join(dqueueHome, "config")

	if err := os.Remove(dqueueConfigFile); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}

	return nil
}

func getDqueueHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}

	return path.Join(homeDir, ".dqueue"), nil
}
