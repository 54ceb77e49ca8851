package main

import (
	"fmt"

	"github.com/krancour/dqueue/pkg/version"
	"github.com/urfave/cli"
)

func printVersion(*cli.Context) error {
	fmt.Printf("dqueue version %s -- commit %s\n", version.Version(), version.Commit())
	return nil
}
