package main

import (
	"github.com/felixgeelhaar/convene/adapter/cli"
	"github.com/felixgeelhaar/convene/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	cli.SetLogger(logger)
	cli.Execute()
}
