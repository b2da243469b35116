package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"railists/internal/cli"
	"railists/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	// Logs go to stderr so reports can be piped from stdout
	bootstrap := cli.SetupLogger("info", os.Stderr, log.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr, log.ComponentCLI)

	ctx, _ := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {})

	app := cli.NewApp(cfg, os.Stdout, os.Stderr, logger)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintf(os.Stderr, "railists: %v\n", err)
		}
		os.Exit(1)
	}
}
