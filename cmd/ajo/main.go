// Package main starts the savings engine MCP server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	ajocmd "github.com/ajofund/ajo/internal/cmd/ajo"
	"github.com/ajofund/ajo/internal/platform/cmd"
	"github.com/ajofund/ajo/internal/platform/config"
)

func main() {
	cfg, err := ajocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RunWithTelemetry(ctx, cmd.ServiceAjo, func(ctx context.Context) error {
		return ajocmd.Run(ctx, cfg)
	}); err != nil {
		config.Exitf("serve engine: %v", err)
	}
}
