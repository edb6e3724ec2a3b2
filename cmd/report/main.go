// Package main is the entry point for the report command line tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tiagoarodrigues55/moveo-report/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
