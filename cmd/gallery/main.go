// Package main is the entry point for the gallery CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gallery/internal/backend/pocketbase"
	"gallery/internal/cli"
	"gallery/internal/commands"
	"gallery/internal/config"
	"gallery/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return pocketbase.New(ctx, cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
