// Command quilogctl inspects and exercises a Quilog store from the shell.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"quilog/internal/bootstrap"
	"quilog/internal/cli"
	"quilog/internal/config"
	"quilog/internal/observability"
	"quilog/internal/repository"
)

func main() {
	// stdout carries command output
	observability.SetOutput(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	open := func(ctx context.Context) (*repository.Store, func(), error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		store, err := bootstrap.OpenStore(ctx, cfg, bootstrap.Options{})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	if err := cli.NewRootCommand(open).Execute(); err != nil {
		os.Exit(1)
	}
}
