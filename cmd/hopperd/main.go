// Command hopperd runs the Hopper processing daemon in the foreground until
// it receives SIGINT or SIGTERM. Use the hopper CLI for interactive control.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hopper/internal/config"
	"hopper/internal/daemon"
	"hopper/internal/journal"
	"hopper/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open journal", logging.Error(err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		store.Close()
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}

	if err := d.Start(ctx); err != nil {
		d.Close()
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("hopperd shutting down")
	d.Close()
}
