package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/peter-mghendi/clicker/internal/agent"
	"github.com/peter-mghendi/clicker/internal/config"
	"github.com/peter-mghendi/clicker/internal/version"
)

func main() {
	ver := version.Load()
	log.Printf("clicker-agent %s starting...", ver.Version)

	cfg := config.Load()

	var adapter agent.PlayerAdapter
	if cfg.PlayerURL != "" {
		log.Printf("driving player at %s", cfg.PlayerURL)
		adapter = agent.NewHTTPAdapter(cfg.PlayerURL)
	} else {
		log.Printf("PLAYER_URL not set, driving simulated player")
		adapter = agent.NewSimAdapter()
	}

	tr := agent.NewWSTransport(cfg.HubURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("reporting to %s every %s", cfg.HubURL, cfg.PollInterval)
	a := agent.New(adapter, tr, cfg.PollInterval)
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("agent error: %v", err)
	}
}
