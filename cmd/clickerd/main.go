package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/peter-mghendi/clicker/internal/api"
	"github.com/peter-mghendi/clicker/internal/config"
	"github.com/peter-mghendi/clicker/internal/hub"
	"github.com/peter-mghendi/clicker/internal/version"
)

func main() {
	ver := version.Load()
	log.Printf("clickerd %s starting...", ver.Version)

	cfg := config.Load()

	var cache *hub.StatusCache
	if cfg.CacheEnabled() {
		cache = hub.NewStatusCache(cfg.RedisAddr, cfg.StatusTTL)
		pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cache.Ping(pctx); err != nil {
			log.Printf("status cache unreachable, continuing without it: %v", err)
			cache.Close()
			cache = nil
		} else {
			log.Printf("status cache enabled at %s (ttl=%s)", cfg.RedisAddr, cfg.StatusTTL)
			defer cache.Close()
		}
		cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New(cache)
	go h.Run(ctx)

	srv := api.NewServer(cfg, h)

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	httpServer.Shutdown(sctx)
}
