package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oee-analyzer-go/internal/api"
	"oee-analyzer-go/internal/config"
	"oee-analyzer-go/internal/history"
	"oee-analyzer-go/internal/logger"
	"oee-analyzer-go/internal/metrics"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.Info("starting service")

	cfgPath := envOr("CONFIG_PATH", "config.yaml")
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.WithError(err).Fatal("invalid environment override")
	}
	var current atomic.Pointer[config.Config]
	current.Store(cfg)
	log.WithField("config_path", cfgPath).
		WithField("timezone", cfg.Location().String()).
		WithField("shifts", len(cfg.Shifts)).
		Info("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(cfgPath); err == nil {
		go func() {
			if err := config.Watch(ctx, cfgPath, func(c *config.Config) {
				if c.Server.Port != current.Load().Server.Port {
					log.WithField("port", c.Server.Port).Warn("port change needs a restart")
				}
				current.Store(c)
			}); err != nil {
				log.WithError(err).Error("config watch stopped")
			}
		}()
	}

	// History location is fixed at startup; later reloads only affect analysis.
	store := history.NewStore(cfg.History.Path)
	log.WithField("history_path", store.Path).Info("history store ready")

	srv := api.NewServer(current.Load, store, metrics.NewRegistry())
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.WithField("addr", addr).Info("listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
