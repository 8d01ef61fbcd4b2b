package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/YeeNg2333/mcstatquery/internal/config"
	"github.com/YeeNg2333/mcstatquery/internal/fleet"
	"github.com/YeeNg2333/mcstatquery/internal/httpapi"
	"github.com/YeeNg2333/mcstatquery/internal/httpapi/middleware"
	"github.com/YeeNg2333/mcstatquery/internal/logging"
	"github.com/YeeNg2333/mcstatquery/internal/notify"
	"github.com/YeeNg2333/mcstatquery/internal/probe"
	"github.com/YeeNg2333/mcstatquery/internal/repo"
	"github.com/YeeNg2333/mcstatquery/internal/repo/file"
	"github.com/YeeNg2333/mcstatquery/internal/repo/memory"
	"github.com/YeeNg2333/mcstatquery/internal/repo/postgres"
	"github.com/YeeNg2333/mcstatquery/internal/scheduler"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when configured, otherwise the JSON file store.
	var (
		targets repo.TargetStore
		alerts  repo.AlertStateStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres_connect_error", zap.Error(err))
		}
		defer pg.Close()
		targets, alerts = pg, pg
		logger.Info("store_postgres")
	} else {
		fs, err := file.New(filepath.Join(cfg.DataDir, "servers.json"))
		if err != nil {
			logger.Fatal("server_list_load_error", zap.Error(err))
		}
		targets, alerts = fs, memory.New()
		logger.Info("store_file", zap.String("dir", cfg.DataDir))
	}

	sp := probe.NewStatusPinger(cfg.ProbeTimeout, cfg.ProbeGrace, logger)
	sp.Protocol = int32(cfg.ProtocolVersion)
	sp.Resolver = probe.NewSRVResolver(cfg.SRVServer)

	var pinger probe.Pinger = sp
	if cfg.ProbeRetryAttempts > 1 {
		pinger = &probe.RetryPinger{
			Inner:    sp,
			Attempts: cfg.ProbeRetryAttempts,
			Backoff:  cfg.ProbeRetryBackoff,
		}
	}

	prober := fleet.NewProber(logger, targets, pinger, cfg.CacheTTL, cfg.MaxConcurrentProbes)

	api := httpapi.NewServer(logger, targets, prober, pinger)
	api.Keys = middleware.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	api.PublicRPM = cfg.PublicRPM
	api.PublicBurst = cfg.PublicBurst
	api.AllowedOrigins = cfg.AllowedOrigins

	if cfg.RefreshInterval > 0 {
		go scheduler.NewRefresher(logger, prober, cfg.RefreshInterval).Run(ctx)

		if d := notify.NewDiscord(cfg.DiscordWebhook); d != nil {
			al := scheduler.NewAlerter(prober, alerts, notify.Fanout{d}, scheduler.AlerterConfig{
				AlertOnRecovery: cfg.AlertOnRecovery,
				Cooldown:        cfg.AlertCooldown,
				PollInterval:    cfg.RefreshInterval,
			})
			go func() { _ = al.Run(ctx) }()
			logger.Info("alerter_enabled")
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_serve_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("api_stopped")
}
