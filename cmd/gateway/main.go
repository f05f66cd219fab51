// cmd/gateway/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wsgate/internal/access"
	"wsgate/internal/config"
	"wsgate/internal/dispatch"
	"wsgate/internal/events"
	"wsgate/internal/logging"
	"wsgate/internal/modules/chat"
	"wsgate/internal/modules/health"
	"wsgate/internal/presence"
	"wsgate/internal/session"
	"wsgate/internal/token"
	"wsgate/internal/transport"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "gateway config path")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var deriver access.Deriver
	var verifier *token.Verifier
	if cfg.Auth.Secret != "" {
		verifier = token.NewVerifier(cfg.Auth.Secret)
		deriver = verifier
	}
	gate := access.NewGate(deriver, access.Level(cfg.Auth.DefaultLevel), logger.Named("access"))

	sessions := session.NewManager(logger.Named("session"), session.Options{
		IdleTimeout:   time.Duration(cfg.Session.IdleTimeoutSec) * time.Second,
		OfflineLinger: time.Duration(cfg.Session.OfflineLingerSec) * time.Second,
		SweepInterval: time.Duration(cfg.Session.SweepIntervalSec) * time.Second,
	})
	sessions.StartSweep(ctx)

	var store presence.Store = presence.NewMemoryStore()
	if cfg.Redis.Enabled {
		rs, err := presence.NewRedisStore(presence.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TTL:          time.Duration(cfg.Redis.TTLSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("connect redis failed", zap.Error(err))
		}
		defer rs.Close()
		rs.StartHealthCheck(ctx, logger.Named("redis"), 10*time.Second)
		store = rs
	}

	var publisher events.Publisher = events.NewLogPublisher(logger.Named("events"))
	if cfg.Events.URL != "" {
		nc, err := events.Connect(cfg.Events.URL, cfg.Events.Name, logger.Named("events"))
		if err != nil {
			logger.Fatal("connect broker failed", zap.Error(err))
		}
		defer nc.Close()
		publisher = events.NewNatsPublisher(nc, cfg.Events.SubjectPrefix, logger.Named("events"))
	}

	registry := dispatch.NewRegistry()
	modules := []dispatch.Module{
		health.New(),
		chat.New(logger.Named("chat")),
	}
	for _, m := range modules {
		if err := registry.AddModule(m); err != nil {
			logger.Fatal("register module failed", zap.Error(err))
		}
	}

	chain := dispatch.NewChain(dispatch.WithAuth(gate))
	if verifier != nil {
		chain.Use(dispatch.WithIdentity(verifier.IdentityFor))
	}
	if cfg.Limit.UpgradePerWindow > 0 {
		chain.Use(dispatch.WithUpgradeRateLimit(
			cfg.Limit.UpgradePerWindow,
			time.Duration(cfg.Limit.WindowSec)*time.Second,
		))
	}

	upgrader := transport.NewWSUpgrader(transport.Options{
		HandshakeTimeout: time.Duration(cfg.Transport.HandshakeTimeoutSec) * time.Second,
		ReadLimit:        cfg.Transport.ReadLimitBytes,
		PongWait:         time.Duration(cfg.Transport.PongWaitSec) * time.Second,
		PingInterval:     time.Duration(cfg.Transport.PingIntervalSec) * time.Second,
	})

	d := dispatch.New(dispatch.Config{
		Registry:       registry,
		Chain:          chain,
		Gate:           gate,
		Upgrader:       upgrader,
		Sessions:       sessions,
		Presence:       store,
		Events:         publisher,
		Logger:         logger.Named("dispatch"),
		RequestTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		StatsInterval:  time.Duration(cfg.StatsIntervalSec) * time.Second,
	})
	d.StartStats(ctx)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: d,
	}

	go func() {
		logger.Info("gateway listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Int("routes", registry.Len()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("gateway shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	sessions.CloseAll()
	logger.Info("gateway exited")
}
