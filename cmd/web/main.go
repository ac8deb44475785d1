package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/okrtracker/okr-web/config"
	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/bootstrap"
	"github.com/okrtracker/okr-web/internal/logging"
	"github.com/okrtracker/okr-web/internal/probe"
	"github.com/okrtracker/okr-web/internal/session"
	"github.com/okrtracker/okr-web/internal/web/render"
	"github.com/okrtracker/okr-web/internal/web/routes"
)

const serviceName = "okr-web"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.Init(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("session store unavailable", zap.Error(err))
	}
	defer rdb.Close()

	table, err := loadRoutes(cfg.Server.RoutesFile)
	if err != nil {
		logger.Fatal("route table", zap.Error(err))
	}

	pages, err := render.New(cfg.App.Version)
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	transport := apiclient.New(cfg.OkrAPI.BaseURL, apiclient.Options{
		Timeout: cfg.OkrAPI.Timeout,
		RPS:     cfg.OkrAPI.RPS,
		Burst:   cfg.OkrAPI.Burst,
	})

	prober := probe.NewScheduler(transport, cfg.Probe.Timeout)
	if err := prober.Start(cfg.Probe.Schedule); err != nil {
		logger.Fatal("probe schedule", zap.Error(err))
	}

	repo := session.NewRepository(rdb)
	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Routes:      table,
		Pages:       pages,
		Transport:   transport,
		Sessions: session.NewManager(repo, session.Options{
			CookieName: cfg.Session.CookieName,
			MaxTTL:     cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		}),
		SessionRepo: repo,
		Upstream:    prober,
		SessionPing: bootstrap.RedisPinger{Client: rdb},
	})
	if err != nil {
		logger.Fatal("router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("okr_api", transport.BaseURL()),
			zap.Int("routes", len(table.Routes)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prober.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func loadRoutes(path string) (*routes.Table, error) {
	if path == "" {
		return routes.Default()
	}
	return routes.ParseFile(path)
}
