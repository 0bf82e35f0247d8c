package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roost/config"
	"roost/internal/database"
	"roost/internal/domain"
	"roost/internal/repository"
	"roost/internal/router"
	"roost/internal/worker"
	"roost/pkg/logger"
	"roost/pkg/payment"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if err := repository.NewSettingRepository(db).SeedDefaults(domain.SettingDefaults); err != nil {
		log.Fatal("seeding platform settings failed", zap.Error(err))
	}

	var gateway payment.Gateway
	if cfg.GatewayBaseURL != "" {
		gateway = payment.NewHostedPayProvider(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewaySecret, cfg.GatewayTimeout)
	} else {
		log.Warn("no gateway configured, using in-memory stub")
		gateway = payment.NewStubGateway()
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer queue.Close()

	app := router.Setup(db, cfg, gateway, queue, log)

	bg := worker.New(cfg.RedisAddr, app.Sweep, log)
	if err := bg.Start(); err != nil {
		log.Fatal("worker start failed", zap.Error(err))
	}
	defer bg.Shutdown()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
