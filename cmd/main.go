// Package main wires the HTTP server for the key transaction service.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"key-transactions-service/internal/transport/http/server/handlers-fiber"
	"key-transactions-service/internal/usecase"

	"key-transactions-service/config"
	"key-transactions-service/internal/api"
	"key-transactions-service/internal/quota"
	"key-transactions-service/internal/repository"
	"key-transactions-service/internal/transport/http/middleware"
	"key-transactions-service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}

	repo, err := repository.New(ctx, "postgres", log, cfg)
	if err != nil {
		log.Errorw("repository initialization error", "error", err)
		return
	}
	if err := repo.OnStart(ctx); err != nil {
		log.Errorw("repository start error", "error", err)
		return
	}
	defer func() {
		_ = repo.OnStop(context.Background())
	}()

	limits := quota.Limits{
		MaxKeyTransactions:     cfg.Limits.MaxKeyTransactions,
		MaxTeamKeyTransactions: cfg.Limits.MaxTeamKeyTransactions,
	}
	uc := usecase.New(log, ctx, repo, cfg.HTTP.RequestTimeout, limits, cfg.HTTP.PageSize)

	serv := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	serv.Use(recover.New())
	serv.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	serv.Use(middleware.RequestLogger(log))

	serv.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	serv.Use(middleware.Auth())

	h := handlers_fiber.NewHandler(log, uc)
	api.RegisterHandlers(serv, h)

	go func() {
		if err := serv.Listen(cfg.ServerAddr()); err != nil {
			log.Errorw("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = serv.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
	}
}
