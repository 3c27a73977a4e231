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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ndanilin/account-service/internal/config"
	"github.com/ndanilin/account-service/internal/db"
	"github.com/ndanilin/account-service/internal/events"
	"github.com/ndanilin/account-service/internal/httpserver"
	"github.com/ndanilin/account-service/internal/logging"
	authmw "github.com/ndanilin/account-service/internal/middleware/auth"
	loggingmw "github.com/ndanilin/account-service/internal/middleware/logging"
	"github.com/ndanilin/account-service/internal/repo"
	"github.com/ndanilin/account-service/internal/token"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, events.UserEventsTopic)

	users := &repo.UserRepo{DB: database}
	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AccountHandler: &httpserver.AccountHTTP{
			Users:    users,
			Tokens:   tokens,
			Producer: producer,
			TokenTTL: cfg.TokenTTL,
		},
		Auth: &authmw.Authenticator{
			Tokens: tokens,
			Users:  users,
		},
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
