package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furnitrack/internal/app/server/api"
	"furnitrack/internal/app/server/config"
	"furnitrack/internal/infrastructure/storage/postgres"
	"furnitrack/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("запуск сервера",
		"env", cfg.Env,
		"address", cfg.Server.RunAddress,
	)

	storage, err := postgres.New(cfg)
	if err != nil {
		log.Error("ошибка подключения к базе данных", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	srv := &http.Server{
		Addr:         cfg.Server.RunAddress,
		Handler:      api.New(storage, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("HTTP сервер слушает", "address", cfg.Server.RunAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ошибка HTTP сервера", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("остановка сервера")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("ошибка остановки сервера", "error", err)
	}

	log.Info("сервер остановлен")
}
