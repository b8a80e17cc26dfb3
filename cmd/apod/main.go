package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"apod_gallery/internal/config"
	"apod_gallery/internal/fetcher"
	"apod_gallery/internal/logger"
	"apod_gallery/internal/metrics"
	"apod_gallery/internal/middleware"
	"apod_gallery/internal/server"
	"apod_gallery/internal/session"
)

func main() {
	logger.Init()
	defer logger.Log.Info("Application stopped")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Config load error: %v", err)
	}

	m := metrics.New()

	// Сессия: лента, галерея и модальные окна
	ctrl := session.New(fetcher.New(cfg.FeedURL, cfg.FetchTimeout.Duration, m), nil)

	// HTTP сервер
	srv, err := server.NewServer(ctrl)
	if err != nil {
		logger.Log.Fatalf("Server init error: %v", err)
	}

	mux := http.NewServeMux()
	srv.Register(mux)
	mux.Handle("GET /metrics", m.Handler())

	handler := middleware.LoggingMiddleware(m)(mux)
	handler = middleware.RequestIDMiddleware(handler)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	go func() {
		logger.Log.WithField("feed_url", cfg.FeedURL).Infof("Starting HTTP server on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Log.Fatalf("Forced shutdown: %v", err)
	}
}
