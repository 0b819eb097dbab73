package main

import (
	"context"
	"errors"
	"net/http"
	"notion-mini/config"
	pagesapi "notion-mini/handlers/api/pages"
	"notion-mini/handlers/socket"
	"notion-mini/pages"
	"notion-mini/stores"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	ctx := context.Background()
	kv, err := stores.GetStore(ctx, cfg)
	if err != nil {
		logrus.WithField("error", err).Fatal("Failed to open storage")
	}

	opts := []pages.Option{pages.WithLogger(logrus.StandardLogger())}
	if cfg.StorageKey != "" {
		opts = append(opts, pages.WithKey(cfg.StorageKey))
	}
	store := pages.Open(ctx, kv, opts...)
	hub := socket.NewHub(store)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("you are all set"))
	})
	r.Mount("/api/v1/pages", pagesapi.Routes(store))
	r.Handle("/socket.io/", hub.Handler())

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("error", err).Fatal("Server failed")
		}
	}()

	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	s := <-signalC
	logrus.WithField("signal", s.String()).Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithField("error", err).Warn("Graceful shutdown failed")
	}
}
