package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stockquotes/internal/app"
	"stockquotes/internal/config"
	"stockquotes/internal/httpx"
	"stockquotes/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	log := logging.New("stockquotes", cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	httpClient := httpx.New(timeout)

	reg := app.BuildRegistry(cfg, httpClient, log)
	if reg.Len() == 0 {
		log.Fatal("no providers enabled; check config or *_ENABLED env vars")
	}

	s := &server{providers: reg, log: log, timeout: timeout}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           logRequests(log, withJSONHeaders(withGzip(recoverPanic(log, s.routes())))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).WithField("providers", reg.Names()).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
}
