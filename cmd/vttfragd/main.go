package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teocci/go-stream-av/internal/fragsvc"
	"github.com/teocci/go-stream-av/internal/platform/config"
	"github.com/teocci/go-stream-av/internal/platform/logger"
	"github.com/teocci/go-stream-av/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	timescale := uint64(config.GetEnvInt("DEFAULT_TIMESCALE", 1000))

	log := logger.New(logLevel, logFormat)

	tracksFile, err := config.LoadTracksFile(config.GetEnv("TRACKS_FILE", "tracks.yaml"))
	if err != nil {
		log.Error("failed to load tracks file", "error", err)
		os.Exit(1)
	}

	repo := fragsvc.NewInMemoryRepository()
	svc := fragsvc.NewService(repo)
	met := metrics.New()
	h := fragsvc.NewHandler(svc, log, met, timescale)

	for _, t := range tracksFile.Tracks {
		svc.CreateTrack(fragsvc.TrackID(t.ID))
		log.Info("preconfigured track", "track_id", t.ID, "language", t.Language)
	}

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveTracks(repo.ActiveTrackCount()) }).ServeHTTP(w, r)
	})
	r.Route("/tracks/{track_id}", func(r chi.Router) {
		r.Post("/cues", h.PushCue)
		r.Post("/flush", h.Flush)
		r.Get("/ready", h.Ready)
		r.Delete("/", h.DeleteTrack)
	})

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
