package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"towerstack/internal/config"
	"towerstack/internal/highscore"
	"towerstack/internal/telemetry"
	"towerstack/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "towerstack.yaml", "path to the YAML config")
	devLog := flag.Bool("dev", false, "use console-friendly development logging")
	flag.Parse()

	var (
		logger *zap.Logger
		err    error
	)
	if *devLog {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	scores, err := highscore.Open(cfg.HighScore.Path)
	if err != nil {
		return err
	}
	logger.Info("high score loaded",
		zap.String("path", cfg.HighScore.Path),
		zap.Float64("best_height", scores.Best()))

	metrics := telemetry.NewManager(logger)
	wsServer := ws.NewServer(cfg, scores, metrics, logger)

	mux := http.NewServeMux()
	wsServer.Register(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
