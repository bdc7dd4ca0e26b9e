package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kawainime/TelegramGemini/internal/action"
	"github.com/kawainime/TelegramGemini/internal/agent"
	"github.com/kawainime/TelegramGemini/internal/bus"
	"github.com/kawainime/TelegramGemini/internal/channel"
	"github.com/kawainime/TelegramGemini/internal/config"
	"github.com/kawainime/TelegramGemini/internal/metrics"
	"github.com/kawainime/TelegramGemini/internal/persona"
	"github.com/kawainime/TelegramGemini/internal/provider"
)

const (
	busBufferSize   = 100
	shutdownTimeout = 10 * time.Second
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot (Telegram polling + dispatcher)",
		Long:  "Connects to Telegram and Gemini and handles updates until interrupted. Press Ctrl+C to stop.",
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.CheckRunnable(cfg); err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = log
	config.WarnIncomplete(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	personas, personaCloser, err := persona.Open(cfg.Persona)
	if err != nil {
		return fmt.Errorf("persona store: %w", err)
	}
	defer personaCloser.Close()

	gemini, err := provider.NewGemini(ctx, provider.GeminiConfig{
		APIKey:     cfg.Gemini.APIKey,
		TextModel:  cfg.Gemini.TextModel,
		ImageModel: cfg.Gemini.ImageModel,

		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		Burst:             cfg.Gemini.Burst,

		Logger: logger,
	})
	if err != nil {
		return err
	}
	timeout := time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second

	tg := channel.NewTelegram(channel.TelegramConfig{
		Token:              cfg.Telegram.Token,
		PollTimeout:        cfg.Telegram.PollTimeout,
		DropPendingUpdates: cfg.Telegram.DropPendingUpdates,
		Logger:             logger,
	})
	self, err := tg.Connect()
	if err != nil {
		return err
	}

	handlers := action.New(action.Config{
		Messenger:     tg,
		Text:          gemini,
		Images:        gemini,
		Personas:      personas,
		Downloader:    provider.NewDownloader(provider.SharedHTTPClient(timeout), logger),
		AdminID:       cfg.Admin.UserID,
		AdminUsername: cfg.Admin.Username,
		Support:       cfg.Support,
		WebSearch:     cfg.Gemini.WebSearch,
		TempDir:       cfg.General.TempDir,
		Timeout:       timeout,
		Logger:        logger,
	})

	messageBus := bus.New(busBufferSize, logger)
	defer messageBus.Close()

	loop := agent.NewLoop(agent.LoopConfig{
		Bus:         messageBus,
		Executor:    handlers,
		Bot:         self,
		Logger:      logger,
		Concurrency: cfg.General.MaxConcurrentChats,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tg.Start(gctx, messageBus) })
	g.Go(func() error { return loop.Run(gctx) })
	if cfg.Metrics.Enabled {
		serveMetrics(gctx, g, cfg.Metrics.Listen)
	}

	logger.Info("bot started. Press Ctrl+C to stop.", "username", self.Username)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		logger.Info("shutting down...")
		select {
		case err = <-done:
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out, forcing exit")
			return errors.New("shutdown timed out")
		}
	}
	if err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// serveMetrics runs the metrics endpoint in g until ctx is done.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Default.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
