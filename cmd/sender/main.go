package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dannychantszfong/screen-stream/internal/capture"
	"github.com/dannychantszfong/screen-stream/internal/config"
	"github.com/dannychantszfong/screen-stream/internal/encoder"
	"github.com/dannychantszfong/screen-stream/internal/logger"
	"github.com/dannychantszfong/screen-stream/internal/pipeline"
)

func main() {
	cfg := config.ParseSenderFlags()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(2)
	}
	if cfg.Verbose {
		logger.SetLevel(logger.LevelDebug)
	}

	logger.Info("screen-stream sender starting")
	logger.Info("  Receiver:  %s", cfg.Addr())
	logger.Info("  FPS:       %d", cfg.FPS)
	logger.Info("  Quality:   %d", cfg.Quality)
	logger.Info("  Max width: %d", cfg.MaxWidth)
	logger.Info("  Display:   %d", cfg.DisplayIndex)
	logger.Info("  Adaptive:  %t", cfg.Adaptive)

	grab, err := capture.DisplayGrabber(cfg.DisplayIndex)
	if err != nil {
		logger.Error("capture init: %v", err)
		os.Exit(1)
	}
	src := capture.NewSource(grab, cfg.MaxWidth, cfg.Quality)
	enc := encoder.NewJPEGEncoder(cfg.Quality)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender := pipeline.NewSender(cfg.Addr(), cfg.Interval(), cfg.Quality, cfg.Adaptive, src, enc)
	if err := sender.Run(ctx); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
