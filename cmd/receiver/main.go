package main

import (
	"context"
	"os"

	"github.com/dannychantszfong/screen-stream/internal/config"
	"github.com/dannychantszfong/screen-stream/internal/decoder"
	"github.com/dannychantszfong/screen-stream/internal/display"
	"github.com/dannychantszfong/screen-stream/internal/logger"
	"github.com/dannychantszfong/screen-stream/internal/pipeline"
)

func main() {
	cfg := config.ParseReceiverFlags()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(2)
	}
	if cfg.Verbose {
		logger.SetLevel(logger.LevelDebug)
	}

	logger.Info("screen-stream receiver starting on %s", cfg.Addr())

	win := display.NewWindow("screen-stream receiver")
	recv := pipeline.NewReceiver(cfg.Addr(), decoder.NewJPEGDecoder(), win)

	// Bind before opening the window so a busy port fails fast.
	if err := recv.Listen(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- recv.Run(ctx)
	}()

	// Ebitengine RunGame must be on the main goroutine.
	if err := win.Run(); err != nil {
		logger.Error("display: %v", err)
	}

	cancel()
	if err := <-errCh; err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	logger.Info("receiver stopped")
}
