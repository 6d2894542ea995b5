package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.RunServer(ctx, os.Args[1:]); err != nil {
		slog.Default().LogAttrs(ctx,
			slog.LevelError,
			"service stopped with error",
			slog.Any(model.KeyLoggerError, err),
		)
		stop()
		os.Exit(1)
	}
}
