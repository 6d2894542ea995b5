package service

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talx-hub/gopher-assist/internal/api/handlers"
	"github.com/talx-hub/gopher-assist/internal/config"
	"github.com/talx-hub/gopher-assist/internal/dbmanager"
	"github.com/talx-hub/gopher-assist/internal/metrics"
	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/model/user"
	"github.com/talx-hub/gopher-assist/internal/repo"
	"github.com/talx-hub/gopher-assist/internal/router"
	"github.com/talx-hub/gopher-assist/internal/service/auth"
	"github.com/talx-hub/gopher-assist/internal/service/completion"
	"github.com/talx-hub/gopher-assist/internal/service/completion/openai"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

type app struct {
	handler http.Handler
	close   func()
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger,
) (user.Repository, func(), error) {
	if cfg.DatabaseURI == "" {
		return repo.NewFileUserRepository(cfg.UsersFile, log), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, model.DefaultConnectTimeout)
	defer cancel()
	dbManager := dbmanager.New(cfg.DatabaseURI, log).
		Connect(connectCtx).
		ApplyMigrations(connectCtx).
		Ping(connectCtx)
	if err := dbManager.Error(); err != nil {
		dbManager.Close()
		return nil, nil, fmt.Errorf("db connection error: %w", err)
	}

	db, err := dbManager.GetPool(ctx)
	if err != nil {
		dbManager.Close()
		return nil, nil, fmt.Errorf("failed to get DB pool: %w", err)
	}
	return repo.NewUserRepository(db, log), dbManager.Close, nil
}

func initService(ctx context.Context, cfg *config.Config, log *slog.Logger,
	provider completion.Provider,
) (*app, error) {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err = store.Load(ctx); err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to load credential store, serving anyway",
			slog.Any(model.KeyLoggerError, err),
		)
	}

	m := metrics.New()
	authService := auth.New(store, log, auth.WithMinEntropy(cfg.MinPasswordEntropy))
	proxy := completion.NewProxy(provider,
		cfg.CompletionTimeout, cfg.MaxCompletionRequests, m)

	rr := router.New(log, m)
	rr.SetRouter(handlers.New(authService, proxy, store, m))

	return &app{
		handler: rr.GetRouter(),
		close:   closeStore,
	}, nil
}

// serve runs the server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.LogAttrs(gCtx,
			slog.LevelInfo,
			"server started",
			slog.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), model.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		log.LogAttrs(shutdownCtx, slog.LevelInfo, "server stopped")
		return nil
	})
	return g.Wait()
}

// RunServer builds the service from .env, environment and args and serves
// until ctx is canceled. It returns nil without serving when args ask for
// help.
func RunServer(ctx context.Context, args []string) error {
	bootLog := slog.Default()
	builder := config.NewBuilder(bootLog).
		FromDotEnv(".env").
		FromEnv().
		FromFlags("gopherassist", args)
	if err := builder.Error(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg := builder.GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	provider := openai.New(cfg.CompletionURL, cfg.APIKey, cfg.CompletionModel)
	a, err := initService(ctx, cfg, log, provider)
	if err != nil {
		return fmt.Errorf("failed to init service: %w", err)
	}
	defer a.close()

	srv := &http.Server{
		Addr:              cfg.RunAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, log)
}
