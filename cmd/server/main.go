package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookbook/internal/config"
	"cookbook/internal/form"
	"cookbook/internal/handlers"
	applog "cookbook/internal/log"
	"cookbook/internal/recipeclient"
	"cookbook/internal/server"
)

const formSweepInterval = time.Minute

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc   = config.Load
	configureLogFunc = applog.Configure
	newServiceFunc   = func(cfg config.RecipeAPIConfig) (handlers.RecipeService, error) {
		return recipeclient.NewClient(recipeclient.Config{BaseURL: cfg.URL, Token: cfg.Token, Timeout: cfg.Timeout})
	}
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := configureLogFunc(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		applog.Error(ctx, "invalid logging configuration", "level", cfg.Logging.Level, "format", cfg.Logging.Format, "error", err)
		return 1
	}
	applog.Debug(ctx, "configuration loaded", "addr", cfg.Server.Addr, "recipeAPI", cfg.RecipeAPI.URL)

	service, err := newServiceFunc(cfg.RecipeAPI)
	if err != nil {
		applog.Error(ctx, "failed to configure recipe service client", "url", cfg.RecipeAPI.URL, "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	forms := form.NewRegistry(service, cfg.Forms.IdleTTL)
	go forms.Run(ctx, formSweepInterval)

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Auth.Session.Lifetime,
			CookieName:   cfg.Auth.Session.CookieName,
			CookieDomain: cfg.Auth.Session.CookieDomain,
			CookieSecure: cfg.Auth.Session.CookieSecure,
		},
		Service: service,
		Forms:   forms,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down http server", "reason", ctx.Err())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	return 0
}
