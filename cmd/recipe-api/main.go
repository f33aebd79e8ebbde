// Command recipe-api serves the recipe REST API the web client talks to.
//
// Run "recipe-api hash-token <token>" to print the bcrypt hash to put in
// API_TOKEN_HASH.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"cookbook/internal/config"
	"cookbook/internal/db"
	"cookbook/internal/db/mock"
	"cookbook/internal/extract"
	applog "cookbook/internal/log"
	"cookbook/internal/recipeapi"
	"cookbook/internal/recipestore"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

type httpServer struct {
	srv *http.Server
}

func (s *httpServer) Start() error {
	return s.srv.ListenAndServe()
}

func (s *httpServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

var (
	loadConfigFunc      = config.Load
	configureLogFunc    = applog.Configure
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newServerFunc       = func(addr string, handler http.Handler) serverLifecycle {
		return &httpServer{srv: &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}}
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
	stdout io.Writer = os.Stdout
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-token" {
		os.Exit(hashToken(os.Args[2:]))
	}
	os.Exit(run(context.Background()))
}

func hashToken(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: recipe-api hash-token <token>")
		return 2
	}
	hash, err := recipeapi.HashToken(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash token: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, hash)
	return 0
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

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to open database", "error", err)
		return 1
	}

	handler := recipeapi.NewHandler(recipeapi.Options{
		Store: recipestore.New(database),
		Scraper: extract.New(extract.Config{
			Timeout:  cfg.Scrape.Timeout,
			MaxBytes: cfg.Scrape.MaxBytes,
		}),
		TokenHash:      cfg.API.TokenHash,
		AllowedOrigins: cfg.API.AllowedOrigins,
	})
	if cfg.API.TokenHash == "" {
		applog.Warn(ctx, "API_TOKEN_HASH not set, the recipe api accepts unauthenticated requests")
	}

	srv := newServerFunc(cfg.API.Addr, handler)
	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting recipe api", "addr", cfg.API.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "recipe api encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down recipe api", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down recipe api", "reason", ctx.Err())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	<-errCh
	return 0
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.UseMock || cfg.URL == "" {
		applog.Info(ctx, "using in-memory mock database", "requested", cfg.UseMock)
		return newMockDatabaseFunc(ctx)
	}
	return configureDatabase(cfg)
}
