// Package server initializes and runs the registration server.
// It opens the configured storage backend and workshop source, wires the
// services and serves HTTP until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/workshopreg/internal/logging"
	"github.com/dmitrijs2005/workshopreg/internal/server/config"
	"github.com/dmitrijs2005/workshopreg/internal/server/httpapi"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/workshopreg/internal/server/services"
	"github.com/dmitrijs2005/workshopreg/internal/server/workshops"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	server *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	src, err := workshops.NewSource(c)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("workshop source init error: %w", err)
	}

	// registration and acceptance share one write lock
	var writes sync.Mutex
	reg := services.NewRegistrationService(rm.Users(), &writes, logger)
	acc := services.NewAcceptanceService(rm.Users(), &writes, logger)
	ws := services.NewWorkshopService(src, logger)

	opts := httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		Backend:         rm.Backend(),
		ListUsersRoute:  c.ListUsersRoute,
		ShutdownTimeout: c.ShutdownTimeout,
	}

	return &App{
		config: c,
		logger: logger,
		repos:  rm,
		server: httpapi.NewHTTPServer(opts, logger, reg, acc, ws),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// closes the storage backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.repos.Backend())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "Storage close error", "error", err.Error())
	}

	app.logger.Info(closeCtx, "App stopped")
}
