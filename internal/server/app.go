// Package server initializes and runs the auth server: it opens the
// database, applies migrations, wires the token codec, resolver and account
// service, and serves gRPC until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/clinicauth/internal/cryptox"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/dmitrijs2005/clinicauth/internal/server/auth"
	"github.com/dmitrijs2005/clinicauth/internal/server/config"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clinicauth/internal/server/services"

	gs "github.com/dmitrijs2005/clinicauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *services.PrincipalResolver
	accounts    *services.AccountService
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stdout)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey))
	if err != nil {
		return nil, err
	}

	hasher, err := cryptox.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager(c.QueryTimeout)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		resolver:    services.NewPrincipalResolver(db, rm, codec),
		accounts:    services.NewAccountService(db, rm, hasher, codec),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.resolver, app.accounts, gs.DefaultPolicy)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	if app.config.RunMigrations {
		if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		app.logger.Info(ctx, "Migrations applied")
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	return nil
}
