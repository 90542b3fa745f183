// Package server initializes and runs the backend application: database,
// migrations, background mail dispatch, and the HTTP server, with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/expreshop/expreshop/internal/logging"
	"github.com/expreshop/expreshop/internal/server/auth"
	"github.com/expreshop/expreshop/internal/server/config"
	"github.com/expreshop/expreshop/internal/server/httpapi"
	"github.com/expreshop/expreshop/internal/server/mail"
	"github.com/expreshop/expreshop/internal/server/repositories/repomanager"
	"github.com/expreshop/expreshop/internal/server/services"
)

const mailQueueSize = 64

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	dispatcher     *mail.Dispatcher
	authService    *services.AuthService
	productService *services.ProductService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:            cfg.SMTPHost,
		Port:            cfg.SMTPPort,
		User:            cfg.SMTPUser,
		Password:        cfg.SMTPPassword,
		FromName:        cfg.MailFromName,
		FrontendBaseURL: cfg.FrontendBaseURL,
	})
	dispatcher := mail.NewDispatcher(mailer, logger, mailQueueSize)

	hasher := auth.NewBcryptHasher(0)
	tokens := auth.NewTokenService([]byte(cfg.SecretKey))

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		dispatcher:     dispatcher,
		authService:    services.NewAuthService(db, rm, hasher, tokens, dispatcher, cfg),
		productService: services.NewProductService(db, rm),
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

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)
	app.dispatcher.Start()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		srv := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.authService, app.productService)
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	// Drain queued recovery emails before letting go of the DB.
	app.dispatcher.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "app stopped")
}
