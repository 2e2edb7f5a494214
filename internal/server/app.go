// Package server assembles the application: storage backend, optional cache
// and object storage, services and the HTTP server.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/waterwatch/internal/dbx"
	"github.com/dmitrijs2005/waterwatch/internal/logging"
	"github.com/dmitrijs2005/waterwatch/internal/server/cache"
	"github.com/dmitrijs2005/waterwatch/internal/server/config"
	"github.com/dmitrijs2005/waterwatch/internal/server/httpapi"
	"github.com/dmitrijs2005/waterwatch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/waterwatch/internal/server/services"
	"github.com/dmitrijs2005/waterwatch/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNoSecret is returned when the token signing secret is empty.
var ErrNoSecret = errors.New("secret key is not configured")

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *httpapi.HTTPServer
	closers []io.Closer
}

var sqlOpen = sql.Open

func openDatabase(ctx context.Context, dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, rm, nil
}

func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	if c.SecretKey == "" {
		return nil, ErrNoSecret
	}

	logger := logging.NewJSONLogger(out, c.LogLevel)
	app := &App{config: c, logger: logger}

	// db stays a nil interface in memory mode
	var db dbx.DB
	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		sqlDB, m, err := openDatabase(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		db, rm = sqlDB, m
		app.closers = append(app.closers, sqlDB)
		logger.Info(ctx, "Using PostgreSQL storage")
	} else {
		rm = repomanager.NewMemoryRepositoryManager()
		logger.Warn(ctx, "No database DSN configured, using in-memory storage")
	}

	var seriesCache cache.SeriesCache = cache.Noop{}
	if c.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("cache init error: %w", err)
		}
		seriesCache = cache.NewRedisCache(client, c.SeriesCacheTTL)
		app.closers = append(app.closers, client)
		logger.Info(ctx, "Series cache enabled", "address", c.RedisAddr)
	}

	var store storage.ObjectStore
	if c.S3Bucket != "" {
		s3store, err := storage.NewS3ObjectStore(ctx, storage.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			LinkTTL:      c.ExportLinkTTL,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		store = s3store
		logger.Info(ctx, "Export storage enabled", "bucket", c.S3Bucket)
	}

	us := services.NewUserService(db, rm, c)
	rs := services.NewReadingService(db, rm, seriesCache, logger)
	es := services.NewExportService(rs, store, logger)

	app.server = httpapi.NewHTTPServer(c.EndpointAddr, logger, us, rs, es, c.AuthRateLimit)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	var runErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
	return runErr
}

// Close releases the database and cache connections.
func (app *App) Close() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error(context.Background(), "close", "error", err)
		}
	}
	app.closers = nil
}
