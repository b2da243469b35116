package cli

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"railists/internal/amqp"
	"railists/internal/backend"
	"railists/internal/cache"
	"railists/internal/config"
	"railists/internal/core"
	"railists/internal/datasource"
	apphttp "railists/internal/http"
	"railists/internal/log"
	"railists/internal/metrics"
	"railists/internal/services"
	"railists/internal/storage"
)

const shutdownTimeout = 30 * time.Second

// serve runs the report API until ctx is cancelled.
func (a *App) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", ":"+a.cfg.Port, "listen address")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	opts, cleanup, err := a.serverOptions(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := apphttp.NewServer(*addr, opts)
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting railists server",
			"addr", *addr,
			"backend", a.cfg.DataBackend,
			log.FieldOperation, log.OpStartup)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown error", log.FieldError, err.Error())
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}

// serverOptions builds the collection source, the cached report service and
// the optional wish list and import endpoints.
func (a *App) serverOptions(ctx context.Context) (apphttp.Options, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	metrics.Init()

	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return apphttp.Options{}, nil, err
	}
	res, err := backend.NewFactory(a.logger.Logger).CreateSource(ctx, bcfg)
	if err != nil {
		return apphttp.Options{}, nil, err
	}
	if res.Cleanup != nil {
		closers = append(closers, func() { _ = res.Cleanup() })
	}

	reports := services.NewReportService(res.Source, a.cfg.ReportCacheTTL)
	caches := cache.NewManager(a.logger.Logger)
	caches.Register(reports.Cache())
	caches.StartCleanup(time.Minute)
	closers = append(closers, caches.Stop)

	opts := apphttp.Options{
		Reports:           reports,
		Logger:            a.logger,
		RequestsPerMinute: a.cfg.HTTPRateLimit,
	}

	if path := a.cfg.WishListFile; path != "" {
		if _, err := os.Stat(path); err == nil {
			opts.WishList = func(context.Context) (core.WishList, error) {
				return datasource.LoadWishList(path)
			}
		}
	}

	if a.cfg.DataBackend == string(backend.SQLiteBackend) && a.cfg.CollectionFile != "" {
		importer, closeImporter, err := newImporter(a.cfg, a.logger)
		if err != nil {
			cleanup()
			return apphttp.Options{}, nil, err
		}
		closers = append(closers, closeImporter)
		opts.Importer = importer
		opts.ImportPath = a.cfg.CollectionFile
	}

	return opts, cleanup, nil
}

// newImporter opens its own repository handle; SQLite serializes writers
// through the busy timeout.
func newImporter(cfg *config.Config, logger *log.Logger) (*services.ImportService, func(), error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { _ = repo.Close() }}

	var publisher services.ImportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, imports will wait for the worker scan", log.FieldError, err.Error())
		} else {
			publisher = client
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	return services.NewImportService(repo, publisher), func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
