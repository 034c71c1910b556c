package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ynab-exchange/core/config"
	"ynab-exchange/core/database"
	"ynab-exchange/core/events"
	"ynab-exchange/core/rates"
	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/state"
	"ynab-exchange/core/storage"
	"ynab-exchange/core/ynab"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Build assembles a Service from configuration. The returned cleanup closes
// the event publisher and the database and must be called once.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Cleanup failed", zap.Error(err))
			}
		}
	}

	svc, err := build(ctx, cfg, logger, &closers)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger, closers *[]func() error) (*Service, error) {
	if cfg.YNAB.Token == "" {
		return nil, errors.New("ynab.token is required (set YNAB_TOKEN)")
	}

	budgets, err := config.LoadBudgets(cfg.Reconcile.BudgetsFile)
	if err != nil {
		return nil, err
	}

	rc := cfg.Reconcile
	deps := reconcile.Deps{
		Ledger: ynab.NewClient(cfg.YNAB),
		Rates:  rates.NewCache(rates.NewClient(cfg.Rates), time.Duration(cfg.Rates.CacheTTLSeconds)*time.Second),
		Logger: logger,
	}

	var db *gorm.DB
	var cursors CursorAdmin

	var store storage.Client
	objectStore := func() (storage.Client, error) {
		if store != nil {
			return store, nil
		}
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		store = client
		return store, nil
	}

	switch rc.CursorBackend {
	case reconcile.CursorBackendDatabase, "":
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		if err := state.AutoMigrate(db); err != nil {
			return nil, err
		}
		cursors = state.NewDBCursorStore(db)
		deps.Records = state.NewDBRecordStore(db)
		deps.Locker = state.NewDBLocker(db, time.Duration(rc.LeaseTTLSeconds)*time.Second, logger)
		logger.Info("Using database state", zap.String("driver", cfg.Database.Driver))

	case reconcile.CursorBackendStorage:
		client, err := objectStore()
		if err != nil {
			return nil, err
		}
		cursors = state.NewObjectCursorStore(client, cfg.Storage.Bucket, "")
		deps.Records = state.NewObjectRecordStore(client, cfg.Storage.Bucket, "")
		logger.Info("Using object storage cursors", zap.String("bucket", cfg.Storage.Bucket))

	default:
		return nil, fmt.Errorf("unknown cursor backend: %s", rc.CursorBackend)
	}
	deps.Cursors = cursors

	var archive *ReportArchive
	if rc.ArchiveReports {
		client, err := objectStore()
		if err != nil {
			return nil, err
		}
		archive = NewReportArchive(client, cfg.Storage.Bucket, "")
	}

	if cfg.Events.Enabled() {
		publisher := events.NewKafkaPublisher(cfg.Events)
		*closers = append(*closers, publisher.Close)
		deps.Publisher = publisher
		logger.Info("Publishing mirror events", zap.Strings("brokers", cfg.Events.BrokerList()), zap.String("topic", cfg.Events.Topic))
	}

	engine := reconcile.NewEngine(rc, deps)
	return NewService(engine, budgets, cursors, archive, db, logger), nil
}
