package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/contoso-university-api/internal/repository"
	"github.com/noah-isme/contoso-university-api/pkg/config"
	"github.com/noah-isme/contoso-university-api/pkg/database"
)

// Store is an opened school store together with its lifecycle hooks.
type Store struct {
	repository.Store
	// Ping reports whether the backing database answers.
	Ping  func(ctx context.Context) error
	Close func() error
}

// OpenStore connects the driver selected by cfg. Postgres schemas are
// migrated first when auto-migration is enabled.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, observe repository.QueryObserver, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Info("using in-memory school store")
		return &Store{
			Store: repository.NewMemoryStore(observe),
			Ping:  func(context.Context) error { return nil },
			Close: func() error { return nil },
		}, nil
	case config.DriverPostgres:
		db, err := database.NewPostgres(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.AutoMigrate {
			if err := database.ApplyMigrations(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database schema up to date")
		}
		logger.Info("using postgres school store", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
		return &Store{
			Store: repository.NewSchoolContext(db, observe),
			Ping:  db.PingContext,
			Close: db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
