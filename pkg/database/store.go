package database

import (
	"context"
	"fmt"

	"github.com/q6kkhvmy6s/rsvp/config"
	"github.com/q6kkhvmy6s/rsvp/internal/repository"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.uber.org/zap"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// OpenStore connects the backend named by cfg.StoreDriver. The returned
// closer releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, func() error, error) {
	switch cfg.StoreDriver {
	case DriverPostgres, "":
		db, err := NewPostgresDB(cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		logger.Log.Info("store ready", zap.String("driver", DriverPostgres), zap.String("host", cfg.DBHost))
		return repository.NewGormStore(db), func() error { return ClosePostgres(db) }, nil

	case DriverMongo:
		client, err := OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		store := repository.NewMongoStore(client.Database(cfg.MongoDB))
		logger.Log.Info("store ready", zap.String("driver", DriverMongo), zap.String("db", cfg.MongoDB))
		return store, func() error { return client.Disconnect(context.Background()) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
