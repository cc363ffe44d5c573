package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/migrations"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

// Registry owns the process-wide connections. It is opened once at startup and
// closed once on shutdown; nothing else constructs connections.
type Registry struct {
	DB    *sqlx.DB
	Redis *redis.Client

	logger *zap.Logger
}

// Open connects to PostgreSQL, applies migrations when enabled and connects to Redis
// when enabled. A Redis failure degrades to running without the cache.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	reg := &Registry{DB: db, logger: logger}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db.DB, migrations.FS, "."); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, reference cache disabled", zap.Error(err))
		} else {
			reg.Redis = client
		}
	}

	return reg, nil
}

// Ping checks every open backend.
func (r *Registry) Ping(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return errors.New("database registry not initialised")
	}
	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if r.Redis != nil {
		if err := r.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
	}
	return nil
}

// Close releases connections in reverse order of acquisition.
func (r *Registry) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if r.logger != nil {
		r.logger.Info("database registry closed")
	}
	return errors.Join(errs...)
}
