// Package backend opens the blob store selected in the configuration.
package backend

import (
	"context"
	"fmt"

	"alcyxob/routine-builder/internal/config"
	"alcyxob/routine-builder/internal/repository"
	"alcyxob/routine-builder/internal/repository/file"
	"alcyxob/routine-builder/internal/repository/mongo"
	"alcyxob/routine-builder/internal/repository/postgres"
	"alcyxob/routine-builder/internal/repository/redis"

	"github.com/rs/zerolog/log"
)

const (
	File     = "file"
	Redis    = "redis"
	Mongo    = "mongo"
	Postgres = "postgres"
)

// Closer releases whatever connection a backend holds.
type Closer func() error

func noopCloser() error { return nil }

// Open connects to the configured backend.
func Open(ctx context.Context, cfg *config.Config) (repository.BlobStore, Closer, error) {
	switch cfg.Store.Backend {
	case File, "":
		s, err := file.NewStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.Store.DataDir).Msg("using file store")
		return s, noopCloser, nil

	case Redis:
		s, err := redis.Connect(ctx, redis.Options{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case Mongo:
		client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		s := mongo.NewRowStore(client.Database(cfg.Database.Name))
		s.EnsureIndexes(ctx)
		return s, func() error { return mongo.DisconnectDB(client) }, nil

	case Postgres:
		db, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.NewStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
