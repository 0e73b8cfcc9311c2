// Package redis stores each collection as a single string value, the same
// layout the browser app used in local storage: <prefix>:<collection>_<owner>.
package redis

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "routine-builder"

// Options configures the connection.
type Options struct {
	Address  string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Store is a repository.BlobStore on top of a redis client.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// Connect opens a client and pings the server.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Address, err)
	}
	log.Info().Str("address", opts.Address).Int("db", opts.DB).Msg("connected to redis")
	return NewStore(rdb, opts.Prefix), nil
}

// NewStore wraps an existing client.
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Key is the redis key of an owner's collection.
func (s *Store) Key(owner string, c domain.Collection) string {
	return s.prefix + ":" + string(c) + "_" + owner
}

// Load fetches a collection.
func (s *Store) Load(ctx context.Context, owner string, c domain.Collection) ([]byte, error) {
	if !repository.ValidOwner(owner) {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}
	data, err := s.rdb.Get(ctx, s.Key(owner, c)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c, err)
	}
	return data, nil
}

// Save overwrites a collection. Values never expire.
func (s *Store) Save(ctx context.Context, owner string, c domain.Collection, blob []byte) error {
	if !repository.ValidOwner(owner) {
		return fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}
	if err := s.rdb.Set(ctx, s.Key(owner, c), blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c, err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
