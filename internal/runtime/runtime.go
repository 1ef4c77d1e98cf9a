package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waitline/waitline/internal/accounts"
	cfgpkg "github.com/waitline/waitline/internal/config"
	"github.com/waitline/waitline/internal/journal"
	"github.com/waitline/waitline/internal/queuestore"
	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
	"github.com/waitline/waitline/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        log.Logger
}

// Runtime wires storage, config, and facades for a single-node instance.
// The queue store is Redis-backed when config names a Redis address and
// in-memory otherwise; account records and the journal always live in the
// local Pebble database.
type Runtime struct {
	db       *pebblestore.DB
	redis    *redis.Client
	queues   queuestore.Store
	accounts *accounts.Store
	journal  *journal.Journal
	config   cfgpkg.Config
	logger   log.Logger
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval, Logger: logger})
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		db:       db,
		accounts: accounts.NewStore(db),
		journal:  journal.New(db, opts.Config.Journal.MaxEntries),
		config:   opts.Config,
		logger:   logger.With(log.Component("runtime")),
	}
	if addr := opts.Config.Redis.Addr; addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: opts.Config.Redis.Password,
			DB:       opts.Config.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			_ = db.Close()
			return nil, fmt.Errorf("runtime: redis ping %s: %w", addr, err)
		}
		rt.redis = client
		rt.queues = queuestore.NewRedis(client)
		rt.logger.Info("queue store: redis", log.Str("addr", addr))
	} else {
		rt.queues = queuestore.NewMemory()
		rt.logger.Info("queue store: memory")
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	var first error
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			first = err
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CheckHealth verifies the local database and, when configured, Redis.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	if r.redis != nil {
		if err := r.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Queues returns the venue queue store.
func (r *Runtime) Queues() queuestore.Store { return r.queues }

// Accounts returns the account record store.
func (r *Runtime) Accounts() *accounts.Store { return r.accounts }

// Journal returns the per-venue mutation journal.
func (r *Runtime) Journal() *journal.Journal { return r.journal }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
