// Package backend builds the storage and cache implementations selected by
// configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"debtpilot/internal/cache"
	"debtpilot/internal/core"
	"debtpilot/internal/ledgerfile"
	"debtpilot/internal/log"
	"debtpilot/internal/storage"
	"debtpilot/internal/storage/memory"
)

var _ Factory = (*DefaultFactory)(nil)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With(log.FieldComponent, log.ComponentBackend)}
}

func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteStore(config)
	case MemoryBackend:
		return f.createMemoryStore(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryStore(ctx context.Context, config Config) (*Result, error) {
	store := memory.New()
	if config.SeedFile != "" {
		n, err := seed(ctx, store, config.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed memory backend: %w", err)
		}
		f.logger.Info("Seeded memory backend", "seed_file", config.SeedFile, "plans", n)
	}
	f.logger.Info("Initialized memory backend")
	return &Result{Store: store, Cleanup: store.Close}, nil
}

// seed loads every plan in the ledger file, together with its
// transactions, into store.
func seed(ctx context.Context, store *memory.Store, path string) (int, error) {
	docs, err := ledgerfile.Load(path)
	if err != nil {
		return 0, err
	}
	for i, doc := range docs {
		p, err := doc.Plan(fmt.Sprintf("plan %d", i+1))
		if err != nil {
			return 0, fmt.Errorf("document %d: %w", i+1, err)
		}
		created, err := store.CreatePlan(ctx, p)
		if err != nil {
			return 0, fmt.Errorf("document %d: %w", i+1, err)
		}
		for _, tx := range doc.Transactions {
			if err := store.AddTransaction(ctx, created.ID, tx); err != nil {
				return 0, fmt.Errorf("document %d: %w", i+1, err)
			}
		}
	}
	return len(docs), nil
}

// CreateCache returns the simulation result cache, or nil when caching is
// disabled. In-process caches are registered with manager for cleanup.
func (f *DefaultFactory) CreateCache(ctx context.Context, config Config, manager *cache.Manager) (cache.Cache[core.SimulationResult], func() error, error) {
	switch config.CacheType {
	case "", NoCache:
		f.logger.Info("Simulation cache disabled")
		return nil, nil, nil
	case MemoryCache:
		c := cache.NewLRUCache[core.SimulationResult](config.CacheSize, config.CacheTTL)
		if manager != nil {
			manager.Register(c)
		}
		f.logger.Info("Initialized in-memory simulation cache", "size", config.CacheSize, "ttl", config.CacheTTL)
		return c, nil, nil
	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", config.RedisAddr, err)
		}
		f.logger.Info("Initialized Redis simulation cache", "addr", config.RedisAddr, "ttl", config.CacheTTL)
		return cache.NewRedisCache[core.SimulationResult](client, "debtpilot:", config.CacheTTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache type: %s", config.CacheType)
	}
}
