package backend

import (
	"context"
	"time"

	"debtpilot/internal/cache"
	"debtpilot/internal/core"
	"debtpilot/internal/services"
)

// Store is a plan store the process owns and must close.
type Store interface {
	services.PlanStore
	Ping(ctx context.Context) error
	Close() error
}

// Result bundles the created store with its cleanup.
type Result struct {
	Store   Store
	Cleanup func() error
}

// Factory creates stores and result caches based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
	CreateCache(ctx context.Context, config Config, manager *cache.Manager) (cache.Cache[core.SimulationResult], func() error, error)
}

type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string

	// Memory: optional YAML ledger file loaded at startup
	SeedFile string

	// Result cache
	CacheType     CacheType
	CacheSize     int
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

type CacheType string

const (
	NoCache     CacheType = "none"
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
)

func (ct CacheType) IsValid() bool {
	switch ct {
	case NoCache, MemoryCache, RedisCache:
		return true
	default:
		return false
	}
}
