package backend

import (
	"fmt"

	"debtpilot/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	cacheType := CacheType(appConfig.CacheBackend)
	if !cacheType.IsValid() {
		return Config{}, fmt.Errorf("invalid cache type in config: %s", appConfig.CacheBackend)
	}

	return Config{
		Type:          backendType,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		SeedFile:      appConfig.SeedFile,
		CacheType:     cacheType,
		CacheSize:     appConfig.CacheSize,
		CacheTTL:      appConfig.CacheTTL,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	if c.CacheType == "" {
		return nil
	}
	if !c.CacheType.IsValid() {
		return fmt.Errorf("invalid cache type: %s", c.CacheType)
	}
	if c.CacheType == RedisCache && c.RedisAddr == "" {
		return fmt.Errorf("Redis address is required for redis cache")
	}
	return nil
}
