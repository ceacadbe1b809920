// Package factory selects a storage backend from configuration.
package factory

import (
	"fmt"

	"github.com/Shagunjha0111/community-section/internal/store"
	"github.com/Shagunjha0111/community-section/internal/store/postgres"
	"github.com/Shagunjha0111/community-section/internal/store/sqlite"
	"github.com/Shagunjha0111/community-section/pkg/config"
)

// Open builds the store named by cfg.Driver.
func Open(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return sqlite.New(cfg.Path)
	case "postgres":
		return postgres.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
