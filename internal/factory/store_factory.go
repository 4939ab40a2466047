package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/email-insights/internal/adapters/store"
	"github.com/mikey/email-insights/internal/config"
	"github.com/mikey/email-insights/internal/core"
	"go.uber.org/zap"
)

// Stores bundles the email and contact views of one backing store
type Stores struct {
	Emails   core.EmailStore
	Contacts core.ContactStore
}

// StoreFactory creates email/contact stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStores creates the stores based on the configuration. Memory,
// SQLite and MySQL backends all serve both interfaces from one store.
func (f *StoreFactory) CreateStores() (*Stores, error) {
	storeCfg := f.cfg.GetStore()

	switch storeCfg.Type {
	case "memory":
		memStore := store.NewMemoryStore(f.logger)
		return &Stores{Emails: memStore, Contacts: memStore}, nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		sqliteStore, err := store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
		if err != nil {
			return nil, err
		}
		return &Stores{Emails: sqliteStore, Contacts: sqliteStore}, nil
	case "mysql":
		mysqlStore, err := store.NewMySQLStore(storeCfg.MySQLDSN, f.logger)
		if err != nil {
			return nil, err
		}
		return &Stores{Emails: mysqlStore, Contacts: mysqlStore}, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
