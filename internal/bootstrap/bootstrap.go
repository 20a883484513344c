// Package bootstrap opens the configured storage backends for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aminulnv/Year-In-Review/internal/config"
	"github.com/aminulnv/Year-In-Review/internal/database"
	"github.com/aminulnv/Year-In-Review/internal/repository"
	"github.com/aminulnv/Year-In-Review/internal/service"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// Backends holds the opened stores. Close releases the database connection
// when one was opened.
type Backends struct {
	Storage storage.Storage
	Sheets  service.SheetStore
	db      database.Database
}

// Close releases the database connection, if any.
func (b *Backends) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// connectFunc dials SurrealDB. Replaced in tests.
var connectFunc = func(ctx context.Context, cfg config.DatabaseConfig) (database.Database, error) {
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Host,
		Port:      cfg.Port,
		User:      cfg.User,
		Password:  cfg.Password,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Open builds the key/value storage from cfg.Storage and the receiver sheet
// store from cfg.Receiver. SurrealDB is dialed once and shared by both.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backends{}

	if cfg.UsesDatabase() {
		db, err := connectFunc(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.db = db
		if err := repository.Migrate(ctx, db); err != nil {
			_ = b.Close()
			return nil, err
		}
		logger.Info("connected to database",
			slog.String("host", cfg.Database.Host),
			slog.String("database", cfg.Database.Database),
		)
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		b.Storage = storage.NewMemory()
	case config.BackendFile:
		fs, err := storage.NewFile(cfg.Storage.Dir)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Storage = fs
	case config.BackendSurrealDB:
		b.Storage = repository.NewKVRepository(b.db)
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	switch cfg.Receiver.Backend {
	case config.BackendMemory:
		b.Sheets = service.NewMemorySheetStore()
	case config.BackendSurrealDB:
		b.Sheets = repository.NewSheetRepository(b.db)
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown receiver backend %q", cfg.Receiver.Backend)
	}

	logger.Info("storage ready",
		slog.String("storage", cfg.Storage.Backend),
		slog.String("receiver", cfg.Receiver.Backend),
	)
	return b, nil
}
