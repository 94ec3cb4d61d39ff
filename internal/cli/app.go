package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/turso"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/migrate"
)

// AppContext holds the database-backed dependencies shared by commands.
type AppContext struct {
	DB    *sql.DB
	Repos *turso.Repositories
}

// NewAppContext opens the database and brings its schema up to date.
func NewAppContext(ctx context.Context, cfg config.Database) (*AppContext, error) {
	db, err := turso.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &AppContext{
		DB:    db,
		Repos: turso.NewRepositories(db),
	}, nil
}

// Close releases the database connection.
func (a *AppContext) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
