package turso

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/rtgscope/internal/config"
)

// NewDB opens the experiments database described by cfg and pings it.
func NewDB(cfg config.Database) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	connStr := cfg.URL
	if cfg.IsRemote() {
		if cfg.AuthToken == "" {
			return nil, fmt.Errorf("RTGSCOPE_DATABASE_AUTH_TOKEN is required for remote database %s", cfg.URL)
		}
		connStr = fmt.Sprintf("%s?authToken=%s", cfg.URL, cfg.AuthToken)
	} else if err := ensureDir(cfg.URL); err != nil {
		return nil, err
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.IsRemote() {
		// Turso closes idle streams aggressively; stale pooled connections fail with "stream not found".
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func ensureDir(url string) error {
	p := strings.TrimPrefix(url, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" || strings.HasPrefix(p, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
