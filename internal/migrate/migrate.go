package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/rtgscope/migrations"
)

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Migration represents a single database migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies embedded migrations to a database and reports progress to Out.
type Migrator struct {
	DB  *sql.DB
	Out io.Writer
}

// New returns a Migrator that discards progress output.
func New(db *sql.DB) *Migrator {
	return &Migrator{DB: db, Out: io.Discard}
}

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func (m *Migrator) EnsureMigrationsTable(ctx context.Context) error {
	_, err := m.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// CurrentVersion returns the current migration version and dirty state.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, bool, error) {
	var version, dirty int

	err := m.DB.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty == 1, nil
}

func (m *Migrator) setVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := m.DB.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	_, err := m.DB.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// Load reads all embedded migration files and returns them sorted by version.
func Load() ([]Migration, error) {
	return loadFrom(migrations.FS)
}

func loadFrom(fsys fs.FS) ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		name := matches[2]

		upSQL, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		downPath := path.Join(path.Dir(p), fmt.Sprintf("%s_%s.down.sql", matches[1], name))
		downSQL, err := fs.ReadFile(fsys, downPath)
		if err != nil {
			downSQL = nil
		}

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// Run executes a single migration (up or down), marking the schema dirty while it runs.
func (m *Migrator) Run(ctx context.Context, mig Migration, up bool) error {
	direction := "up"
	content := mig.UpSQL
	target := mig.Version
	if !up {
		direction = "down"
		content = mig.DownSQL
		target = mig.Version - 1
	}

	fmt.Fprintf(m.Out, "  %s %03d_%s...\n", direction, mig.Version, mig.Name)

	if err := m.setVersion(ctx, mig.Version, true); err != nil {
		return fmt.Errorf("set dirty flag: %w", err)
	}

	for _, stmt := range SplitSQL(content) {
		if _, err := m.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration %d %s: %w\nSQL: %s", mig.Version, direction, err, stmt)
		}
	}

	if err := m.setVersion(ctx, target, false); err != nil {
		return fmt.Errorf("clear dirty flag: %w", err)
	}
	return nil
}

// SplitSQL splits a SQL script on semicolons, dropping empty statements.
func SplitSQL(script string) []string {
	var stmts []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// To migrates up or down until the schema is at target.
func (m *Migrator) To(ctx context.Context, all []Migration, current, target int) error {
	switch {
	case target > current:
		fmt.Fprintf(m.Out, "Migrating up to version %d...\n", target)
		for _, mig := range all {
			if mig.Version <= current {
				continue
			}
			if mig.Version > target {
				break
			}
			if err := m.Run(ctx, mig, true); err != nil {
				return err
			}
		}
	case target < current:
		fmt.Fprintf(m.Out, "Migrating down to version %d...\n", target)
		for i := len(all) - 1; i >= 0; i-- {
			mig := all[i]
			if mig.Version > current {
				continue
			}
			if mig.Version <= target {
				break
			}
			if mig.DownSQL == "" {
				return fmt.Errorf("no down migration for version %d", mig.Version)
			}
			if err := m.Run(ctx, mig, false); err != nil {
				return err
			}
		}
	default:
		fmt.Fprintln(m.Out, "Already at target version")
		return nil
	}

	fmt.Fprintf(m.Out, "Migrated to version %d\n", target)
	return nil
}

// Prepare ensures the bookkeeping table exists and refuses to continue from a dirty state.
func (m *Migrator) Prepare(ctx context.Context) (int, error) {
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	current, dirty, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get current version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}
	return current, nil
}

// RunAll runs all pending migrations.
func (m *Migrator) RunAll(ctx context.Context) error {
	current, err := m.Prepare(ctx)
	if err != nil {
		return err
	}

	all, err := Load()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if len(all) == 0 || all[len(all)-1].Version <= current {
		return nil
	}
	return m.To(ctx, all, current, all[len(all)-1].Version)
}

// RunAll runs all pending migrations on db without progress output.
func RunAll(ctx context.Context, db *sql.DB) error {
	return New(db).RunAll(ctx)
}
