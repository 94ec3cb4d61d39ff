package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/turso"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  rtgscope migrate      # Run all pending migrations
  rtgscope migrate 1    # Migrate to version 1
  rtgscope migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := turso.NewDB(*cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := &migrate.Migrator{DB: db, Out: cmd.OutOrStdout()}

	current, err := m.Prepare(ctx)
	if err != nil {
		return err
	}

	all, err := migrate.Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	fmt.Fprintf(m.Out, "Current version: %d\n", current)

	target := 0
	if len(all) > 0 {
		target = all[len(all)-1].Version
	}
	if len(args) == 1 {
		target, err = strconv.Atoi(args[0])
		if err != nil || target < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		if len(all) > 0 && target > all[len(all)-1].Version {
			return fmt.Errorf("version %d does not exist, latest is %d", target, all[len(all)-1].Version)
		}
	}

	return m.To(ctx, all, current, target)
}
