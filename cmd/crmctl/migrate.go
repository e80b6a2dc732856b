package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/spf13/cobra"

	"donorcrm/internal/db"
	"donorcrm/internal/infra"
)

const migrationsTable = "schema_migrations"

func newMigrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			logger := infra.NewLogger(cfg.AppEnv)

			conn, err := sql.Open("postgres", cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			migrations, err := db.Migrations()
			if err != nil {
				return fmt.Errorf("load migrations: %w", err)
			}
			applied, err := migrate(cmd.Context(), conn, migrations, dryRun)
			if err != nil {
				return err
			}
			for _, name := range applied {
				logger.Info().Str("migration", name).Bool("dry_run", dryRun).Msg("migrate: applied")
			}
			cmd.Printf("%d migration(s) applied\n", len(applied))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}

// migrate runs every migration not yet recorded, each in its own
// transaction, and returns the names it applied.
func migrate(ctx context.Context, conn *sql.DB, migrations []db.Migration, dryRun bool) ([]string, error) {
	table := pq.QuoteIdentifier(migrationsTable)
	if _, err := conn.ExecContext(ctx, `create table if not exists `+table+` (
  name text primary key,
  applied_at timestamptz not null default now()
)`); err != nil {
		return nil, fmt.Errorf("create %s: %w", migrationsTable, err)
	}

	done := map[string]bool{}
	rows, err := conn.QueryContext(ctx, `select name from `+table)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		done[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range pending(migrations, done) {
		if dryRun {
			applied = append(applied, m.Name)
			continue
		}
		if err := applyOne(ctx, conn, table, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.Name)
	}
	return applied, nil
}

func pending(migrations []db.Migration, done map[string]bool) []db.Migration {
	var out []db.Migration
	for _, m := range migrations {
		if !done[m.Name] {
			out = append(out, m)
		}
	}
	return out
}

func applyOne(ctx context.Context, conn *sql.DB, table string, m db.Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("migration %s: %s (%s)", m.Name, pqErr.Message, pqErr.Code)
		}
		return fmt.Errorf("migration %s: %w", m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `insert into `+table+`(name) values ($1)`, m.Name); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Name, err)
	}
	return tx.Commit()
}
