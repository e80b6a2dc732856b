// Command crmctl runs operator tasks against the donor CRM database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"donorcrm/internal/infra"
)

// env is the configuration shared by subcommands that talk to the database.
type env struct {
	cfg    *infra.Config
	logger infra.Logger
	pool   *pgxpool.Pool
	runner *infra.SQLRunner
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

// connect loads config and opens the pgx pool.
func connect(ctx context.Context) (*env, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv)
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, pool: pool, runner: infra.NewSQLRunner(pool, logger)}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Donor CRM admin commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newCredentialsCmd(),
		newCampaignsCmd(),
		newTokenCmd(),
	)
	return root
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "crmctl:", err)
		stop()
		os.Exit(1)
	}
}
