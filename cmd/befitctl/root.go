// Command befitctl administers a befit database: schema, users and demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/2beens/befit/internal/config"
	"github.com/2beens/befit/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	envFlag    string
	configPath string

	cfg    *config.Config
	dbPool *pgxpool.Pool
)

var rootCmd = &cobra.Command{
	Use:   "befitctl",
	Short: "Administration tool for the befit backend",
	Long: `befitctl manages the befit database directly.

EXAMPLES:

  $ befitctl db init                              # Create the befit tables
  $ befitctl users add coach --password s3cret --admin
  $ befitctl users list
  $ befitctl seed --user alice --sessions 12      # Fake training data for the last 4 weeks

The postgres password is read from BEFIT_POSTGRES_PASS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(envFlag, configPath)
		if err != nil {
			return err
		}

		dbPool, err = db.NewDBPool(cmd.Context(), db.NewDBPoolParams{
			DBHost:     cfg.PostgresHost,
			DBPort:     cfg.PostgresPort,
			DBName:     cfg.PostgresDBName,
			DBUser:     cfg.PostgresUser,
			DBPassword: os.Getenv("BEFIT_POSTGRES_PASS"),
		})
		if err != nil {
			return fmt.Errorf("failed to open db pool: %w", err)
		}
		return dbPool.Ping(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbPool != nil {
			dbPool.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.toml", "path for the TOML config file")

	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
