package main

import (
	"github.com/2beens/befit/internal/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database schema commands",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the befit tables if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.ApplySchema(cmd.Context(), dbPool); err != nil {
			return err
		}
		color.Green("✓ schema applied to %s", cfg.PostgresDBName)
		for _, table := range db.Tables {
			color.New(color.Faint).Printf("  %s\n", table)
		}
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
}
