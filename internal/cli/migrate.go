package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pressroom/internal/database"
)

// migrateCmd applies pending migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every pending migration embedded in the binary.

Examples:
  pressroom migrate           # Apply pending migrations
  pressroom migrate status    # Show the current schema version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(db)
	},
}

// migrateStatusCmd shows the schema version
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		version, err := database.Version(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
		return nil
	},
}

// seedCmd loads the sample data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an admin account, sample categories and a welcome post",
	Long: `Seed an empty database. Each step is skipped when its table already
has rows, so running it twice is harmless. The admin password comes from
ADMIN_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}
		return database.Seed(cmd.Context(), db, cfg.AdminPassword)
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
