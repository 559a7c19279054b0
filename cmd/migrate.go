package cmd

import (
	"fmt"

	"study-tracker/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, closer, err := loadRuntime()
		if err != nil {
			return err
		}
		defer closer.Close()

		db, err := database.Init(cfg.Database)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer database.Close(db)

		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("migration finished", "driver", cfg.Database.Driver)
		fmt.Fprintln(cmd.OutOrStdout(), "migration finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
