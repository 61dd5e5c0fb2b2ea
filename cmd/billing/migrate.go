package main

import (
	"errors"

	"github.com/diewo77/go-billing/internal/db"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/spf13/cobra"
)

var migrateSQL bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `migrate runs gorm AutoMigrate by default. With --sql it applies the
embedded SQL migrations through golang-migrate instead (postgres only).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")
		if migrateSQL {
			if cfg.Database.Driver == "sqlite" {
				return errors.New("--sql migrations require the postgres driver")
			}
			if err := db.RunSQLMigrations(db.MigrationURL(cfg.Database)); err != nil {
				return err
			}
			log.Info().Msg("sql migrations applied")
			return nil
		}
		conn, err := db.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn); err != nil {
			return err
		}
		log.Info().Msg("migrations completed successfully")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSQL, "sql", false, "apply embedded SQL migrations with golang-migrate")
}
