// Package db opens the database and keeps its schema up to date.
package db

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-billing/internal/config"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ConnectRetries is how many times Connect tries to reach postgres before giving up.
var ConnectRetries = 5

var (
	passwordRe    = regexp.MustCompile(`(password=)(\S+)`)
	urlPasswordRe = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
)

func maskDSN(dsn string) string {
	dsn = passwordRe.ReplaceAllString(dsn, "${1}***")
	return urlPasswordRe.ReplaceAllString(dsn, "${1}***${3}")
}

// Connect opens the database described by cfg. Postgres connections are retried
// to give the server time to start.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.WithComponent("db")
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}

	switch cfg.Driver {
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("opening sqlite database")
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case "postgres", "":
	default:
		return nil, fmt.Errorf("db: unknown driver %q", cfg.Driver)
	}

	dsn := PostgresDSN(cfg)
	log.Info().Str("dsn", maskDSN(dsn)).Msg("connecting to postgres")

	var conn *gorm.DB
	var err error
	for i := 0; i < ConnectRetries; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("database not ready, retrying")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect after %d attempts: %w", ConnectRetries, err)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return conn, nil
}

// Migrate creates or updates every table with gorm's AutoMigrate.
func Migrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"documents", "document_lines", "catalog_items"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded SQL migrations to a postgres database URL.
func RunSQLMigrations(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("db: migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("db: migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db: migrate up: %w", err)
	}
	return nil
}

// Seed inserts the company settings row with the given defaults when none exists.
func Seed(conn *gorm.DB, defaults pricing.Settings) error {
	var count int64
	if err := conn.Model(&models.CompanySettings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("db: seed: %w", err)
	}
	if count > 0 {
		return nil
	}
	row := models.CompanySettings{
		Name:           "My Company",
		DefaultVATRate: defaults.DefaultVATRate,
		CurrencySymbol: defaults.CurrencySymbol,
	}
	return conn.Create(&row).Error
}
