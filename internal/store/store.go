// Package store persists catalog items, documents and settlements with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a gorm connection. The zero value is not usable; use New.
type Store struct {
	db       *gorm.DB
	defaults pricing.Settings
}

// New returns a Store over db. defaults are used when no company settings row exists.
func New(db *gorm.DB, defaults pricing.Settings) *Store {
	return &Store{db: db, defaults: defaults}
}

// Transaction runs fn with a Store bound to a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, defaults: s.defaults})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Settings returns the company billing settings, or the configured defaults when
// the settings row has not been created yet.
func (s *Store) Settings(ctx context.Context) (pricing.Settings, error) {
	var row models.CompanySettings
	err := s.conn(ctx).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return pricing.Settings{}, wrap("load settings", err)
	}
	return row.Settings(), nil
}

// SaveSettings updates the company billing settings, creating the row if needed.
func (s *Store) SaveSettings(ctx context.Context, settings pricing.Settings) error {
	var row models.CompanySettings
	err := s.conn(ctx).Order("id").First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrap("save settings", err)
	}
	if row.Name == "" {
		row.Name = "My Company"
	}
	row.DefaultVATRate = settings.DefaultVATRate
	row.CurrencySymbol = settings.CurrencySymbol
	return wrap("save settings", s.conn(ctx).Save(&row).Error)
}

// Revenue sums the grand totals of finalized invoices.
func (s *Store) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.conn(ctx).Model(&models.Document{}).
		Where("kind = ? AND status = ?", models.KindInvoice, models.StatusFinal).
		Select("COALESCE(SUM(grand_total), 0)").
		Scan(&total).Error
	return total, wrap("revenue", err)
}

func yearBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(1, 0, 0)
}
