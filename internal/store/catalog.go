package store

import (
	"context"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveCatalogItem validates item and upserts it with its add-ons. Missing ids are generated.
func (s *Store) SaveCatalogItem(ctx context.Context, item pricing.CatalogItem) (pricing.CatalogItem, error) {
	if err := item.Validate(); err != nil {
		return pricing.CatalogItem{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	addOns := make([]pricing.AddOnOption, len(item.AddOns))
	for i, a := range item.AddOns {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		addOns[i] = a
	}
	item.AddOns = addOns

	row := models.CatalogItemFromPricing(item)
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"updated_at", "name", "kind", "unit_price", "rate", "unit", "default_vat_rate", "parent_id",
			}),
		}
		if err := tx.Omit("AddOns").Clauses(upsert).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("catalog_item_id = ?", row.ID).Delete(&models.CatalogAddOn{}).Error; err != nil {
			return err
		}
		if len(row.AddOns) == 0 {
			return nil
		}
		return tx.Create(&row.AddOns).Error
	})
	if err != nil {
		return pricing.CatalogItem{}, wrap("save catalog item", err)
	}
	return item, nil
}

// GetCatalogItem loads one catalog item with its add-ons.
func (s *Store) GetCatalogItem(ctx context.Context, id string) (pricing.CatalogItem, error) {
	var row models.CatalogItem
	err := s.conn(ctx).Preload("AddOns", orderByPosition).First(&row, "id = ?", id).Error
	if err != nil {
		return pricing.CatalogItem{}, wrap("get catalog item", err)
	}
	return row.ToPricing(), nil
}

// ListCatalogItems returns every catalog item ordered by name.
func (s *Store) ListCatalogItems(ctx context.Context) ([]pricing.CatalogItem, error) {
	var rows []models.CatalogItem
	if err := s.conn(ctx).Preload("AddOns", orderByPosition).Order("name").Find(&rows).Error; err != nil {
		return nil, wrap("list catalog items", err)
	}
	out := make([]pricing.CatalogItem, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToPricing())
	}
	return out, nil
}

// CatalogFor loads the catalog items referenced by lines plus their parents.
// References that no longer resolve are simply absent from the result.
func (s *Store) CatalogFor(ctx context.Context, lines []pricing.LineItem) (pricing.CatalogMap, error) {
	catalog := pricing.NewCatalogMap()
	ids := map[string]struct{}{}
	for _, l := range lines {
		if id := l.CatalogItemID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	// Two rounds: referenced items, then the parents they point at.
	for round := 0; round < 2 && len(ids) > 0; round++ {
		want := make([]string, 0, len(ids))
		for id := range ids {
			if _, ok := catalog[id]; !ok {
				want = append(want, id)
			}
		}
		if len(want) == 0 {
			break
		}
		var rows []models.CatalogItem
		if err := s.conn(ctx).Preload("AddOns", orderByPosition).Where("id IN ?", want).Find(&rows).Error; err != nil {
			return nil, wrap("load catalog", err)
		}
		ids = map[string]struct{}{}
		for i := range rows {
			item := rows[i].ToPricing()
			catalog[item.ID] = item
			if item.ParentID != "" {
				ids[item.ParentID] = struct{}{}
			}
		}
	}
	return catalog, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
