package store

import (
	"context"

	"github.com/diewo77/go-billing/internal/models"
	"github.com/diewo77/go-billing/internal/pricing"
	"gorm.io/gorm"
)

// ListFilter narrows ListDocuments.
type ListFilter struct {
	Kind   models.DocumentKind
	Status models.DocumentStatus
	Limit  int
	Offset int
}

// CreateDocument inserts doc and assigns the next number for its kind and year.
func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if doc.Number == "" {
			from, to := yearBounds(doc.IssueDate)
			var count int64
			err := tx.Unscoped().Model(&models.Document{}).
				Where("kind = ? AND issue_date >= ? AND issue_date < ?", doc.Kind, from, to).
				Count(&count).Error
			if err != nil {
				return err
			}
			doc.Number = models.FormatNumber(doc.Kind, doc.IssueDate.Year(), int(count)+1)
		}
		return tx.Create(doc).Error
	})
	return wrap("create document", err)
}

// GetDocument loads a document with its lines in position order and its payments.
func (s *Store) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := s.conn(ctx).
		Preload("Lines", orderByPosition).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date, id") }).
		First(&doc, id).Error
	if err != nil {
		return nil, wrap("get document", err)
	}
	return &doc, nil
}

// ListDocuments returns documents newest first along with the total count matching f.
func (s *Store) ListDocuments(ctx context.Context, f ListFilter) ([]models.Document, int64, error) {
	q := s.conn(ctx).Model(&models.Document{})
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap("count documents", err)
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	var docs []models.Document
	err := q.Order("issue_date DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&docs).Error
	if err != nil {
		return nil, 0, wrap("list documents", err)
	}
	return docs, total, nil
}

// ReplaceLines swaps every line of doc for lines and saves doc's header in the
// same transaction. doc.Lines is updated to the stored rows.
func (s *Store) ReplaceLines(ctx context.Context, doc *models.Document, lines []pricing.LineItem) error {
	rows := make([]models.DocumentLine, 0, len(lines))
	for i, l := range lines {
		rows = append(rows, models.LineFromPricing(doc.ID, i, l))
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentLine{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Lines", "Payments").Save(doc).Error
	})
	if err != nil {
		return wrap("replace lines", err)
	}
	doc.Lines = rows
	return nil
}

// DeleteDocument soft-deletes a document.
func (s *Store) DeleteDocument(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.Document{}, id)
	if res.Error != nil {
		return wrap("delete document", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete document", gorm.ErrRecordNotFound)
	}
	return nil
}
