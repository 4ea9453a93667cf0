package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
)

// AnaliseRepository persists checklist analysis rows. Rows are owned by
// their Peritagem and are only ever written as a full set.
type AnaliseRepository struct {
	db *gorm.DB
}

func NewAnaliseRepository(db *gorm.DB) *AnaliseRepository {
	return &AnaliseRepository{db: db}
}

// FindByPeritagem returns all analysis rows of one inspection in insertion
// order.
func (r *AnaliseRepository) FindByPeritagem(ctx context.Context, peritagemID string) ([]entity.AnaliseItem, error) {
	var items []entity.AnaliseItem
	err := r.db.WithContext(ctx).
		Where("peritagem_id = ?", peritagemID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// ReplaceForPeritagem deletes every analysis row of the inspection and
// inserts the given set, inside one transaction. The observable semantics
// are a full replace; the transaction only closes the window where a failed
// reinsert would leave the inspection with zero rows.
func (r *AnaliseRepository) ReplaceForPeritagem(ctx context.Context, peritagemID string, items []entity.AnaliseItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("peritagem_id = ?", peritagemID).Delete(&entity.AnaliseItem{}).Error; err != nil {
			return err
		}
		return insertItems(tx, peritagemID, items)
	})
}

// CreateForPeritagem inserts the analysis set of a brand-new inspection.
func (r *AnaliseRepository) CreateForPeritagem(ctx context.Context, peritagemID string, items []entity.AnaliseItem) error {
	return insertItems(r.db.WithContext(ctx), peritagemID, items)
}

func insertItems(tx *gorm.DB, peritagemID string, items []entity.AnaliseItem) error {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()[:32]
		}
		items[i].PeritagemID = peritagemID
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
