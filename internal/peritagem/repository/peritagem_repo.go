package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
)

// PeritagemRepository persists inspection records.
type PeritagemRepository struct {
	db *gorm.DB
}

func NewPeritagemRepository(db *gorm.DB) *PeritagemRepository {
	return &PeritagemRepository{db: db}
}

// FindAll lists inspections newest first, filtered by equality on status,
// cliente and criado_por. Status filters match legacy synonyms too, so a
// filter on the canonical value still finds rows written by old builds.
func (r *PeritagemRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Peritagem, int64, error) {
	var items []entity.Peritagem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Peritagem{})

	if status := filters["status"]; status != "" {
		query = query.Where("status IN ?", statusFilterValues(status))
	}
	if cliente := filters["cliente"]; cliente != "" {
		query = query.Where("cliente = ?", cliente)
	}
	if criadoPor := filters["criado_por"]; criadoPor != "" {
		query = query.Where("criado_por = ?", criadoPor)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range items {
		items[i].Status = entity.NormalizeStatus(items[i].Status)
	}
	return items, total, nil
}

// statusFilterValues expands a canonical status into itself plus every
// legacy spelling that normalizes to it.
func statusFilterValues(canonical string) []string {
	values := []string{canonical}
	for _, legacy := range []string{
		"Aguardando Clientes",
		"Cilindros em Manutenção",
		"ORÇAMENTO FINALIZADO",
		"Finalizados",
	} {
		if entity.NormalizeStatus(legacy) == canonical {
			values = append(values, legacy)
		}
	}
	return values
}

// FindByID fetches one inspection, normalizing its status on the way out.
func (r *PeritagemRepository) FindByID(ctx context.Context, id string) (*entity.Peritagem, error) {
	var p entity.Peritagem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Status = entity.NormalizeStatus(p.Status)
	return &p, nil
}

// Create inserts an inspection, translating uniqueness violations on
// numero_peritagem into ErrDuplicateNumero.
func (r *PeritagemRepository) Create(ctx context.Context, p *entity.Peritagem) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(p).Error)
}

// Update saves the full row.
func (r *PeritagemRepository) Update(ctx context.Context, p *entity.Peritagem) error {
	return translateDuplicate(r.db.WithContext(ctx).Save(p).Error)
}

// UpdateStatus mutates only the status column plus any extra columns the
// transition attaches (e.g. pedido_compra on release). Single atomic update.
func (r *PeritagemRepository) UpdateStatus(ctx context.Context, id, status string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": status}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&entity.Peritagem{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateNumero
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateNumero
	}
	return err
}
