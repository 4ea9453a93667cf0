package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
)

// HistoricoRepository is the append-only audit trail store.
type HistoricoRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewHistoricoRepository(db *gorm.DB) *HistoricoRepository {
	return &HistoricoRepository{db: db, logger: zap.NewNop()}
}

// SetLogger wires the service logger used to report lost audit writes.
func (r *HistoricoRepository) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// FindByPeritagem lists the audit trail of one inspection, newest first.
func (r *HistoricoRepository) FindByPeritagem(ctx context.Context, peritagemID string) ([]entity.HistoricoStatus, error) {
	var items []entity.HistoricoStatus
	err := r.db.WithContext(ctx).
		Where("peritagem_id = ?", peritagemID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// LogTransition appends one audit row after a status change. Best-effort: a
// failed write is logged and swallowed, it never undoes the transition it
// documents.
func (r *HistoricoRepository) LogTransition(ctx context.Context, peritagemID, statusAnterior, statusNovo, actorID, actorNome, motivo string) {
	row := &entity.HistoricoStatus{
		ID:             uuid.New().String()[:32],
		PeritagemID:    peritagemID,
		StatusAnterior: statusAnterior,
		StatusNovo:     statusNovo,
		UsuarioID:      actorID,
		UsuarioNome:    actorNome,
		Motivo:         motivo,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Warn("audit trail write lost",
			zap.String("peritagem_id", peritagemID),
			zap.String("status_novo", statusNovo),
			zap.Error(err))
	}
}
