package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/repository"
)

// WorkflowService drives the peritagem status machine. Every transition is
// one atomic status update followed by a best-effort audit append; there is
// no optimistic locking, concurrent approvals resolve last-write-wins.
type WorkflowService struct {
	peritagemRepo *repository.PeritagemRepository
	historicoRepo *repository.HistoricoRepository
	report        *ReportService
	logger        *zap.Logger
}

func NewWorkflowService(peritagemRepo *repository.PeritagemRepository, historicoRepo *repository.HistoricoRepository, report *ReportService, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		peritagemRepo: peritagemRepo,
		historicoRepo: historicoRepo,
		report:        report,
		logger:        logger,
	}
}

// Approve moves a newly submitted inspection to client approval.
// PERITAGEM CRIADA / AGUARDANDO APROVAÇÃO DO PCP → AGUARDANDO APROVAÇÃO DO CLIENTE.
func (s *WorkflowService) Approve(ctx context.Context, actor Actor, id string) (*entity.Peritagem, error) {
	return s.transition(ctx, actor, id, entity.StatusAguardandoCliente, "", nil)
}

// Reject sends the inspection back to its perito for revision.
// A nil reason means the operator cancelled the prompt: no mutation. An
// empty string is a valid (blank) reason and still transitions.
func (s *WorkflowService) Reject(ctx context.Context, actor Actor, id string, motivo *string) (*entity.Peritagem, error) {
	if motivo == nil {
		return nil, ErrMotivoObrigatorio
	}
	return s.transition(ctx, actor, id, entity.StatusRevisaoNecessaria, *motivo, nil)
}

// Release moves a client-approved inspection into maintenance, attaching the
// client's purchase order number. An empty order number performs no mutation.
func (s *WorkflowService) Release(ctx context.Context, actor Actor, id, pedidoCompra string) (*entity.Peritagem, error) {
	if strings.TrimSpace(pedidoCompra) == "" {
		return nil, ErrPedidoCompraObrigatorio
	}
	return s.transition(ctx, actor, id, entity.StatusEmManutencao, "",
		map[string]interface{}{"pedido_compra": pedidoCompra})
}

// MarkConferencia records the externally-driven hand-off from the
// maintenance shop: EM MANUTENÇÃO → AGUARDANDO CONFERÊNCIA FINAL.
func (s *WorkflowService) MarkConferencia(ctx context.Context, actor Actor, id string) (*entity.Peritagem, error) {
	return s.transition(ctx, actor, id, entity.StatusAguardandoConferencia, "", nil)
}

// Finalize closes the process after the final conference. Terminal state.
func (s *WorkflowService) Finalize(ctx context.Context, actor Actor, id string) (*entity.Peritagem, error) {
	return s.transition(ctx, actor, id, entity.StatusFinalizado, "", nil)
}

func (s *WorkflowService) transition(ctx context.Context, actor Actor, id, target, motivo string, extra map[string]interface{}) (*entity.Peritagem, error) {
	if !actor.CanApprove() {
		return nil, ErrPermissaoNegada
	}

	p, err := s.peritagemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if !entity.CanTransition(from, target) {
		return nil, fmt.Errorf("%w: %s → %s", ErrTransicaoInvalida, from, target)
	}

	if err := s.peritagemRepo.UpdateStatus(ctx, id, target, extra); err != nil {
		return nil, fmt.Errorf("atualizar status: %w", err)
	}

	// Audit append never fails the transition (see HistoricoRepository).
	s.historicoRepo.LogTransition(ctx, id, from, target, actor.ID, actor.Nome, motivo)
	s.report.Invalidate(ctx, id)

	p.Status = target
	if pedido, ok := extra["pedido_compra"].(string); ok {
		p.PedidoCompra = pedido
	}
	return p, nil
}

// Historico returns the audit trail of one inspection.
func (s *WorkflowService) Historico(ctx context.Context, id string) ([]entity.HistoricoStatus, error) {
	if _, err := s.peritagemRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historicoRepo.FindByPeritagem(ctx, id)
}
