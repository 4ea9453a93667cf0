package service

import (
	"context"
	"errors"
	"testing"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
)

func submitFixture(t *testing.T, form *FormService, ordemServico string) *entity.Peritagem {
	t.Helper()
	p, err := form.Submit(context.Background(), perito1, newDraft("Gerdau", ordemServico))
	if err != nil {
		t.Fatalf("fixture submit failed: %v", err)
	}
	return p
}

func TestWorkflowHappyPath(t *testing.T) {
	form, workflow, db := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-200")

	steps := []struct {
		name string
		run  func() (*entity.Peritagem, error)
		want string
	}{
		{"approve", func() (*entity.Peritagem, error) { return workflow.Approve(ctx, pcp, p.ID) }, entity.StatusAguardandoCliente},
		{"release", func() (*entity.Peritagem, error) { return workflow.Release(ctx, pcp, p.ID, "PC-9001") }, entity.StatusEmManutencao},
		{"conferencia", func() (*entity.Peritagem, error) { return workflow.MarkConferencia(ctx, pcp, p.ID) }, entity.StatusAguardandoConferencia},
		{"finalize", func() (*entity.Peritagem, error) { return workflow.Finalize(ctx, pcp, p.ID) }, entity.StatusFinalizado},
	}
	for _, step := range steps {
		got, err := step.run()
		if err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		if got.Status != step.want {
			t.Fatalf("%s: status = %q, want %q", step.name, got.Status, step.want)
		}
	}

	var stored entity.Peritagem
	db.First(&stored, "id = ?", p.ID)
	if stored.Status != entity.StatusFinalizado {
		t.Errorf("persisted status = %q, want %q", stored.Status, entity.StatusFinalizado)
	}
	if stored.PedidoCompra != "PC-9001" {
		t.Errorf("release must attach the purchase order, got %q", stored.PedidoCompra)
	}

	trail, err := workflow.Historico(ctx, p.ID)
	if err != nil {
		t.Fatalf("historico failed: %v", err)
	}
	if len(trail) != 4 {
		t.Fatalf("audit trail rows = %d, want one per transition", len(trail))
	}
	// Newest first.
	if trail[0].StatusNovo != entity.StatusFinalizado {
		t.Errorf("trail head = %q, want the finalize row", trail[0].StatusNovo)
	}
}

func TestWorkflowPeritoForbidden(t *testing.T) {
	form, workflow, _ := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-201")

	if _, err := workflow.Approve(ctx, perito1, p.ID); !errors.Is(err, ErrPermissaoNegada) {
		t.Errorf("perito approve: expected ErrPermissaoNegada, got %v", err)
	}
	motivo := "x"
	if _, err := workflow.Reject(ctx, perito1, p.ID, &motivo); !errors.Is(err, ErrPermissaoNegada) {
		t.Errorf("perito reject: expected ErrPermissaoNegada, got %v", err)
	}
}

func TestWorkflowInvalidTransition(t *testing.T) {
	form, workflow, _ := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-202")

	// Release is only legal after client approval.
	if _, err := workflow.Release(ctx, pcp, p.ID, "PC-1"); !errors.Is(err, ErrTransicaoInvalida) {
		t.Errorf("expected ErrTransicaoInvalida, got %v", err)
	}

	if _, err := workflow.Approve(ctx, pcp, p.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	// Approving twice replays an edge the machine no longer allows.
	if _, err := workflow.Approve(ctx, pcp, p.ID); !errors.Is(err, ErrTransicaoInvalida) {
		t.Errorf("expected ErrTransicaoInvalida on replay, got %v", err)
	}
}

func TestRejectNilReasonMutatesNothing(t *testing.T) {
	form, workflow, db := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-203")

	if _, err := workflow.Reject(ctx, pcp, p.ID, nil); !errors.Is(err, ErrMotivoObrigatorio) {
		t.Fatalf("expected ErrMotivoObrigatorio, got %v", err)
	}

	var stored entity.Peritagem
	db.First(&stored, "id = ?", p.ID)
	if stored.Status != entity.StatusAguardandoPCP {
		t.Errorf("cancelled reject must not change status, got %q", stored.Status)
	}
	var audit int64
	db.Model(&entity.HistoricoStatus{}).Where("peritagem_id = ?", p.ID).Count(&audit)
	if audit != 0 {
		t.Errorf("cancelled reject must not write audit rows, found %d", audit)
	}
}

func TestRejectEmptyReasonStillTransitions(t *testing.T) {
	form, workflow, db := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-204")

	empty := ""
	got, err := workflow.Reject(ctx, pcp, p.ID, &empty)
	if err != nil {
		t.Fatalf("reject with blank reason failed: %v", err)
	}
	if got.Status != entity.StatusRevisaoNecessaria {
		t.Errorf("status = %q, want %q", got.Status, entity.StatusRevisaoNecessaria)
	}

	var rows []entity.HistoricoStatus
	db.Where("peritagem_id = ?", p.ID).Find(&rows)
	if len(rows) != 1 || rows[0].Motivo != "" {
		t.Errorf("expected one audit row with blank reason, got %+v", rows)
	}
}

func TestReleaseRequiresPurchaseOrder(t *testing.T) {
	form, workflow, db := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-205")
	if _, err := workflow.Approve(ctx, pcp, p.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if _, err := workflow.Release(ctx, pcp, p.ID, "   "); !errors.Is(err, ErrPedidoCompraObrigatorio) {
		t.Fatalf("expected ErrPedidoCompraObrigatorio, got %v", err)
	}
	var stored entity.Peritagem
	db.First(&stored, "id = ?", p.ID)
	if stored.Status != entity.StatusAguardandoCliente {
		t.Errorf("rejected release must not change status, got %q", stored.Status)
	}
}

func TestWorkflowAcceptsLegacyStatusSpelling(t *testing.T) {
	form, workflow, db := newTestServices(t)
	ctx := context.Background()
	p := submitFixture(t, form, "OS-206")

	// A record written by an older front-end build carries a synonym
	// spelling; the engine must still drive it forward.
	db.Model(&entity.Peritagem{}).Where("id = ?", p.ID).
		Update("status", "Aguardando Clientes")

	got, err := workflow.Release(ctx, pcp, p.ID, "PC-5")
	if err != nil {
		t.Fatalf("release from legacy spelling failed: %v", err)
	}
	if got.Status != entity.StatusEmManutencao {
		t.Errorf("status = %q, want %q", got.Status, entity.StatusEmManutencao)
	}
}
