package handler

import (
	"net/http"
	"testing"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/testutil"
)

func TestApprove(t *testing.T) {
	r, _ := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-300")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/approve", nil, testutil.PCPToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != entity.StatusAguardandoCliente {
		t.Errorf("status = %v, want %q", data["status"], entity.StatusAguardandoCliente)
	}
}

func TestApproveForbiddenForPerito(t *testing.T) {
	r, _ := setupAPI(t)
	token := testutil.PeritoToken("perito-001")
	id := createPeritagem(t, r, token, "OS-301")

	// The role gate on the action routes rejects peritos before the
	// handler runs.
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/approve", nil, token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40312 {
		t.Errorf("code = %v, want 40312", resp["code"])
	}
}

func TestGestorPassesRoleGate(t *testing.T) {
	r, _ := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-307")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/approve", nil, testutil.GestorToken())
	if w.Code != http.StatusOK {
		t.Fatalf("gestor approve returned %d: %s", w.Code, w.Body.String())
	}
}

func TestRejectNullReason(t *testing.T) {
	r, db := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-302")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/reject",
		map[string]interface{}{"motivo": nil}, testutil.PCPToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var stored entity.Peritagem
	db.First(&stored, "id = ?", id)
	if stored.Status != entity.StatusAguardandoPCP {
		t.Errorf("cancelled reject must not transition, status = %q", stored.Status)
	}
}

func TestRejectBlankReason(t *testing.T) {
	r, _ := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-303")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/reject",
		map[string]interface{}{"motivo": ""}, testutil.PCPToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != entity.StatusRevisaoNecessaria {
		t.Errorf("status = %v, want %q", data["status"], entity.StatusRevisaoNecessaria)
	}
}

func TestReleaseValidation(t *testing.T) {
	r, _ := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-304")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/approve", nil, testutil.PCPToken())
	if w.Code != http.StatusOK {
		t.Fatalf("approve returned %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/release",
		ReleaseRequest{PedidoCompra: " "}, testutil.PCPToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank purchase order: status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/release",
		ReleaseRequest{PedidoCompra: "PC-42"}, testutil.PCPToken())
	if w.Code != http.StatusOK {
		t.Fatalf("release returned %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["pedido_compra"] != "PC-42" {
		t.Errorf("pedido_compra = %v, want PC-42", data["pedido_compra"])
	}
	if data["status"] != entity.StatusEmManutencao {
		t.Errorf("status = %v, want %q", data["status"], entity.StatusEmManutencao)
	}
}

func TestInvalidTransitionIsBadRequest(t *testing.T) {
	r, _ := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-305")

	// Finalize straight from AGUARDANDO APROVAÇÃO DO PCP is not an edge.
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/finalize", nil, testutil.PCPToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Errorf("code = %v, want 40000", resp["code"])
	}
}

func TestFullWorkflowAndHistorico(t *testing.T) {
	r, _ := setupAPI(t)
	id := createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-306")
	token := testutil.GestorToken()

	steps := []struct {
		path string
		body interface{}
	}{
		{"/approve", nil},
		{"/release", ReleaseRequest{PedidoCompra: "PC-1"}},
		{"/conferencia", nil},
		{"/finalize", nil},
	}
	for _, step := range steps {
		w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+step.path, step.body, token)
		if w.Code != http.StatusOK {
			t.Fatalf("%s returned %d: %s", step.path, w.Code, w.Body.String())
		}
	}

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/peritagens/"+id+"/historico", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("historico returned %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	rows := resp["data"].([]interface{})
	if len(rows) != 4 {
		t.Fatalf("audit rows = %d, want 4", len(rows))
	}
	head := rows[0].(map[string]interface{})
	if head["status_novo"] != entity.StatusFinalizado {
		t.Errorf("newest row = %v, want the finalize transition", head["status_novo"])
	}
	if head["usuario_nome"] != "Gestor Teste" {
		t.Errorf("usuario_nome = %v", head["usuario_nome"])
	}
}

func TestWorkflowNotFound(t *testing.T) {
	r, _ := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/missing/approve", nil, testutil.PCPToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
