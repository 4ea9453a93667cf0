package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trust-tecnologia/peritagem-backend/internal/middleware"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/repository"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/service"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/testutil"
)

// setupAPI wires the full HTTP stack against an in-memory database, with the
// same route table as main.
func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	logger := zap.NewNop()
	repos.Historico.SetLogger(logger)

	report := service.NewReportService(repos.Peritagem, repos.Analise, nil, logger)
	form := service.NewFormService(db, repos.Peritagem, repos.Analise, repos.Historico, report, logger)
	workflow := service.NewWorkflowService(repos.Peritagem, repos.Historico, report, logger)

	h := &Handlers{
		Peritagem: NewPeritagemHandler(form, workflow),
		Workflow:  NewWorkflowHandler(workflow),
		Report:    NewReportHandler(report),
	}

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.GET("/checklist-template", h.Peritagem.ChecklistTemplate)

	peritagens := api.Group("/peritagens")
	peritagens.GET("", h.Peritagem.List)
	peritagens.POST("", h.Peritagem.Create)
	peritagens.GET("/:id", h.Peritagem.Get)
	peritagens.PUT("/:id", h.Peritagem.Update)
	peritagens.GET("/:id/edit", h.Peritagem.LoadForEdit)
	acoes := peritagens.Group("", middleware.RequireRole(entity.RolePCP))
	acoes.POST("/:id/approve", h.Workflow.Approve)
	acoes.POST("/:id/reject", h.Workflow.Reject)
	acoes.POST("/:id/release", h.Workflow.Release)
	acoes.POST("/:id/conferencia", h.Workflow.Conferencia)
	acoes.POST("/:id/finalize", h.Workflow.Finalize)
	peritagens.GET("/:id/historico", h.Workflow.Historico)
	peritagens.GET("/:id/report", h.Report.Get)
	peritagens.GET("/:id/report/xlsx", h.Report.ExportXLSX)

	return r, db
}

func draftBody(cliente, ordemServico string) *service.PeritagemDraft {
	draft := &service.PeritagemDraft{
		Peritagem: entity.Peritagem{
			Cliente:      cliente,
			OrdemServico: ordemServico,
			FotoFrontal:  "data:image/jpeg;base64,xxx",
		},
		Analises: entity.SeedChecklist(cliente),
	}
	draft.ApplyConformidade(draft.Analises[0].ID, entity.ConformidadeConforme)
	return draft
}

// createPeritagem posts a valid draft and returns the new record's id.
func createPeritagem(t *testing.T, r *gin.Engine, token, ordemServico string) string {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens", draftBody("Gerdau", ordemServico), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestAuthRequired(t *testing.T) {
	r, _ := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/peritagens", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40100 {
		t.Errorf("code = %v, want 40100", resp["code"])
	}
}

func TestCreatePeritagem(t *testing.T) {
	r, _ := setupAPI(t)
	token := testutil.PeritoToken("perito-001")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens", draftBody("Gerdau", "os-77"), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != entity.StatusAguardandoPCP {
		t.Errorf("status = %v, want %q", data["status"], entity.StatusAguardandoPCP)
	}
	if data["numero_peritagem"] != "OS-77" {
		t.Errorf("numero = %v, want OS-77", data["numero_peritagem"])
	}
	if data["criado_por"] != "perito-001" {
		t.Errorf("criado_por = %v", data["criado_por"])
	}
}

func TestCreateWithoutPhoto(t *testing.T) {
	r, _ := setupAPI(t)
	body := draftBody("Gerdau", "OS-78")
	body.Peritagem.FotoFrontal = ""

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens", body, testutil.PeritoToken("perito-001"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Errorf("code = %v, want 40000", resp["code"])
	}
}

func TestCreateDuplicateNumero(t *testing.T) {
	r, _ := setupAPI(t)
	token := testutil.PeritoToken("perito-001")
	createPeritagem(t, r, token, "OS-79")

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens", draftBody("Gerdau", "OS-79"), token)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40900 {
		t.Errorf("code = %v, want 40900", resp["code"])
	}
}

func TestGetNotFound(t *testing.T) {
	r, _ := setupAPI(t)
	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/peritagens/nope", nil, testutil.PCPToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40400 {
		t.Errorf("code = %v, want 40400", resp["code"])
	}
}

func TestListScopedByPerito(t *testing.T) {
	r, _ := setupAPI(t)
	createPeritagem(t, r, testutil.PeritoToken("perito-001"), "OS-80")
	createPeritagem(t, r, testutil.PeritoToken("perito-002"), "OS-81")

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/peritagens", nil, testutil.PeritoToken("perito-001"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("perito sees %d records, want only own 1", len(items))
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/peritagens", nil, testutil.PCPToken())
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if pagination := data["pagination"].(map[string]interface{}); pagination["total"].(float64) != 2 {
		t.Errorf("pcp total = %v, want 2", pagination["total"])
	}
}

func TestChecklistTemplate(t *testing.T) {
	r, _ := setupAPI(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/checklist-template?cliente=USIMINAS", nil, testutil.PeritoToken("perito-001"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].([]interface{})
	if len(items) != len(entity.ChecklistUsiminas) {
		t.Errorf("usiminas template = %d lines, want %d", len(items), len(entity.ChecklistUsiminas))
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/checklist-template?cliente=Gerdau", nil, testutil.PeritoToken("perito-001"))
	resp = testutil.ParseResponse(w)
	items = resp["data"].([]interface{})
	if len(items) != len(entity.ChecklistPadrao)+entity.BlankSealRows {
		t.Errorf("default template = %d lines, want %d", len(items), len(entity.ChecklistPadrao)+entity.BlankSealRows)
	}
}

func TestUpdateResubmits(t *testing.T) {
	r, db := setupAPI(t)
	token := testutil.PeritoToken("perito-001")
	id := createPeritagem(t, r, token, "OS-82")

	// PCP sends it back, then the perito resubmits through PUT.
	motivo := "refazer medições"
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/peritagens/"+id+"/reject", RejectRequest{Motivo: &motivo}, testutil.PCPToken())
	if w.Code != http.StatusOK {
		t.Fatalf("reject returned %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/peritagens/"+id, draftBody("Gerdau", "OS-82"), token)
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
	}

	var stored entity.Peritagem
	db.First(&stored, "id = ?", id)
	if stored.Status != entity.StatusAguardandoPCP {
		t.Errorf("status after resubmit = %q, want %q", stored.Status, entity.StatusAguardandoPCP)
	}
}

func TestReportEndpoints(t *testing.T) {
	r, _ := setupAPI(t)
	token := testutil.PeritoToken("perito-001")
	id := createPeritagem(t, r, token, "OS-83")

	w := testutil.DoRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/peritagens/%s/report?tipo=laudo", id), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("report returned %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["filename"] != "LAUDO_OS-83.pdf" {
		t.Errorf("filename = %v, want LAUDO_OS-83.pdf", data["filename"])
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/peritagens/"+id+"/report/xlsx", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("xlsx export returned %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
}
