package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/service"
)

// PeritagemHandler serves the inspection CRUD and form endpoints.
type PeritagemHandler struct {
	formSvc     *service.FormService
	workflowSvc *service.WorkflowService
}

func NewPeritagemHandler(formSvc *service.FormService, workflowSvc *service.WorkflowService) *PeritagemHandler {
	return &PeritagemHandler{formSvc: formSvc, workflowSvc: workflowSvc}
}

// List GET /api/v1/peritagens?status=xxx&cliente=xxx
func (h *PeritagemHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":  c.Query("status"),
		"cliente": c.Query("cliente"),
	}

	items, total, err := h.formSvc.List(c.Request.Context(), GetActor(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "falha ao listar peritagens: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Get GET /api/v1/peritagens/:id
func (h *PeritagemHandler) Get(c *gin.Context) {
	draft, err := h.formSvc.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, draft)
}

// ChecklistTemplate GET /api/v1/checklist-template?cliente=xxx
// Fresh checklist seed for a new inspection of the given client.
func (h *PeritagemHandler) ChecklistTemplate(c *gin.Context) {
	Success(c, h.formSvc.InitializeForClient(c.Query("cliente")))
}

// LoadForEdit GET /api/v1/peritagens/:id/edit
func (h *PeritagemHandler) LoadForEdit(c *gin.Context) {
	draft, err := h.formSvc.LoadForEdit(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, draft)
}

// Create POST /api/v1/peritagens
func (h *PeritagemHandler) Create(c *gin.Context) {
	var draft service.PeritagemDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		BadRequest(c, "payload inválido: "+err.Error())
		return
	}
	draft.Peritagem.ID = ""

	p, err := h.formSvc.Submit(c.Request.Context(), GetActor(c), &draft)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, p)
}

// Update PUT /api/v1/peritagens/:id
// Edit-resubmission: replaces the analysis set and resets the status back to
// AGUARDANDO APROVAÇÃO DO PCP.
func (h *PeritagemHandler) Update(c *gin.Context) {
	var draft service.PeritagemDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		BadRequest(c, "payload inválido: "+err.Error())
		return
	}
	draft.Peritagem.ID = c.Param("id")

	p, err := h.formSvc.Submit(c.Request.Context(), GetActor(c), &draft)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}
