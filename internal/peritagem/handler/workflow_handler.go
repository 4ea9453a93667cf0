package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/service"
)

// WorkflowHandler exposes the status-transition actions.
type WorkflowHandler struct {
	svc *service.WorkflowService
}

func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// Approve POST /api/v1/peritagens/:id/approve
func (h *WorkflowHandler) Approve(c *gin.Context) {
	p, err := h.svc.Approve(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}

// RejectRequest carries the revision reason. A null motivo means the
// operator cancelled the prompt and nothing happens; an empty string is a
// deliberate blank reason and still transitions.
type RejectRequest struct {
	Motivo *string `json:"motivo"`
}

// Reject POST /api/v1/peritagens/:id/reject
func (h *WorkflowHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "payload inválido: "+err.Error())
		return
	}

	p, err := h.svc.Reject(c.Request.Context(), GetActor(c), c.Param("id"), req.Motivo)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}

// ReleaseRequest carries the client purchase order attached on release.
type ReleaseRequest struct {
	PedidoCompra string `json:"pedido_compra"`
}

// Release POST /api/v1/peritagens/:id/release
func (h *WorkflowHandler) Release(c *gin.Context) {
	var req ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "payload inválido: "+err.Error())
		return
	}

	p, err := h.svc.Release(c.Request.Context(), GetActor(c), c.Param("id"), req.PedidoCompra)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}

// Conferencia POST /api/v1/peritagens/:id/conferencia
// Records the maintenance shop hand-off to final conference.
func (h *WorkflowHandler) Conferencia(c *gin.Context) {
	p, err := h.svc.MarkConferencia(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}

// Finalize POST /api/v1/peritagens/:id/finalize
func (h *WorkflowHandler) Finalize(c *gin.Context) {
	p, err := h.svc.Finalize(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}

// Historico GET /api/v1/peritagens/:id/historico
func (h *WorkflowHandler) Historico(c *gin.Context) {
	items, err := h.svc.Historico(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, items)
}
