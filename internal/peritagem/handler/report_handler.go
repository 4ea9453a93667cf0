package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/service"
)

// ReportHandler serves the projected report data and the spreadsheet export.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Get GET /api/v1/peritagens/:id/report?tipo=peritagem|laudo
func (h *ReportHandler) Get(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), c.Param("id"), c.Query("tipo"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, data)
}

// ExportXLSX GET /api/v1/peritagens/:id/report/xlsx
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), c.Param("id"), c.Query("tipo"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	f, err := h.svc.ExportChecklistXLSX(data)
	if err != nil {
		InternalError(c, "falha ao gerar planilha: "+err.Error())
		return
	}
	defer f.Close()

	filename := strings.TrimSuffix(data.Filename, ".pdf") + ".xlsx"
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "falha ao enviar planilha: "+err.Error())
	}
}
