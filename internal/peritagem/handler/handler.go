package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/repository"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/service"
)

// Handlers bundles the HTTP layer.
type Handlers struct {
	Peritagem *PeritagemHandler
	Workflow  *WorkflowHandler
	Report    *ReportHandler
	Upload    *UploadHandler
}

func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Peritagem: NewPeritagemHandler(svcs.Form, svcs.Workflow),
		Workflow:  NewWorkflowHandler(svcs.Workflow),
		Report:    NewReportHandler(svcs.Report),
		Upload:    NewUploadHandler(svcs.Photo),
	}
}

// === response envelope ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string)    { Error(c, 40000, message) }
func NotFound(c *gin.Context, message string)      { Error(c, 40400, message) }
func Forbidden(c *gin.Context, message string)     { Error(c, 40300, message) }
func Conflict(c *gin.Context, message string)      { Error(c, 40900, message) }
func InternalError(c *gin.Context, message string) { Error(c, 50000, message) }

// ServiceError maps a service-layer error onto the response envelope.
// Validation failures and workflow violations are client errors; the
// uniqueness conflict on numero_peritagem gets its own distinct message.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "peritagem não encontrada")
	case errors.Is(err, repository.ErrDuplicateNumero):
		Conflict(c, "já existe uma peritagem com este número de ordem de serviço")
	case errors.Is(err, service.ErrPermissaoNegada):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrFotoFrontalObrigatoria),
		errors.Is(err, service.ErrPedidoCompraObrigatorio),
		errors.Is(err, service.ErrMotivoObrigatorio),
		errors.Is(err, service.ErrTransicaoInvalida):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetActor extracts the authenticated user from the gin context set by the
// JWT middleware.
func GetActor(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(string); ok {
			actor.ID = id
		}
	}
	if v, ok := c.Get("user_name"); ok {
		if name, ok := v.(string); ok {
			actor.Nome = name
		}
	}
	if v, ok := c.Get("roles"); ok {
		if roles, ok := v.([]string); ok {
			actor.Roles = roles
		}
	}
	return actor
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}
