package service

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trust-tecnologia/peritagem-backend/internal/config"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/repository"
)

// Validation sentinels, mapped by the handlers onto user-facing messages.
var (
	ErrFotoFrontalObrigatoria  = errors.New("foto frontal é obrigatória")
	ErrPedidoCompraObrigatorio = errors.New("pedido de compra é obrigatório para liberar")
	ErrMotivoObrigatorio       = errors.New("motivo da reprovação não informado")
	ErrPermissaoNegada         = errors.New("usuário sem permissão para esta ação")
	ErrTransicaoInvalida       = errors.New("transição de status não permitida")
)

// Actor is the authenticated user on whose behalf an operation runs. It is
// passed explicitly into every workflow and form call; there is no ambient
// auth state in this package.
type Actor struct {
	ID    string
	Nome  string
	Roles []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanApprove reports whether the actor may drive workflow transitions
// (PCP staff and managers).
func (a Actor) CanApprove() bool {
	return a.HasRole(entity.RolePCP) || a.HasRole(entity.RoleGestor)
}

// CanSeeAll reports whether the actor sees every inspection; peritos are
// scoped to their own records.
func (a Actor) CanSeeAll() bool {
	return a.CanApprove()
}

// Services bundles the business layer.
type Services struct {
	Workflow *WorkflowService
	Form     *FormService
	Report   *ReportService
	Photo    *PhotoService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	repos.Historico.SetLogger(logger)

	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio client init failed, photo upload disabled", zap.Error(err))
			minioClient = nil
		}
	}

	report := NewReportService(repos.Peritagem, repos.Analise, rdb, logger)
	return &Services{
		Workflow: NewWorkflowService(repos.Peritagem, repos.Historico, report, logger),
		Form:     NewFormService(db, repos.Peritagem, repos.Analise, repos.Historico, report, logger),
		Report:   report,
		Photo:    NewPhotoService(minioClient, cfg.MinIO.Bucket),
	}
}
