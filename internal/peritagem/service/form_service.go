package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/repository"
)

// PeritagemDraft is the combined in-progress payload of one inspection: the
// fixed-field record plus the full checklist, exactly as the form edits it.
type PeritagemDraft struct {
	Peritagem entity.Peritagem     `json:"peritagem"`
	Analises  []entity.AnaliseItem `json:"analises"`
}

// ApplyConformidade marks one checklist entry conforme / não conforme.
func (d *PeritagemDraft) ApplyConformidade(entryID, conformidade string) {
	for i := range d.Analises {
		if d.Analises[i].ID == entryID {
			d.Analises[i].Conformidade = conformidade
			return
		}
	}
}

// ResetEntry clears an entry back to the unmarked state.
func (d *PeritagemDraft) ResetEntry(entryID string) {
	d.ApplyConformidade(entryID, "")
}

// ApplyFieldEdit updates one detail field of a checklist entry. Editing any
// member of a found/specified measurement pair recomputes the derived
// deviation of that pair (cleared when either member is missing).
func (d *PeritagemDraft) ApplyFieldEdit(entryID, field, value string) {
	for i := range d.Analises {
		if d.Analises[i].ID != entryID {
			continue
		}
		item := &d.Analises[i]
		switch field {
		case "descricao":
			item.Descricao = value
		case "quantidade":
			item.Quantidade = value
		case "dimensoes":
			item.Dimensoes = value
		case "diametro_externo_encontrado":
			item.DiametroExternoEncontrado = value
		case "diametro_externo_especificado":
			item.DiametroExternoEspecificado = value
		case "diametro_interno_encontrado":
			item.DiametroInternoEncontrado = value
		case "diametro_interno_especificado":
			item.DiametroInternoEspecificado = value
		case "comprimento_encontrado":
			item.ComprimentoEncontrado = value
		case "comprimento_especificado":
			item.ComprimentoEspecificado = value
		case "anomalia":
			item.Anomalia = value
		case "correcao_sugerida":
			item.CorrecaoSugerida = value
		case "unidade":
			item.Unidade = value
		case "observacao":
			item.Observacao = value
		}
		item.RecomputeDesvios()
		return
	}
}

// FormService assembles, validates and persists inspection drafts for the
// create and edit flows.
type FormService struct {
	db            *gorm.DB
	peritagemRepo *repository.PeritagemRepository
	analiseRepo   *repository.AnaliseRepository
	historicoRepo *repository.HistoricoRepository
	report        *ReportService
	logger        *zap.Logger
}

func NewFormService(db *gorm.DB, peritagemRepo *repository.PeritagemRepository, analiseRepo *repository.AnaliseRepository, historicoRepo *repository.HistoricoRepository, report *ReportService, logger *zap.Logger) *FormService {
	return &FormService{
		db:            db,
		peritagemRepo: peritagemRepo,
		analiseRepo:   analiseRepo,
		historicoRepo: historicoRepo,
		report:        report,
		logger:        logger,
	}
}

// List pages through inspections newest first. Peritos only ever see their
// own records; PCP staff and managers see everything.
func (s *FormService) List(ctx context.Context, actor Actor, page, pageSize int, filters map[string]string) ([]entity.Peritagem, int64, error) {
	scoped := make(map[string]string, len(filters)+1)
	for k, v := range filters {
		scoped[k] = v
	}
	if !actor.CanSeeAll() {
		scoped["criado_por"] = actor.ID
	}
	return s.peritagemRepo.FindAll(ctx, page, pageSize, scoped)
}

// Get returns one inspection with its persisted analysis rows, without the
// template reconstruction the edit flow performs.
func (s *FormService) Get(ctx context.Context, actor Actor, id string) (*PeritagemDraft, error) {
	p, err := s.peritagemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeAll() && p.CriadoPor != actor.ID {
		return nil, ErrPermissaoNegada
	}
	items, err := s.analiseRepo.FindByPeritagem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("carregar análises: %w", err)
	}
	return &PeritagemDraft{Peritagem: *p, Analises: items}, nil
}

// InitializeForClient returns the fresh checklist for a brand-new inspection
// of the given client. Pure and idempotent; never used by the edit flow,
// which reconstructs from persisted rows instead.
func (s *FormService) InitializeForClient(cliente string) []entity.AnaliseItem {
	return entity.SeedChecklist(cliente)
}

// LoadForEdit reconstructs the form state of a persisted inspection. The
// checklist is rebuilt by walking the client's template and matching each
// line to a persisted component row by exact description (first match wins);
// unmatched template lines become fresh blanks. Seal rows come straight from
// the persisted vedação set, or ten blanks when none exist for a
// non-Usiminas client. Peritos may only load their own records.
func (s *FormService) LoadForEdit(ctx context.Context, actor Actor, id string) (*PeritagemDraft, error) {
	p, err := s.peritagemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeAll() && p.CriadoPor != actor.ID {
		return nil, ErrPermissaoNegada
	}

	persisted, err := s.analiseRepo.FindByPeritagem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("carregar análises: %w", err)
	}

	var components, seals []entity.AnaliseItem
	for _, item := range persisted {
		if item.Tipo == entity.TipoVedacao {
			seals = append(seals, item)
		} else {
			components = append(components, item)
		}
	}

	template := entity.ChecklistForCliente(p.Cliente)
	used := make([]bool, len(components))
	checklist := make([]entity.AnaliseItem, 0, len(template)+len(seals))
	for _, desc := range template {
		matched := false
		for i, item := range components {
			if !used[i] && item.Descricao == desc {
				used[i] = true
				checklist = append(checklist, item)
				matched = true
				break
			}
		}
		if !matched {
			checklist = append(checklist, entity.AnaliseItem{
				ID:        uuid.New().String()[:32],
				Tipo:      entity.TipoComponente,
				Descricao: desc,
			})
		}
	}

	if len(seals) == 0 && !entity.IsUsiminas(p.Cliente) {
		for i := 0; i < entity.BlankSealRows; i++ {
			checklist = append(checklist, entity.AnaliseItem{
				ID:   uuid.New().String()[:32],
				Tipo: entity.TipoVedacao,
			})
		}
	} else {
		checklist = append(checklist, seals...)
	}

	return &PeritagemDraft{Peritagem: *p, Analises: checklist}, nil
}

// numeroPlaceholderPrefix prefixes the synthesized numero_peritagem used
// when the perito leaves the service order field empty; the timestamp keeps
// it unique.
const numeroPlaceholderPrefix = "PER"

// Submit validates and persists a draft. Create inserts the record with
// status AGUARDANDO APROVAÇÃO DO PCP; edit updates the record, forces the
// status back to AGUARDANDO APROVAÇÃO DO PCP and fully replaces the analysis
// rows. Only marked components and described seals are written.
func (s *FormService) Submit(ctx context.Context, actor Actor, draft *PeritagemDraft) (*entity.Peritagem, error) {
	if strings.TrimSpace(draft.Peritagem.FotoFrontal) == "" {
		return nil, ErrFotoFrontalObrigatoria
	}

	items := make([]entity.AnaliseItem, 0, len(draft.Analises))
	for _, item := range draft.Analises {
		item.RecomputeDesvios()
		if item.Persistable() {
			items = append(items, item)
		}
	}

	p := draft.Peritagem
	if p.ID == "" {
		return s.create(ctx, actor, p, items)
	}
	return s.edit(ctx, actor, p, items)
}

func (s *FormService) create(ctx context.Context, actor Actor, p entity.Peritagem, items []entity.AnaliseItem) (*entity.Peritagem, error) {
	p.ID = uuid.New().String()[:32]
	p.NumeroPeritagem = generateNumero(p.OrdemServico)
	p.Status = entity.StatusAguardandoPCP
	p.CriadoPor = actor.ID

	if err := s.peritagemRepo.Create(ctx, &p); err != nil {
		return nil, err
	}
	if err := s.analiseRepo.CreateForPeritagem(ctx, p.ID, items); err != nil {
		return nil, fmt.Errorf("gravar análises: %w", err)
	}
	return &p, nil
}

func (s *FormService) edit(ctx context.Context, actor Actor, p entity.Peritagem, items []entity.AnaliseItem) (*entity.Peritagem, error) {
	existing, err := s.peritagemRepo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeAll() && existing.CriadoPor != actor.ID {
		return nil, ErrPermissaoNegada
	}

	previousStatus := existing.Status

	// Identity and provenance never change on edit.
	p.NumeroPeritagem = existing.NumeroPeritagem
	p.CriadoPor = existing.CriadoPor
	p.CreatedAt = existing.CreatedAt
	p.Status = entity.StatusAguardandoPCP

	if err := s.peritagemRepo.Update(ctx, &p); err != nil {
		return nil, err
	}
	if err := s.analiseRepo.ReplaceForPeritagem(ctx, p.ID, items); err != nil {
		return nil, fmt.Errorf("substituir análises: %w", err)
	}

	if previousStatus != entity.StatusAguardandoPCP {
		// Implicit workflow edge: resubmission after revision.
		s.historicoRepo.LogTransition(ctx, p.ID, previousStatus, entity.StatusAguardandoPCP, actor.ID, actor.Nome, "")
	}
	s.report.Invalidate(ctx, p.ID)
	return &p, nil
}

func generateNumero(ordemServico string) string {
	if strings.TrimSpace(ordemServico) != "" {
		return strings.ToUpper(strings.TrimSpace(ordemServico))
	}
	return fmt.Sprintf("%s-%d", numeroPlaceholderPrefix, time.Now().UnixMilli())
}
