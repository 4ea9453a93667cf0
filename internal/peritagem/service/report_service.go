package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/repository"
)

const reportCacheTTL = 10 * time.Minute

// ReportService serves projected report data, caching projections in redis
// keyed by inspection. Cache failures degrade silently to a recompute.
type ReportService struct {
	peritagemRepo *repository.PeritagemRepository
	analiseRepo   *repository.AnaliseRepository
	rdb           *redis.Client
	logger        *zap.Logger
}

func NewReportService(peritagemRepo *repository.PeritagemRepository, analiseRepo *repository.AnaliseRepository, rdb *redis.Client, logger *zap.Logger) *ReportService {
	return &ReportService{
		peritagemRepo: peritagemRepo,
		analiseRepo:   analiseRepo,
		rdb:           rdb,
		logger:        logger,
	}
}

func reportCacheKey(id, tipo string) string {
	return fmt.Sprintf("report:%s:%s", id, tipo)
}

// Get loads the inspection and its analysis rows and projects the report
// data, consulting the cache first.
func (s *ReportService) Get(ctx context.Context, id, tipoRelatorio string) (*ReportData, error) {
	if tipoRelatorio == "" {
		tipoRelatorio = TipoRelatorioPeritagem
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, reportCacheKey(id, tipoRelatorio)).Result(); err == nil {
			var data ReportData
			if json.Unmarshal([]byte(cached), &data) == nil {
				return &data, nil
			}
		}
	}

	p, err := s.peritagemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.analiseRepo.FindByPeritagem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("carregar análises: %w", err)
	}

	data := ProjectReport(p, items, tipoRelatorio)

	if s.rdb != nil {
		if encoded, err := json.Marshal(data); err == nil {
			s.rdb.Set(ctx, reportCacheKey(id, tipoRelatorio), encoded, reportCacheTTL)
		}
	}
	return data, nil
}

// Invalidate drops the cached projections of one inspection. Called after
// submit and after every workflow transition.
func (s *ReportService) Invalidate(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	for _, tipo := range []string{TipoRelatorioPeritagem, TipoRelatorioLaudo} {
		if err := s.rdb.Del(ctx, reportCacheKey(id, tipo)).Err(); err != nil && err != redis.Nil {
			s.logger.Warn("report cache invalidation failed",
				zap.String("peritagem_id", id), zap.Error(err))
		}
	}
}

// ExportChecklistXLSX renders the checklist and the non-conforming detail
// table of a projected report into a spreadsheet for download.
func (s *ReportService) ExportChecklistXLSX(data *ReportData) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Checklist"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})

	f.SetCellValue(sheet, "A1", "Peritagem")
	f.SetCellValue(sheet, "B1", data.Cabecalho.NumeroPeritagem)
	f.SetCellValue(sheet, "A2", "Cliente")
	f.SetCellValue(sheet, "B2", data.Cabecalho.Cliente)
	f.SetCellValue(sheet, "A3", "TAG")
	f.SetCellValue(sheet, "B3", data.Cabecalho.TagEquipamento)

	headerRow := 5
	for i, h := range []string{"Item", "Descrição", "Conformidade"} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, headerRow)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}
	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "C", 18)

	rows := append(append([]ChecklistRow{}, data.ChecklistPrimeiraPagina...), data.ChecklistContinuacao...)
	for i, row := range rows {
		r := headerRow + 1 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Descricao)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Conformidade)
	}

	detailSheet := "Não Conformidades"
	f.NewSheet(detailSheet)
	for i, h := range []string{"Descrição", "Anomalia", "Correção Sugerida", "Desvio Ø Ext.", "Desvio Ø Int.", "Desvio Compr."} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(detailSheet, cell, h)
		f.SetCellStyle(detailSheet, cell, cell, boldStyle)
	}
	details := append(append([]AnaliseDetalhe{}, data.ComponentesNaoConformes...), data.VedacoesNaoConformes...)
	for i, d := range details {
		r := i + 2
		f.SetCellValue(detailSheet, fmt.Sprintf("A%d", r), d.Descricao)
		f.SetCellValue(detailSheet, fmt.Sprintf("B%d", r), d.Anomalia)
		f.SetCellValue(detailSheet, fmt.Sprintf("C%d", r), d.CorrecaoSugerida)
		f.SetCellValue(detailSheet, fmt.Sprintf("D%d", r), d.DiametroExterno.Desvio.Display)
		f.SetCellValue(detailSheet, fmt.Sprintf("E%d", r), d.DiametroInterno.Desvio.Display)
		f.SetCellValue(detailSheet, fmt.Sprintf("F%d", r), d.Comprimento.Desvio.Display)
	}

	return f, nil
}
