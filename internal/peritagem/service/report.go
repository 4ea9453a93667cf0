package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
)

// ChecklistPageSize is how many checklist rows fit on the first report page;
// the remainder flows into a continuation section.
const ChecklistPageSize = 30

// Report templates and their download-filename prefixes.
const (
	TemplatePadrao   = "padrao"
	TemplateUsiminas = "usiminas"

	PrefixUsiminas  = "Peritagem Usiminas"
	PrefixPeritagem = "PERITAGEM"
	PrefixLaudo     = "LAUDO"
)

// Report document kinds.
const (
	TipoRelatorioPeritagem = "peritagem"
	TipoRelatorioLaudo     = "laudo"
)

const displayPlaceholder = "-"

// DesvioDisplay is the presentation form of one derived deviation. Deficit
// classification (negative = material missing) is a core rule the renderer
// must not reinterpret.
type DesvioDisplay struct {
	Valor    string `json:"valor"`   // raw 4-decimal value, "" when undefined
	Display  string `json:"display"` // "+0,0000 mm" form, "-" when undefined
	Deficit  bool   `json:"deficit"`
	Definido bool   `json:"definido"`
}

// FormatDesvio builds the display form of a stored deviation string: sign
// prefix ("+" for zero and positive values), comma decimal separator, " mm"
// suffix. An absent deviation renders as the placeholder.
func FormatDesvio(desvio string) DesvioDisplay {
	if desvio == "" {
		return DesvioDisplay{Display: displayPlaceholder}
	}
	v, err := strconv.ParseFloat(desvio, 64)
	if err != nil {
		return DesvioDisplay{Display: displayPlaceholder}
	}
	display := strings.ReplaceAll(desvio, ".", ",") + " mm"
	if v >= 0 {
		display = "+" + display
	}
	return DesvioDisplay{
		Valor:    desvio,
		Display:  display,
		Deficit:  v < 0,
		Definido: true,
	}
}

// MedidaDisplay pairs a measurement's found/specified values with the
// derived deviation for the detailed-analysis table.
type MedidaDisplay struct {
	Encontrado   string        `json:"encontrado"`
	Especificado string        `json:"especificado"`
	Desvio       DesvioDisplay `json:"desvio"`
}

// ChecklistRow is one line of the full checklist table. Unlike the detailed
// section, this table carries every template entry with its verdict.
type ChecklistRow struct {
	Descricao    string `json:"descricao"`
	Conformidade string `json:"conformidade"` // CONFORME / NÃO CONFORME / -
}

// AnaliseDetalhe is one non-conforming entry in the detailed-analysis
// section of the report.
type AnaliseDetalhe struct {
	Descricao        string        `json:"descricao"`
	Quantidade       string        `json:"quantidade"`
	Dimensoes        string        `json:"dimensoes"`
	DiametroExterno  MedidaDisplay `json:"diametro_externo"`
	DiametroInterno  MedidaDisplay `json:"diametro_interno"`
	Comprimento      MedidaDisplay `json:"comprimento"`
	Anomalia         string        `json:"anomalia"`
	CorrecaoSugerida string        `json:"correcao_sugerida"`
	Fotos            []string      `json:"fotos"`
	Unidade          string        `json:"unidade"`
	Observacao       string        `json:"observacao"`
}

// CabecalhoReport is the normalized header block: every field is a
// displayable string, absent values already replaced by the placeholder.
type CabecalhoReport struct {
	NumeroPeritagem       string `json:"numero_peritagem"`
	Cliente               string `json:"cliente"`
	TagEquipamento        string `json:"tag_equipamento"`
	LocalEquipamento      string `json:"local_equipamento"`
	TipoCilindro          string `json:"tipo_cilindro"`
	OrdemServico          string `json:"ordem_servico"`
	NumeroMaterial        string `json:"numero_material"`
	PedidoCompra          string `json:"pedido_compra"`
	NotaFiscal            string `json:"nota_fiscal"`
	OrdemServicoInterna   string `json:"ordem_servico_interna"`
	DiametroInternoCamisa string `json:"diametro_interno_camisa"`
	DiametroExternoCamisa string `json:"diametro_externo_camisa"`
	ComprimentoCamisa     string `json:"comprimento_camisa"`
	DiametroHaste         string `json:"diametro_haste"`
	ComprimentoHaste      string `json:"comprimento_haste"`
	Curso                 string `json:"curso"`
	DesenhoConjunto       string `json:"desenho_conjunto"`
	TipoModelo            string `json:"tipo_modelo"`
	Fabricante            string `json:"fabricante"`
	Lubrificante          string `json:"lubrificante"`
	Volume                string `json:"volume"`
	PossuiAcoplamento     string `json:"possui_acoplamento"`
	PossuiLubrificacao    string `json:"possui_lubrificacao"`
	Observacoes           string `json:"observacoes"`
	FotoFrontal           string `json:"foto_frontal"`
	Status                string `json:"status"`
}

// ReportData is the normalized projection consumed by the report renderer.
// Conforming entries appear only in the checklist table; the detailed
// section documents defects exclusively.
type ReportData struct {
	Template       string `json:"template"`
	FilenamePrefix string `json:"filename_prefix"`
	Filename       string `json:"filename"`

	Cabecalho CabecalhoReport `json:"cabecalho"`

	ChecklistPrimeiraPagina []ChecklistRow `json:"checklist_primeira_pagina"`
	ChecklistContinuacao    []ChecklistRow `json:"checklist_continuacao"`

	ComponentesNaoConformes []AnaliseDetalhe `json:"componentes_nao_conformes"`
	VedacoesNaoConformes    []AnaliseDetalhe `json:"vedacoes_nao_conformes"`

	Parecer string `json:"parecer"`
}

// ProjectReport transforms the persisted records into the shape the report
// renderer consumes. Pure: same inputs, same output.
func ProjectReport(p *entity.Peritagem, items []entity.AnaliseItem, tipoRelatorio string) *ReportData {
	usiminas := entity.IsUsiminas(p.Cliente)

	template := TemplatePadrao
	prefix := PrefixPeritagem
	if tipoRelatorio == TipoRelatorioLaudo {
		prefix = PrefixLaudo
	}
	if usiminas {
		template = TemplateUsiminas
		prefix = PrefixUsiminas
	}

	numero := strings.TrimSpace(p.OrdemServico)
	if numero == "" {
		numero = strings.TrimSpace(p.NumeroPeritagem)
	}
	if numero == "" {
		numero = "SEM-OS"
	}

	data := &ReportData{
		Template:       template,
		FilenamePrefix: prefix,
		Filename:       fmt.Sprintf("%s_%s.pdf", prefix, numero),
		Cabecalho:      projectCabecalho(p),
		Parecer:        GenerateOpinion(p, items),
	}

	var components []entity.AnaliseItem
	for _, item := range items {
		if item.Tipo == entity.TipoVedacao {
			if item.Conformidade == entity.ConformidadeNaoConforme {
				data.VedacoesNaoConformes = append(data.VedacoesNaoConformes, projectDetalhe(item))
			}
			continue
		}
		components = append(components, item)
		if item.Conformidade == entity.ConformidadeNaoConforme {
			data.ComponentesNaoConformes = append(data.ComponentesNaoConformes, projectDetalhe(item))
		}
	}

	// The checklist table always carries the full client template. Unmarked
	// lines are not persisted on submit, so the table is rebuilt by walking
	// the template and matching persisted rows by description (first match
	// wins, same as the edit flow); unmatched lines render unverdicted.
	// Persisted rows outside the template follow after it.
	checklistTemplate := entity.ChecklistForCliente(p.Cliente)
	used := make([]bool, len(components))
	checklist := make([]ChecklistRow, 0, len(checklistTemplate))
	for _, desc := range checklistTemplate {
		conformidade := ""
		for i, item := range components {
			if !used[i] && item.Descricao == desc {
				used[i] = true
				conformidade = item.Conformidade
				break
			}
		}
		checklist = append(checklist, ChecklistRow{
			Descricao:    display(desc),
			Conformidade: conformidadeDisplay(conformidade),
		})
	}
	for i, item := range components {
		if !used[i] {
			checklist = append(checklist, ChecklistRow{
				Descricao:    display(item.Descricao),
				Conformidade: conformidadeDisplay(item.Conformidade),
			})
		}
	}

	if len(checklist) > ChecklistPageSize {
		data.ChecklistPrimeiraPagina = checklist[:ChecklistPageSize]
		data.ChecklistContinuacao = checklist[ChecklistPageSize:]
	} else {
		data.ChecklistPrimeiraPagina = checklist
	}

	return data
}

func projectDetalhe(item entity.AnaliseItem) AnaliseDetalhe {
	return AnaliseDetalhe{
		Descricao:  display(item.Descricao),
		Quantidade: display(item.Quantidade),
		Dimensoes:  display(item.Dimensoes),
		DiametroExterno: MedidaDisplay{
			Encontrado:   display(item.DiametroExternoEncontrado),
			Especificado: display(item.DiametroExternoEspecificado),
			Desvio:       FormatDesvio(item.DesvioDiametroExterno),
		},
		DiametroInterno: MedidaDisplay{
			Encontrado:   display(item.DiametroInternoEncontrado),
			Especificado: display(item.DiametroInternoEspecificado),
			Desvio:       FormatDesvio(item.DesvioDiametroInterno),
		},
		Comprimento: MedidaDisplay{
			Encontrado:   display(item.ComprimentoEncontrado),
			Especificado: display(item.ComprimentoEspecificado),
			Desvio:       FormatDesvio(item.DesvioComprimento),
		},
		Anomalia:         display(item.Anomalia),
		CorrecaoSugerida: display(item.CorrecaoSugerida),
		Fotos:            item.Fotos,
		Unidade:          display(item.Unidade),
		Observacao:       display(item.Observacao),
	}
}

func projectCabecalho(p *entity.Peritagem) CabecalhoReport {
	return CabecalhoReport{
		NumeroPeritagem:       display(p.NumeroPeritagem),
		Cliente:               display(p.Cliente),
		TagEquipamento:        display(p.TagEquipamento),
		LocalEquipamento:      display(p.LocalEquipamento),
		TipoCilindro:          display(p.TipoCilindro),
		OrdemServico:          display(p.OrdemServico),
		NumeroMaterial:        display(p.NumeroMaterial),
		PedidoCompra:          display(p.PedidoCompra),
		NotaFiscal:            display(p.NotaFiscal),
		OrdemServicoInterna:   display(p.OrdemServicoInterna),
		DiametroInternoCamisa: display(p.DiametroInternoCamisa),
		DiametroExternoCamisa: display(p.DiametroExternoCamisa),
		ComprimentoCamisa:     display(p.ComprimentoCamisa),
		DiametroHaste:         display(p.DiametroHaste),
		ComprimentoHaste:      display(p.ComprimentoHaste),
		Curso:                 display(p.Curso),
		DesenhoConjunto:       display(p.DesenhoConjunto),
		TipoModelo:            display(p.TipoModelo),
		Fabricante:            display(p.Fabricante),
		Lubrificante:          display(p.Lubrificante),
		Volume:                display(p.Volume),
		PossuiAcoplamento:     display(p.PossuiAcoplamento),
		PossuiLubrificacao:    display(p.PossuiLubrificacao),
		Observacoes:           display(p.Observacoes),
		FotoFrontal:           p.FotoFrontal,
		Status:                display(p.Status),
	}
}

func display(v string) string {
	if strings.TrimSpace(v) == "" {
		return displayPlaceholder
	}
	return v
}

func conformidadeDisplay(conformidade string) string {
	switch conformidade {
	case entity.ConformidadeConforme:
		return "CONFORME"
	case entity.ConformidadeNaoConforme:
		return "NÃO CONFORME"
	default:
		return displayPlaceholder
	}
}
