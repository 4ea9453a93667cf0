package service

import (
	"fmt"
	"strings"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/entity"
)

// Severity levels of the technical opinion conclusion.
const (
	SeveridadeBaixa = "baixa"
	SeveridadeMedia = "média"
	SeveridadeAlta  = "alta"
)

const placeholderNaoInformado = "não informado"

// Fixed recommendation paragraph per severity.
var recomendacaoPorSeveridade = map[string]string{
	SeveridadeBaixa: "Conclusão: severidade baixa. Recomenda-se o monitoramento de rotina do equipamento, sem necessidade de intervenção imediata.",
	SeveridadeMedia: "Conclusão: severidade média. Recomenda-se manutenção corretiva programada para tratamento das não conformidades apontadas.",
	SeveridadeAlta:  "Conclusão: severidade alta. Recomenda-se intervenção imediata, dado o grau de severidade das não conformidades identificadas.",
}

// ClassifySeveridade computes the conclusion severity: alta when the
// inspection is urgent or more than three items are non-conforming, média
// when any item is non-conforming, baixa otherwise.
func ClassifySeveridade(p *entity.Peritagem, naoConformes int) string {
	if p.Prioridade == entity.PrioridadeUrgente || naoConformes > 3 {
		return SeveridadeAlta
	}
	if naoConformes > 0 {
		return SeveridadeMedia
	}
	return SeveridadeBaixa
}

// GenerateOpinion produces the deterministic technical opinion narrative
// from the inspection and its analysis rows. Sections are emitted in fixed
// order; a section whose condition does not hold contributes no text.
func GenerateOpinion(p *entity.Peritagem, items []entity.AnaliseItem) string {
	var naoConformes []entity.AnaliseItem
	for _, item := range items {
		if item.Conformidade == entity.ConformidadeNaoConforme {
			naoConformes = append(naoConformes, item)
		}
	}

	var sections []string

	// 1. Intro
	sections = append(sections, fmt.Sprintf(
		"O presente laudo técnico refere-se à peritagem do cilindro %s, TAG %s, instalado em %s.",
		orPlaceholder(p.TipoCilindro), orPlaceholder(p.TagEquipamento), orPlaceholder(p.LocalEquipamento)))

	// 2. Overall condition
	if len(naoConformes) > 0 {
		sections = append(sections,
			"A avaliação geral identificou não conformidades que comprometem a operação adequada do equipamento.")
	} else {
		sections = append(sections,
			"A avaliação geral indica que o equipamento encontra-se em condição satisfatória de operação.")
	}

	// 3. Detailed findings
	if len(naoConformes) > 0 {
		sections = append(sections, fmt.Sprintf(
			"Foram constatadas não conformidades nos seguintes itens: %s.",
			strings.Join(distinctDescriptions(naoConformes), ", ")))
		if anomalias := nonEmptyAnomalias(naoConformes); len(anomalias) > 0 {
			sections = append(sections, fmt.Sprintf(
				"Anomalias registradas: %s.", strings.Join(anomalias, "; ")))
		}
	} else {
		sections = append(sections,
			"Não foram constatadas anomalias relevantes nos componentes inspecionados.")
	}

	// 4. Dimensional statement, only when at least one key dimension was
	// captured. No dimensional validation exists upstream, so this always
	// asserts conformance.
	if p.DiametroInternoCamisa != "" || p.DiametroHaste != "" || p.Curso != "" {
		sections = append(sections,
			"As medições dimensionais realizadas encontram-se em conformidade com as especificações de referência do equipamento.")
	}

	// 5. Photographic record
	if hasPhotos(items) {
		sections = append(sections,
			"O registro fotográfico dos componentes inspecionados encontra-se anexado ao presente laudo.")
	} else {
		sections = append(sections,
			"Não há registro fotográfico adicional dos componentes inspecionados.")
	}

	// 6. Severity conclusion
	sections = append(sections, recomendacaoPorSeveridade[ClassifySeveridade(p, len(naoConformes))])

	// 7. Recommended fixes, input order
	if fixes := nonEmptyFixes(naoConformes); len(fixes) > 0 {
		var b strings.Builder
		b.WriteString("Ações recomendadas:")
		for _, fix := range fixes {
			b.WriteString("\n- ")
			b.WriteString(fix)
		}
		sections = append(sections, b.String())
	}

	// 8. Closing disclaimer
	sections = append(sections,
		"Este laudo reflete as condições observadas na data da inspeção e não substitui avaliações complementares que se façam necessárias.")

	return strings.Join(sections, "\n\n")
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return placeholderNaoInformado
	}
	return v
}

func distinctDescriptions(items []entity.AnaliseItem) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if item.Descricao != "" && !seen[item.Descricao] {
			seen[item.Descricao] = true
			out = append(out, item.Descricao)
		}
	}
	return out
}

func nonEmptyAnomalias(items []entity.AnaliseItem) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item.Anomalia) != "" {
			out = append(out, item.Anomalia)
		}
	}
	return out
}

func nonEmptyFixes(items []entity.AnaliseItem) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item.CorrecaoSugerida) != "" {
			out = append(out, item.CorrecaoSugerida)
		}
	}
	return out
}

func hasPhotos(items []entity.AnaliseItem) bool {
	for _, item := range items {
		if len(item.Fotos) > 0 {
			return true
		}
	}
	return false
}
