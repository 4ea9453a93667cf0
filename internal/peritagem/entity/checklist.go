package entity

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ChecklistPadrao is the default component checklist applied to every client
// except Usiminas. Order matters: the report renders the table in template
// order and the edit flow matches persisted rows back to these lines.
var ChecklistPadrao = []string{
	"Camisa",
	"Haste",
	"Êmbolo",
	"Flange Dianteiro",
	"Flange Traseiro",
	"Bucha Guia",
	"Olhal da Haste",
	"Olhal da Camisa",
	"Rótula do Olhal da Haste",
	"Rótula do Olhal da Camisa",
	"Tampa Dianteira",
	"Tampa Traseira",
	"Tirantes",
	"Porcas dos Tirantes",
	"Conexões Hidráulicas",
	"Válvula de Bloqueio",
	"Pino do Êmbolo",
	"Anel Trava",
	"Parafusos de Fixação",
	"Pintura Externa",
}

// ChecklistUsiminas is the alternate checklist contractually required for
// Usiminas inspections.
var ChecklistUsiminas = []string{
	"Camisa",
	"Haste",
	"Êmbolo",
	"Flange Dianteiro",
	"Flange Traseiro",
	"Bucha Guia",
	"Olhal da Haste",
	"Olhal da Camisa",
	"Cartucho de Vedação",
	"Tampa Guia",
	"Tirantes",
	"Conexões Hidráulicas",
	"Sistema de Lubrificação",
	"Acoplamento",
	"Pintura Externa",
}

// BlankSealRows is how many empty seal (vedação) lines a new non-Usiminas
// inspection starts with.
const BlankSealRows = 10

// ClienteUsiminas is the reserved client value that switches checklist and
// report template.
const ClienteUsiminas = "USIMINAS"

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IsUsiminas matches the reserved client value case-insensitively and
// ignoring accents, so "usiminas", "Usiminas " and typoed accented variants
// all select the Usiminas template.
func IsUsiminas(cliente string) bool {
	folded, _, err := transform.String(foldTransformer, cliente)
	if err != nil {
		folded = cliente
	}
	return strings.EqualFold(strings.TrimSpace(folded), ClienteUsiminas)
}

// ChecklistForCliente returns the template component descriptions for a
// client, in render order.
func ChecklistForCliente(cliente string) []string {
	if IsUsiminas(cliente) {
		return ChecklistUsiminas
	}
	return ChecklistPadrao
}

// SeedChecklist builds the fresh AnaliseItem set for a new inspection:
// one unmarked component per template line and, for non-Usiminas clients,
// BlankSealRows empty seal lines.
func SeedChecklist(cliente string) []AnaliseItem {
	template := ChecklistForCliente(cliente)
	items := make([]AnaliseItem, 0, len(template)+BlankSealRows)
	for _, desc := range template {
		items = append(items, AnaliseItem{
			ID:        uuid.New().String()[:32],
			Tipo:      TipoComponente,
			Descricao: desc,
		})
	}
	if !IsUsiminas(cliente) {
		for i := 0; i < BlankSealRows; i++ {
			items = append(items, AnaliseItem{
				ID:   uuid.New().String()[:32],
				Tipo: TipoVedacao,
			})
		}
	}
	return items
}
