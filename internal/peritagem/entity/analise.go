package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// StringList is a jsonb-backed list of opaque strings (photo references).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("failed to scan StringList: %v", value)
	}
}

// Analysis item kinds
const (
	TipoComponente = "componente"
	TipoVedacao    = "vedacao"
)

// Conformity values. An empty Conformidade means the item was never marked
// by the perito; such component rows are not persisted on submit.
const (
	ConformidadeConforme    = "conforme"
	ConformidadeNaoConforme = "não conforme"
)

// AnaliseItem is one inspected checklist line, either a component or a seal
// (vedação). Items belong to exactly one Peritagem and are fully replaced
// whenever the parent is edited and resubmitted.
type AnaliseItem struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	PeritagemID string `json:"peritagem_id" gorm:"size:32;index;not null"`
	Tipo        string `json:"tipo" gorm:"size:20;default:componente"`
	Descricao   string `json:"descricao" gorm:"size:200"`

	Conformidade string `json:"conformidade" gorm:"size:20"`
	Quantidade   string `json:"quantidade" gorm:"size:32"`
	Dimensoes    string `json:"dimensoes" gorm:"size:200"`

	// Measurement pairs, millimeter values as entered. The deviation columns
	// are derived (encontrado − especificado, 4 decimal places) and cleared,
	// not zeroed, when either operand is absent.
	DiametroExternoEncontrado   string `json:"diametro_externo_encontrado" gorm:"size:32"`
	DiametroExternoEspecificado string `json:"diametro_externo_especificado" gorm:"size:32"`
	DesvioDiametroExterno       string `json:"desvio_diametro_externo" gorm:"size:32"`
	DiametroInternoEncontrado   string `json:"diametro_interno_encontrado" gorm:"size:32"`
	DiametroInternoEspecificado string `json:"diametro_interno_especificado" gorm:"size:32"`
	DesvioDiametroInterno       string `json:"desvio_diametro_interno" gorm:"size:32"`
	ComprimentoEncontrado       string `json:"comprimento_encontrado" gorm:"size:32"`
	ComprimentoEspecificado     string `json:"comprimento_especificado" gorm:"size:32"`
	DesvioComprimento           string `json:"desvio_comprimento" gorm:"size:32"`

	Anomalia         string     `json:"anomalia" gorm:"type:text"`
	CorrecaoSugerida string     `json:"correcao_sugerida" gorm:"type:text"`
	Fotos            StringList `json:"fotos" gorm:"type:jsonb"`

	// Seal-only fields
	Unidade    string `json:"unidade" gorm:"size:20"`
	Observacao string `json:"observacao" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (AnaliseItem) TableName() string {
	return "analises_peritagem"
}

// ComputeDesvio derives a deviation string from a found/specified pair.
// Returns "" when either operand is missing or not numeric.
func ComputeDesvio(encontrado, especificado string) string {
	if encontrado == "" || especificado == "" {
		return ""
	}
	enc, err := strconv.ParseFloat(encontrado, 64)
	if err != nil {
		return ""
	}
	esp, err := strconv.ParseFloat(especificado, 64)
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(enc-esp, 'f', 4, 64)
}

// RecomputeDesvios refreshes all three derived deviation columns from their
// raw measurement pairs. Called by every setter that touches a measurement.
func (a *AnaliseItem) RecomputeDesvios() {
	a.DesvioDiametroExterno = ComputeDesvio(a.DiametroExternoEncontrado, a.DiametroExternoEspecificado)
	a.DesvioDiametroInterno = ComputeDesvio(a.DiametroInternoEncontrado, a.DiametroInternoEspecificado)
	a.DesvioComprimento = ComputeDesvio(a.ComprimentoEncontrado, a.ComprimentoEspecificado)
}

// Persistable reports whether the item should be written on submit:
// components only once marked, seals only once described.
func (a *AnaliseItem) Persistable() bool {
	if a.Tipo == TipoVedacao {
		return a.Descricao != ""
	}
	return a.Conformidade != ""
}
