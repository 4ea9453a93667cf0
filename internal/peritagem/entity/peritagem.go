package entity

import (
	"time"
)

// Peritagem is one physical cylinder inspection record. It is created by a
// perito submitting the inspection form and then walks through the approval
// workflow until PROCESSO FINALIZADO. Records are never physically deleted.
type Peritagem struct {
	ID              string `json:"id" gorm:"primaryKey;size:32"`
	NumeroPeritagem string `json:"numero_peritagem" gorm:"size:64;uniqueIndex;not null"`

	// Classification
	Cliente           string `json:"cliente" gorm:"size:200"`
	TagEquipamento    string `json:"tag_equipamento" gorm:"size:100"`
	LocalEquipamento  string `json:"local_equipamento" gorm:"size:200"`
	TipoCilindro      string `json:"tipo_cilindro" gorm:"size:100"`
	Prioridade        string `json:"prioridade" gorm:"size:20"` // Normal/Urgente

	// Document references
	OrdemServico        string `json:"ordem_servico" gorm:"size:64"`
	NumeroMaterial      string `json:"numero_material" gorm:"size:64"` // ni
	PedidoCompra        string `json:"pedido_compra" gorm:"size:64"`
	NotaFiscal          string `json:"nota_fiscal" gorm:"size:64"`
	OrdemServicoInterna string `json:"ordem_servico_interna" gorm:"size:64"`

	// Dimensional fields, millimeter values kept as entered (free numeric text)
	DiametroInternoCamisa string `json:"diametro_interno_camisa" gorm:"size:32"`
	DiametroExternoCamisa string `json:"diametro_externo_camisa" gorm:"size:32"`
	ComprimentoCamisa     string `json:"comprimento_camisa" gorm:"size:32"`
	DiametroHaste         string `json:"diametro_haste" gorm:"size:32"`
	ComprimentoHaste      string `json:"comprimento_haste" gorm:"size:32"`
	Curso                 string `json:"curso" gorm:"size:32"`

	// Auxiliary technical fields
	DesenhoConjunto    string `json:"desenho_conjunto" gorm:"size:100"`
	TipoModelo         string `json:"tipo_modelo" gorm:"size:100"`
	Fabricante         string `json:"fabricante" gorm:"size:100"`
	Lubrificante       string `json:"lubrificante" gorm:"size:100"`
	Volume             string `json:"volume" gorm:"size:32"`
	PossuiAcoplamento  string `json:"possui_acoplamento" gorm:"size:10"`  // sim/não
	PossuiLubrificacao string `json:"possui_lubrificacao" gorm:"size:10"` // sim/não
	Observacoes        string `json:"observacoes" gorm:"type:text"`

	// Required front photo, opaque reference (data URI or URL)
	FotoFrontal string `json:"foto_frontal" gorm:"type:text"`

	Status    string    `json:"status" gorm:"size:60;default:PERITAGEM CRIADA"`
	CriadoPor string    `json:"criado_por" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Peritagem) TableName() string {
	return "peritagens"
}

// Workflow statuses. The strings are persisted as-is; exact identity matters
// for compatibility with records written by earlier front-end versions.
const (
	StatusCriada                = "PERITAGEM CRIADA"
	StatusAguardandoPCP         = "AGUARDANDO APROVAÇÃO DO PCP"
	StatusRevisaoNecessaria     = "REVISÃO NECESSÁRIA"
	StatusAguardandoCliente     = "AGUARDANDO APROVAÇÃO DO CLIENTE"
	StatusEmManutencao          = "EM MANUTENÇÃO"
	StatusAguardandoConferencia = "AGUARDANDO CONFERÊNCIA FINAL"
	StatusFinalizado            = "PROCESSO FINALIZADO"
)

// Actor roles
const (
	RolePerito = "perito"
	RolePCP    = "pcp"
	RoleGestor = "gestor"
)

// Prioridade values
const (
	PrioridadeNormal  = "Normal"
	PrioridadeUrgente = "Urgente"
)

// legacyStatusSynonyms maps status spellings left behind by older front-end
// builds to their canonical value. Normalization happens at the repository
// read boundary so workflow logic only ever matches canonical strings.
var legacyStatusSynonyms = map[string]string{
	"Aguardando Clientes":     StatusAguardandoCliente,
	"Cilindros em Manutenção": StatusEmManutencao,
	"ORÇAMENTO FINALIZADO":    StatusFinalizado,
	"Finalizados":             StatusFinalizado,
}

// NormalizeStatus maps legacy status synonyms to the canonical status set.
// Unknown values pass through unchanged.
func NormalizeStatus(status string) string {
	if canonical, ok := legacyStatusSynonyms[status]; ok {
		return canonical
	}
	return status
}

// ValidStatusTransitions is the closed transition table of the peritagem
// workflow. EM MANUTENÇÃO → AGUARDANDO CONFERÊNCIA FINAL is driven by the
// maintenance shop system, not by an in-app action, but the engine still has
// to recognize it. PROCESSO FINALIZADO is terminal.
var ValidStatusTransitions = map[string][]string{
	StatusCriada:                {StatusAguardandoCliente, StatusRevisaoNecessaria},
	StatusAguardandoPCP:         {StatusAguardandoCliente, StatusRevisaoNecessaria},
	StatusRevisaoNecessaria:     {StatusAguardandoPCP},
	StatusAguardandoCliente:     {StatusEmManutencao},
	StatusEmManutencao:          {StatusAguardandoConferencia},
	StatusAguardandoConferencia: {StatusFinalizado},
	StatusFinalizado:            {},
}

// CanTransition reports whether moving from one canonical status to another
// is allowed by the workflow.
func CanTransition(from, to string) bool {
	for _, target := range ValidStatusTransitions[NormalizeStatus(from)] {
		if target == to {
			return true
		}
	}
	return false
}
