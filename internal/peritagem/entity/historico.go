package entity

import "time"

// HistoricoStatus is the append-only audit trail of workflow transitions.
// One row is written after every status change; the write is best-effort and
// never rolls back the transition it documents.
type HistoricoStatus struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	PeritagemID    string    `json:"peritagem_id" gorm:"size:32;index;not null"`
	StatusAnterior string    `json:"status_anterior" gorm:"size:60"`
	StatusNovo     string    `json:"status_novo" gorm:"size:60"`
	UsuarioID      string    `json:"usuario_id" gorm:"size:32"`
	UsuarioNome    string    `json:"usuario_nome" gorm:"size:100"`
	Motivo         string    `json:"motivo" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
}

func (HistoricoStatus) TableName() string {
	return "historico_status_peritagem"
}
