package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateNumero signals a uniqueness conflict on numero_peritagem;
	// handlers surface it with a dedicated message instead of a generic
	// write failure.
	ErrDuplicateNumero = errors.New("numero_peritagem already exists")
)

// Repositories bundles the data-access layer.
type Repositories struct {
	Peritagem *PeritagemRepository
	Analise   *AnaliseRepository
	Historico *HistoricoRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Peritagem: NewPeritagemRepository(db),
		Analise:   NewAnaliseRepository(db),
		Historico: NewHistoricoRepository(db),
	}
}
