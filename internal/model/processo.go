package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Processo is a catalog entry for a manufacturing process (corte, dobra, solda…).
type Processo struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome            string          `gorm:"index;not null"`
	PrecoPorUnidade decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// TempoEstimadoMin is informational only — it does not enter the cost formula.
	TempoEstimadoMin int  `gorm:"not null;default:0"`
	Ativo            bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Processo) TableName() string { return "processos" }

// ProdutoProcesso attaches a process to a (calculado) product with a quantity.
// Cost contribution: PrecoPorUnidade × Quantidade.
type ProdutoProcesso struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID  uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_produto_processo;not null"`
	ProcessoID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_produto_processo;not null"`
	Quantidade decimal.Decimal `gorm:"type:decimal(12,4);not null"`

	Processo *Processo `gorm:"foreignKey:ProcessoID"`
}

func (ProdutoProcesso) TableName() string { return "produtos_processos" }
