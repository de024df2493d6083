package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaoDeObra is a catalog entry for a labor type billed by the hour.
type MaoDeObra struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo         string          `gorm:"index;not null"`
	PrecoPorHora decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Ativo        bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (MaoDeObra) TableName() string { return "mao_de_obra" }

// ProdutoMaoDeObra attaches labor hours to a product.
// Cost contribution: PrecoPorHora × Horas.
type ProdutoMaoDeObra struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID   uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_produto_mao_de_obra;not null"`
	MaoDeObraID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_produto_mao_de_obra;not null"`
	Horas       decimal.Decimal `gorm:"type:decimal(8,2);not null"`

	MaoDeObra *MaoDeObra `gorm:"foreignKey:MaoDeObraID"`
}

func (ProdutoMaoDeObra) TableName() string { return "produtos_mao_de_obra" }
