package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoricoCusto registra cada recomputação persistida de custo de um produto.
// Os registros são imutáveis — nunca se eliminam nem modificam.
type HistoricoCusto struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustoTotal     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CustoMateriais decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CustoProcessos decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CustoMaoDeObra decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Motivo         string          `gorm:"not null;default:'recalculo'"` // recalculo | edicao | manual
	CreatedAt      time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (HistoricoCusto) TableName() string { return "historico_custos" }
