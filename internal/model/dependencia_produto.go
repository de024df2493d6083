package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DependenciaProduto is a directed edge in the BOM graph: the parent product
// consumes Quantidade units of the child per unit manufactured.
// The graph must stay acyclic — edge creation pre-checks reachability.
type DependenciaProduto struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoPaiID   uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_pai_filho;not null"`
	ProdutoFilhoID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_pai_filho;not null"`
	Quantidade     decimal.Decimal `gorm:"type:decimal(12,4);not null"`

	Pai   *Produto `gorm:"foreignKey:ProdutoPaiID"`
	Filho *Produto `gorm:"foreignKey:ProdutoFilhoID"`
}

func (DependenciaProduto) TableName() string { return "dependencias_produtos" }
