package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de produto.
const (
	TipoProdutoSimples   = "simples"
	TipoProdutoCalculado = "calculado"
)

// Produto represents both raw materials ("simples") and manufactured products
// ("calculado"). A calculado product derives its cost from the dependency tree
// (DependenciaProduto) plus attached processes and labor; a simples product has
// a direct unit price.
type Produto struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome           string    `gorm:"index;not null"`
	Descricao      *string
	PrecoUnitario  decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Estoque        int             `gorm:"not null;default:0"`
	EhMateriaPrima bool            `gorm:"not null;default:false"`
	Tipo           string          `gorm:"type:varchar(20);not null;default:'simples'"` // simples | calculado
	// MargemLucroPct is the markup-on-price margin (fraction of selling price).
	MargemLucroPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	// Cached cost figures — a denormalized view of the last resolution.
	// CustosCalculadosEm == nil means the cache is invalid and must be recomputed.
	CustoTotal         decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CustoMateriais     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CustoProcessos     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CustoMaoDeObra     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CustosCalculadosEm *time.Time

	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Dependencias []DependenciaProduto `gorm:"foreignKey:ProdutoPaiID"`
	Processos    []ProdutoProcesso    `gorm:"foreignKey:ProdutoID"`
	MaoDeObra    []ProdutoMaoDeObra   `gorm:"foreignKey:ProdutoID"`
}
