package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status de pedido.
const (
	StatusPedidoPendente   = "pendente"
	StatusPedidoEmProducao = "em_producao"
	StatusPedidoFinalizado = "finalizado"
	StatusPedidoCancelado  = "cancelado"
)

// Pedido is an order that references a catalog product (optional — an order may
// carry only extra line items), a client, and the inputs of the quote pipeline:
// quantity, freight, ordered extra items, and ordered taxes.
type Pedido struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID  *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantidade decimal.Decimal `gorm:"type:decimal(12,4);not null;default:1"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pendente'"`
	TemFrete   bool            `gorm:"not null;default:false"`
	ValorFrete decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Observacao *string
	CriadoPor  uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
	Cliente *Cliente `gorm:"foreignKey:ClienteID"`

	// Child rows are always loaded ORDER BY ordem — insertion order is part of
	// the quote semantics (the tax chain compounds in this exact order).
	ItensExtras []ItemExtraPedido `gorm:"foreignKey:PedidoID"`
	Impostos    []ImpostoPedido   `gorm:"foreignKey:PedidoID"`
}

// ItemExtraPedido is a flat-value line item (no quantity multiplier).
type ItemExtraPedido struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Descricao string          `gorm:"not null"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ordem     int             `gorm:"not null"`
	CreatedAt time.Time
}

func (ItemExtraPedido) TableName() string { return "itens_extras_pedidos" }

// ImpostoPedido is one link of the tax chain. Percentual is a markup-on-price
// percentage; values outside [0, 100) are rejected before any computation.
type ImpostoPedido struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo       string          `gorm:"not null"` // ICMS, ISS, IPI…
	Percentual decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Ordem      int             `gorm:"not null"`
	CreatedAt  time.Time
}

func (ImpostoPedido) TableName() string { return "impostos_pedidos" }
