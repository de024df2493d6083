package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimentacaoEstoque registra cada ajuste de estoque de um produto.
type MovimentacaoEstoque struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo            string    `gorm:"not null"` // "ajuste_manual" | "producao" | "consumo"
	Quantidade      int       `gorm:"not null"` // positive = entrada, negative = saída
	EstoqueAnterior int       `gorm:"not null"`
	EstoqueNovo     int       `gorm:"not null"`
	Motivo          string
	ReferenciaID    *uuid.UUID `gorm:"type:uuid"` // pedido_id when applicable
	CreatedAt       time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentacaoEstoque) TableName() string { return "movimentacoes_estoque" }
