package model

import (
	"time"

	"github.com/google/uuid"
)

// Status de orçamento do cliente.
const (
	StatusClienteAberto     = "aberto"
	StatusClienteConfirmado = "confirmado"
	StatusClienteCancelado  = "cancelado"
)

// Cliente is a contact/business record. Every cliente starts with an open
// quotation status and a cancellation deadline; a background cron cancels
// clients whose deadline passed while still open. Confirmado and cancelado
// are terminal states.
type Cliente struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome     string    `gorm:"index;not null"`
	Empresa  *string
	CNPJ     *string `gorm:"column:cnpj;uniqueIndex"`
	Telefone *string
	Email    *string
	Endereco *string

	StatusOrcamento   string    `gorm:"type:varchar(20);not null;default:'aberto'"` // aberto | confirmado | cancelado
	PrazoCancelamento time.Time `gorm:"not null"`

	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Pedidos []Pedido `gorm:"foreignKey:ClienteID"`
}
