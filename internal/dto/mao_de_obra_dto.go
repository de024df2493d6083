package dto

import "github.com/shopspring/decimal"

type CriarMaoDeObraRequest struct {
	Tipo         string          `json:"tipo"           validate:"required,min=2,max=120"`
	PrecoPorHora decimal.Decimal `json:"preco_por_hora" validate:"min=0"`
}

type AtualizarMaoDeObraRequest struct {
	Tipo         *string          `json:"tipo"           validate:"omitempty,min=2,max=120"`
	PrecoPorHora *decimal.Decimal `json:"preco_por_hora" validate:"omitempty,min=0"`
}

type MaoDeObraResponse struct {
	ID           string          `json:"id"`
	Tipo         string          `json:"tipo"`
	PrecoPorHora decimal.Decimal `json:"preco_por_hora"`
	Ativo        bool            `json:"ativo"`
}
