package dto

import "github.com/shopspring/decimal"

type CriarProcessoRequest struct {
	Nome             string          `json:"nome"               validate:"required,min=2,max=120"`
	PrecoPorUnidade  decimal.Decimal `json:"preco_por_unidade"  validate:"min=0"`
	TempoEstimadoMin int             `json:"tempo_estimado_min" validate:"min=0"`
}

type AtualizarProcessoRequest struct {
	Nome             *string          `json:"nome"               validate:"omitempty,min=2,max=120"`
	PrecoPorUnidade  *decimal.Decimal `json:"preco_por_unidade"  validate:"omitempty,min=0"`
	TempoEstimadoMin *int             `json:"tempo_estimado_min" validate:"omitempty,min=0"`
}

type ProcessoResponse struct {
	ID               string          `json:"id"`
	Nome             string          `json:"nome"`
	PrecoPorUnidade  decimal.Decimal `json:"preco_por_unidade"`
	TempoEstimadoMin int             `json:"tempo_estimado_min"`
	Ativo            bool            `json:"ativo"`
}
