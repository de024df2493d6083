package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=120"`
	Empresa  *string `json:"empresa"`
	CNPJ     *string `json:"cnpj"     validate:"omitempty,min=14,max=18"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Endereco *string `json:"endereco"`
}

type AtualizarClienteRequest struct {
	Nome     *string `json:"nome"     validate:"omitempty,min=2,max=120"`
	Empresa  *string `json:"empresa"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Endereco *string `json:"endereco"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ClienteFilter struct {
	Nome   string `form:"nome"`
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID                string    `json:"id"`
	Nome              string    `json:"nome"`
	Empresa           *string   `json:"empresa"`
	CNPJ              *string   `json:"cnpj"`
	Telefone          *string   `json:"telefone"`
	Email             *string   `json:"email"`
	Endereco          *string   `json:"endereco"`
	StatusOrcamento   string    `json:"status_orcamento"`
	PrazoCancelamento time.Time `json:"prazo_cancelamento"`
	Ativo             bool      `json:"ativo"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
