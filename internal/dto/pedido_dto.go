package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarPedidoRequest struct {
	ProdutoID  *string         `json:"produto_id"  validate:"omitempty,uuid"`
	ClienteID  string          `json:"cliente_id"  validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade"  validate:"required,gt=0"`
	TemFrete   bool            `json:"tem_frete"`
	ValorFrete decimal.Decimal `json:"valor_frete" validate:"min=0"`
	Observacao *string         `json:"observacao"`
}

type AtualizarPedidoRequest struct {
	Quantidade *decimal.Decimal `json:"quantidade"  validate:"omitempty,gt=0"`
	TemFrete   *bool            `json:"tem_frete"`
	ValorFrete *decimal.Decimal `json:"valor_frete" validate:"omitempty,min=0"`
	Observacao *string          `json:"observacao"`
}

type AtualizarStatusPedidoRequest struct {
	Status string `json:"status" validate:"required,oneof=pendente em_producao finalizado cancelado"`
}

type CriarItemExtraRequest struct {
	Descricao string          `json:"descricao" validate:"required,min=2,max=200"`
	Valor     decimal.Decimal `json:"valor"     validate:"min=0"`
}

type CriarImpostoRequest struct {
	Tipo       string          `json:"tipo"       validate:"required,min=2,max=40"`
	Percentual decimal.Decimal `json:"percentual" validate:"min=0,lt=100"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type PedidoFilter struct {
	ClienteID string `form:"cliente_id"`
	Status    string `form:"status"`
	CriadoPor string `form:"criado_por"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemExtraResponse struct {
	ID        string          `json:"id"`
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
	Ordem     int             `json:"ordem"`
}

type ImpostoResponse struct {
	ID         string          `json:"id"`
	Tipo       string          `json:"tipo"`
	Percentual decimal.Decimal `json:"percentual"`
	Ordem      int             `json:"ordem"`
}

type PedidoResponse struct {
	ID          string              `json:"id"`
	ProdutoID   *string             `json:"produto_id"`
	NomeProduto string              `json:"nome_produto,omitempty"`
	ClienteID   string              `json:"cliente_id"`
	NomeCliente string              `json:"nome_cliente,omitempty"`
	Quantidade  decimal.Decimal     `json:"quantidade"`
	Status      string              `json:"status"`
	TemFrete    bool                `json:"tem_frete"`
	ValorFrete  decimal.Decimal     `json:"valor_frete"`
	Observacao  *string             `json:"observacao"`
	ItensExtras []ItemExtraResponse `json:"itens_extras"`
	Impostos    []ImpostoResponse   `json:"impostos"`
	CriadoPor   string              `json:"criado_por"`
	CreatedAt   string              `json:"created_at"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
