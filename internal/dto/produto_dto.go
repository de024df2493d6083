package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	Nome           string           `json:"nome"             validate:"required,min=2,max=120"`
	Descricao      *string          `json:"descricao"`
	PrecoUnitario  decimal.Decimal  `json:"preco_unitario"   validate:"min=0"`
	Estoque        int              `json:"estoque"          validate:"min=0"`
	EhMateriaPrima bool             `json:"eh_materia_prima"`
	Tipo           string           `json:"tipo"             validate:"required,oneof=simples calculado"`
	MargemLucroPct *decimal.Decimal `json:"margem_lucro_pct" validate:"omitempty,min=0,lt=100"`
}

type AtualizarProdutoRequest struct {
	Nome           *string          `json:"nome"             validate:"omitempty,min=2,max=120"`
	Descricao      *string          `json:"descricao"`
	PrecoUnitario  *decimal.Decimal `json:"preco_unitario"   validate:"omitempty,min=0"`
	EhMateriaPrima *bool            `json:"eh_materia_prima"`
	Tipo           *string          `json:"tipo"             validate:"omitempty,oneof=simples calculado"`
	MargemLucroPct *decimal.Decimal `json:"margem_lucro_pct" validate:"omitempty,min=0,lt=100"`
}

type AjustarEstoqueRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type CriarDependenciaRequest struct {
	ProdutoFilhoID string          `json:"produto_filho_id" validate:"required,uuid"`
	Quantidade     decimal.Decimal `json:"quantidade"       validate:"required,gt=0"`
}

type AtualizarDependenciaRequest struct {
	Quantidade decimal.Decimal `json:"quantidade" validate:"required,gt=0"`
}

type VincularProcessoRequest struct {
	ProcessoID string          `json:"processo_id" validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade"  validate:"required,gt=0"`
}

type VincularMaoDeObraRequest struct {
	MaoDeObraID string          `json:"mao_de_obra_id" validate:"required,uuid"`
	Horas       decimal.Decimal `json:"horas"          validate:"required,gt=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProdutoFilter struct {
	Nome           string `form:"nome"`
	Tipo           string `form:"tipo"`
	EhMateriaPrima string `form:"eh_materia_prima"` // "true" | "false" | ""
	Ativo          string `form:"ativo"`            // "false" | "all" | default activos
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID             string          `json:"id"`
	Nome           string          `json:"nome"`
	Descricao      *string         `json:"descricao"`
	PrecoUnitario  decimal.Decimal `json:"preco_unitario"`
	Estoque        int             `json:"estoque"`
	EhMateriaPrima bool            `json:"eh_materia_prima"`
	Tipo           string          `json:"tipo"`
	MargemLucroPct decimal.Decimal `json:"margem_lucro_pct"`
	Ativo          bool            `json:"ativo"`

	// Cached cost figures; CustosCalculadosEm == nil means stale/never computed.
	CustoTotal         decimal.Decimal `json:"custo_total"`
	CustoMateriais     decimal.Decimal `json:"custo_materiais"`
	CustoProcessos     decimal.Decimal `json:"custo_processos"`
	CustoMaoDeObra     decimal.Decimal `json:"custo_mao_de_obra"`
	CustosCalculadosEm *time.Time      `json:"custos_calculados_em"`
}

type ProdutoListResponse struct {
	Data  []ProdutoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type DependenciaResponse struct {
	ID             string          `json:"id"`
	ProdutoPaiID   string          `json:"produto_pai_id"`
	ProdutoFilhoID string          `json:"produto_filho_id"`
	NomeFilho      string          `json:"nome_filho,omitempty"`
	Quantidade     decimal.Decimal `json:"quantidade"`
}

type ProdutoProcessoResponse struct {
	ID              string          `json:"id"`
	ProcessoID      string          `json:"processo_id"`
	NomeProcesso    string          `json:"nome_processo,omitempty"`
	PrecoPorUnidade decimal.Decimal `json:"preco_por_unidade"`
	Quantidade      decimal.Decimal `json:"quantidade"`
}

type ProdutoMaoDeObraResponse struct {
	ID            string          `json:"id"`
	MaoDeObraID   string          `json:"mao_de_obra_id"`
	TipoMaoDeObra string          `json:"tipo_mao_de_obra,omitempty"`
	PrecoPorHora  decimal.Decimal `json:"preco_por_hora"`
	Horas         decimal.Decimal `json:"horas"`
}
