package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"orcamento/internal/pricing"
)

// DetalheCustoResponse is the resolved base cost of one product.
type DetalheCustoResponse struct {
	ProdutoID      string          `json:"produto_id"`
	CustoTotal     decimal.Decimal `json:"custo_total"`
	CustoMateriais decimal.Decimal `json:"custo_materiais"`
	CustoProcessos decimal.Decimal `json:"custo_processos"`
	CustoMaoDeObra decimal.Decimal `json:"custo_mao_de_obra"`
	CalculadoEm    time.Time       `json:"calculado_em"`
	// Cache indicates the figures came from the persisted cache rather than a
	// fresh traversal.
	Cache bool `json:"cache"`
}

// ItemOrcamentoResponse is one priced order line in the quote breakdown.
type ItemOrcamentoResponse struct {
	ProdutoID      string          `json:"produto_id"`
	NomeProduto    string          `json:"nome_produto"`
	CustoBase      decimal.Decimal `json:"custo_base"`
	MargemPct      decimal.Decimal `json:"margem_pct"`
	ValorMargem    decimal.Decimal `json:"valor_margem"`
	PrecoComMargem decimal.Decimal `json:"preco_com_margem"`
	Quantidade     decimal.Decimal `json:"quantidade"`
	ValorLinha     decimal.Decimal `json:"valor_linha"`
}

// OrcamentoResponse is the full quote: every stage of the pipeline reported
// separately so the presentation layer can show each figure.
type OrcamentoResponse struct {
	PedidoID         string                   `json:"pedido_id"`
	NomeCliente      string                   `json:"nome_cliente,omitempty"`
	Itens            []ItemOrcamentoResponse  `json:"itens"`
	ItensExtras      []ItemExtraResponse      `json:"itens_extras"`
	SubtotalProdutos decimal.Decimal          `json:"subtotal_produtos"`
	SubtotalExtras   decimal.Decimal          `json:"subtotal_extras"`
	Subtotal         decimal.Decimal          `json:"subtotal"`
	Impostos         []pricing.DetalheImposto `json:"impostos"`
	TotalComImpostos decimal.Decimal          `json:"total_com_impostos"`
	Frete            decimal.Decimal          `json:"frete"`
	TotalFinal       decimal.Decimal          `json:"total_final"`
	GeradoEm         time.Time                `json:"gerado_em"`
}
