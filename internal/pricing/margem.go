// Package pricing contains the pure computation core of the quotation
// pipeline: margin application, order aggregation, and the sequential tax
// chain. All functions operate on shopspring decimals, never touch I/O, and
// fail fast on invalid input — a price is never fabricated from bad data.
package pricing

import "github.com/shopspring/decimal"

var cem = decimal.NewFromInt(100)

// ResultadoMargem is the outcome of applying a profit margin to a base cost.
type ResultadoMargem struct {
	ValorMargem    decimal.Decimal `json:"valor_margem"`
	PrecoComMargem decimal.Decimal `json:"preco_com_margem"`
	MargemAplicada bool            `json:"margem_aplicada"`
}

// AplicarMargem converts a base cost into a margin-inclusive price.
//
// The margin is a fraction of the SELLING price, not of the cost:
//
//	preco = custo / (1 - m)    para 0 < m < 1
//
// For m <= 0 or m >= 1 the margin is not applied and the price equals the
// cost — this guards division by zero and inverted results, and matches the
// documented formula downstream totals depend on.
func AplicarMargem(custoBase, margemPct decimal.Decimal) ResultadoMargem {
	m := margemPct.Div(cem)
	if m.LessThanOrEqual(decimal.Zero) || m.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ResultadoMargem{
			ValorMargem:    decimal.Zero,
			PrecoComMargem: custoBase,
		}
	}
	preco := custoBase.Div(decimal.NewFromInt(1).Sub(m))
	return ResultadoMargem{
		ValorMargem:    preco.Sub(custoBase),
		PrecoComMargem: preco,
		MargemAplicada: true,
	}
}
