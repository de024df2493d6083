package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrPercentualInvalido is returned when a tax percentage falls outside
// [0, 100). Out-of-range values are rejected before any computation — never
// silently clamped.
var ErrPercentualInvalido = errors.New("percentual de imposto invalido")

// Imposto is one link of the ordered tax chain.
type Imposto struct {
	Tipo       string          `json:"tipo"`
	Percentual decimal.Decimal `json:"percentual"`
}

// DetalheImposto reports how much one tax added and the running total after it.
type DetalheImposto struct {
	Tipo           string          `json:"tipo"`
	Percentual     decimal.Decimal `json:"percentual"`
	Valor          decimal.Decimal `json:"valor"`
	TotalAcumulado decimal.Decimal `json:"total_acumulado"`
}

// AplicarImpostos applies the tax chain sequentially over the subtotal.
//
// Each tax uses the same markup-on-price formula as the margin, computed on
// the RUNNING total — later taxes compound on top of earlier ones, so the
// stored order must be preserved verbatim:
//
//	valor_i = T_{i-1} × p_i / (1 - p_i)
//	T_i     = T_{i-1} + valor_i
//
// Freight is NOT part of the chain; callers add it to the returned total.
// An empty chain returns the subtotal unchanged with no breakdown entries.
func AplicarImpostos(subtotal decimal.Decimal, impostos []Imposto) (decimal.Decimal, []DetalheImposto, error) {
	// Validate the whole chain before touching the total — no partial results.
	for _, imp := range impostos {
		if imp.Percentual.IsNegative() || imp.Percentual.GreaterThanOrEqual(cem) {
			return decimal.Zero, nil, fmt.Errorf("%w: %s = %s%%", ErrPercentualInvalido, imp.Tipo, imp.Percentual)
		}
	}

	total := subtotal
	detalhes := make([]DetalheImposto, 0, len(impostos))
	um := decimal.NewFromInt(1)
	for _, imp := range impostos {
		p := imp.Percentual.Div(cem)
		valor := total.Mul(p).Div(um.Sub(p))
		total = total.Add(valor)
		detalhes = append(detalhes, DetalheImposto{
			Tipo:           imp.Tipo,
			Percentual:     imp.Percentual,
			Valor:          valor,
			TotalAcumulado: total,
		})
	}
	return total, detalhes, nil
}
