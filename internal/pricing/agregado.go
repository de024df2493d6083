package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrValorNegativo is returned for negative quantities or values — malformed
// input is rejected before any aggregation happens.
var ErrValorNegativo = errors.New("valor negativo")

// ItemPedido is an order line: a margin-inclusive unit price times a quantity.
type ItemPedido struct {
	Descricao      string          `json:"descricao"`
	PrecoComMargem decimal.Decimal `json:"preco_com_margem"`
	Quantidade     decimal.Decimal `json:"quantidade"`
}

// ItemExtra is a flat-value line — no quantity multiplier.
type ItemExtra struct {
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
}

// Agregado exposes each component of the order subtotal separately so the tax
// stage and the presentation layer can report them individually. Frete is
// carried through untouched — it is added AFTER the tax chain.
type Agregado struct {
	SubtotalProdutos decimal.Decimal `json:"subtotal_produtos"`
	SubtotalExtras   decimal.Decimal `json:"subtotal_extras"`
	Frete            decimal.Decimal `json:"frete"`
	Subtotal         decimal.Decimal `json:"subtotal"` // produtos + extras, sem frete
}

// AgregarPedido sums order lines and extra items into the taxable subtotal.
func AgregarPedido(itens []ItemPedido, extras []ItemExtra, frete decimal.Decimal) (Agregado, error) {
	if frete.IsNegative() {
		return Agregado{}, fmt.Errorf("%w: frete = %s", ErrValorNegativo, frete)
	}

	produtos := decimal.Zero
	for _, item := range itens {
		if item.Quantidade.IsNegative() {
			return Agregado{}, fmt.Errorf("%w: quantidade de %q = %s", ErrValorNegativo, item.Descricao, item.Quantidade)
		}
		if item.PrecoComMargem.IsNegative() {
			return Agregado{}, fmt.Errorf("%w: preco de %q = %s", ErrValorNegativo, item.Descricao, item.PrecoComMargem)
		}
		produtos = produtos.Add(item.PrecoComMargem.Mul(item.Quantidade))
	}

	somaExtras := decimal.Zero
	for _, extra := range extras {
		if extra.Valor.IsNegative() {
			return Agregado{}, fmt.Errorf("%w: item extra %q = %s", ErrValorNegativo, extra.Descricao, extra.Valor)
		}
		somaExtras = somaExtras.Add(extra.Valor)
	}

	return Agregado{
		SubtotalProdutos: produtos,
		SubtotalExtras:   somaExtras,
		Frete:            frete,
		Subtotal:         produtos.Add(somaExtras),
	}, nil
}
