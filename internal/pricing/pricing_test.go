package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── AplicarMargem ────────────────────────────────────────────────────────────

func TestAplicarMargem(t *testing.T) {
	// 100 / (1 - 0.20) = 125 — margem sobre o preço de venda, não sobre o custo
	r := AplicarMargem(dec("100"), dec("20"))
	assert.True(t, r.MargemAplicada)
	assert.Equal(t, "125.00", r.PrecoComMargem.StringFixed(2))
	assert.Equal(t, "25.00", r.ValorMargem.StringFixed(2))
}

func TestAplicarMargemZero(t *testing.T) {
	r := AplicarMargem(dec("100"), decimal.Zero)
	assert.False(t, r.MargemAplicada)
	assert.Equal(t, "100.00", r.PrecoComMargem.StringFixed(2))
	assert.True(t, r.ValorMargem.IsZero())
}

func TestAplicarMargemCemPorCento(t *testing.T) {
	// m >= 1 would divide by zero — margin must not be applied
	r := AplicarMargem(dec("100"), dec("100"))
	assert.False(t, r.MargemAplicada)
	assert.Equal(t, "100.00", r.PrecoComMargem.StringFixed(2))
}

func TestAplicarMargemNegativa(t *testing.T) {
	r := AplicarMargem(dec("100"), dec("-10"))
	assert.False(t, r.MargemAplicada)
	assert.Equal(t, "100.00", r.PrecoComMargem.StringFixed(2))
}

// ── AplicarImpostos ──────────────────────────────────────────────────────────

func TestAplicarImpostosCadeiaSequencial(t *testing.T) {
	impostos := []Imposto{
		{Tipo: "ICMS", Percentual: dec("10")},
		{Tipo: "ISS", Percentual: dec("5")},
	}
	total, detalhes, err := AplicarImpostos(dec("1000"), impostos)
	require.NoError(t, err)
	require.Len(t, detalhes, 2)

	// T1 = 1000 + 1000×0.10/0.90 = 1111.11
	assert.Equal(t, "1111.11", detalhes[0].TotalAcumulado.StringFixed(2))
	assert.Equal(t, "111.11", detalhes[0].Valor.StringFixed(2))
	// T2 = 1111.11 + 1111.11×0.05/0.95 ≈ 1169.59
	assert.Equal(t, "1169.59", total.StringFixed(2))
	assert.Equal(t, total, detalhes[1].TotalAcumulado)
}

func TestAplicarImpostosOrdemPreservada(t *testing.T) {
	direta := []Imposto{
		{Tipo: "ICMS", Percentual: dec("10")},
		{Tipo: "ISS", Percentual: dec("5")},
	}
	invertida := []Imposto{
		{Tipo: "ISS", Percentual: dec("5")},
		{Tipo: "ICMS", Percentual: dec("10")},
	}

	_, detA, err := AplicarImpostos(dec("1000"), direta)
	require.NoError(t, err)
	_, detB, err := AplicarImpostos(dec("1000"), invertida)
	require.NoError(t, err)

	// The breakdown is order-sensitive: each tax compounds on the running
	// total, so the per-tax values change when the order is swapped.
	assert.Equal(t, "ICMS", detA[0].Tipo)
	assert.Equal(t, "ISS", detB[0].Tipo)
	assert.NotEqual(t, detA[0].Valor.StringFixed(2), detB[0].Valor.StringFixed(2))
	assert.NotEqual(t, detA[1].Valor.StringFixed(2), detB[1].Valor.StringFixed(2))
}

func TestAplicarImpostosCadeiaVazia(t *testing.T) {
	total, detalhes, err := AplicarImpostos(dec("500"), nil)
	require.NoError(t, err)
	assert.Empty(t, detalhes)
	assert.Equal(t, "500.00", total.StringFixed(2))
}

func TestAplicarImpostosPercentualInvalido(t *testing.T) {
	casos := []string{"100", "120", "-1"}
	for _, pct := range casos {
		_, _, err := AplicarImpostos(dec("1000"), []Imposto{{Tipo: "ICMS", Percentual: dec(pct)}})
		assert.ErrorIs(t, err, ErrPercentualInvalido, "percentual %s deveria ser rejeitado", pct)
	}
}

func TestAplicarImpostosRejeitaAntesDeComputar(t *testing.T) {
	// An invalid tax anywhere in the chain aborts the whole computation —
	// no partial breakdown.
	impostos := []Imposto{
		{Tipo: "ICMS", Percentual: dec("10")},
		{Tipo: "IPI", Percentual: dec("150")},
	}
	_, detalhes, err := AplicarImpostos(dec("1000"), impostos)
	assert.ErrorIs(t, err, ErrPercentualInvalido)
	assert.Nil(t, detalhes)
}

// ── AgregarPedido ────────────────────────────────────────────────────────────

func TestAgregarPedido(t *testing.T) {
	itens := []ItemPedido{
		{Descricao: "Suporte", PrecoComMargem: dec("125"), Quantidade: dec("2")},
		{Descricao: "Chapa", PrecoComMargem: dec("60"), Quantidade: dec("1")},
	}
	extras := []ItemExtra{{Descricao: "Pintura especial", Valor: dec("15")}}

	ag, err := AgregarPedido(itens, extras, dec("20"))
	require.NoError(t, err)
	assert.Equal(t, "310.00", ag.SubtotalProdutos.StringFixed(2))
	assert.Equal(t, "15.00", ag.SubtotalExtras.StringFixed(2))
	assert.Equal(t, "325.00", ag.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", ag.Frete.StringFixed(2))
}

func TestAgregarPedidoFreteDepoisDosImpostos(t *testing.T) {
	// Full pipeline of the worked example: subtotal 325, taxes, then freight.
	ag, err := AgregarPedido(
		[]ItemPedido{{PrecoComMargem: dec("125"), Quantidade: dec("2")}, {PrecoComMargem: dec("60"), Quantidade: dec("1")}},
		[]ItemExtra{{Valor: dec("15")}},
		dec("20"),
	)
	require.NoError(t, err)

	total, _, err := AplicarImpostos(ag.Subtotal, []Imposto{{Tipo: "ICMS", Percentual: dec("10")}})
	require.NoError(t, err)

	// 325/0.9 = 361.11; frete entra inalterado depois da cadeia
	final := total.Add(ag.Frete)
	assert.Equal(t, "381.11", final.StringFixed(2))
}

func TestAgregarPedidoValoresNegativos(t *testing.T) {
	_, err := AgregarPedido([]ItemPedido{{Descricao: "x", PrecoComMargem: dec("10"), Quantidade: dec("-1")}}, nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrValorNegativo)

	_, err = AgregarPedido(nil, []ItemExtra{{Descricao: "y", Valor: dec("-5")}}, decimal.Zero)
	assert.ErrorIs(t, err, ErrValorNegativo)

	_, err = AgregarPedido(nil, nil, dec("-20"))
	assert.ErrorIs(t, err, ErrValorNegativo)
}

func TestAgregarPedidoVazio(t *testing.T) {
	ag, err := AgregarPedido(nil, nil, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, ag.Subtotal.IsZero())
}
