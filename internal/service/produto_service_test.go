package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcamento/internal/dto"
	"orcamento/internal/model"
)

type produtoFixture struct {
	produtos      *stubProdutoRepo
	processos     *stubProcessoRepo
	maoDeObra     *stubMaoDeObraRepo
	movimentacoes *stubMovimentacaoRepo
	svc           ProdutoService
}

func newProdutoFixture() *produtoFixture {
	produtos := newStubProdutoRepo()
	processos := newStubProcessoRepo()
	maoDeObra := newStubMaoDeObraRepo()
	movimentacoes := &stubMovimentacaoRepo{}
	custos := NewCustoService(produtos, &stubHistoricoRepo{}, nil, 0)
	return &produtoFixture{
		produtos:      produtos,
		processos:     processos,
		maoDeObra:     maoDeObra,
		movimentacoes: movimentacoes,
		svc:           NewProdutoService(produtos, processos, maoDeObra, movimentacoes, custos, nil),
	}
}

func TestCriarDependencia(t *testing.T) {
	f := newProdutoFixture()
	pai := seedProdutoCalculado(f.produtos, "Conjunto", dec("0"))
	filho := seedProdutoSimples(f.produtos, "Peca", dec("5"))

	resp, err := f.svc.CriarDependencia(context.Background(), pai.ID, dto.CriarDependenciaRequest{
		ProdutoFilhoID: filho.ID.String(),
		Quantidade:     dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Peca", resp.NomeFilho)
	assert.True(t, resp.Quantidade.Equal(dec("2")))
}

func TestCriarDependenciaAutoReferencia(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoCalculado(f.produtos, "A", dec("0"))

	_, err := f.svc.CriarDependencia(context.Background(), produto.ID, dto.CriarDependenciaRequest{
		ProdutoFilhoID: produto.ID.String(),
		Quantidade:     dec("1"),
	})
	assert.ErrorIs(t, err, ErrDependenciaCiclica)
}

// Adding an edge that would make the parent reachable from the child is
// rejected before the write — the graph never holds a cycle.
func TestCriarDependenciaFechandoCiclo(t *testing.T) {
	f := newProdutoFixture()
	a := seedProdutoCalculado(f.produtos, "A", dec("0"))
	b := seedProdutoCalculado(f.produtos, "B", dec("0"))
	c := seedProdutoCalculado(f.produtos, "C", dec("0"))
	seedDependencia(f.produtos, a, b, dec("1"))
	seedDependencia(f.produtos, b, c, dec("1"))

	// c -> a fecharia a -> b -> c -> a
	_, err := f.svc.CriarDependencia(context.Background(), c.ID, dto.CriarDependenciaRequest{
		ProdutoFilhoID: a.ID.String(),
		Quantidade:     dec("1"),
	})
	assert.ErrorIs(t, err, ErrDependenciaCiclica)
}

func TestCriarDependenciaDuplicada(t *testing.T) {
	f := newProdutoFixture()
	pai := seedProdutoCalculado(f.produtos, "Conjunto", dec("0"))
	filho := seedProdutoSimples(f.produtos, "Peca", dec("5"))
	seedDependencia(f.produtos, pai, filho, dec("1"))

	_, err := f.svc.CriarDependencia(context.Background(), pai.ID, dto.CriarDependenciaRequest{
		ProdutoFilhoID: filho.ID.String(),
		Quantidade:     dec("3"),
	})
	assert.ErrorIs(t, err, ErrDependenciaDuplicada)
}

// A price change on a leaf invalidates the cached cost of every ancestor
// that consumes it, however many levels up.
func TestAtualizarPrecoInvalidaAncestrais(t *testing.T) {
	f := newProdutoFixture()
	avo := seedProdutoCalculado(f.produtos, "Maquina", dec("0"))
	pai := seedProdutoCalculado(f.produtos, "Modulo", dec("0"))
	folha := seedProdutoSimples(f.produtos, "Chapa", dec("10"))
	seedDependencia(f.produtos, avo, pai, dec("1"))
	seedDependencia(f.produtos, pai, folha, dec("2"))

	agora := time.Now()
	for _, p := range []*model.Produto{avo, pai, folha} {
		p.CustosCalculadosEm = &agora
	}

	novoPreco := dec("12")
	_, err := f.svc.Atualizar(context.Background(), folha.ID, dto.AtualizarProdutoRequest{PrecoUnitario: &novoPreco})
	require.NoError(t, err)

	assert.Nil(t, f.produtos.produtos[folha.ID].CustosCalculadosEm)
	assert.Nil(t, f.produtos.produtos[pai.ID].CustosCalculadosEm)
	assert.Nil(t, f.produtos.produtos[avo.ID].CustosCalculadosEm)
}

// Changes that do not touch the cost formula leave the cache alone.
func TestAtualizarNomeNaoInvalida(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoSimples(f.produtos, "Chapa", dec("10"))
	agora := time.Now()
	produto.CustosCalculadosEm = &agora

	nome := "Chapa galvanizada"
	_, err := f.svc.Atualizar(context.Background(), produto.ID, dto.AtualizarProdutoRequest{Nome: &nome})
	require.NoError(t, err)
	assert.NotNil(t, f.produtos.produtos[produto.ID].CustosCalculadosEm)
}

func TestVincularProcessoInvalidaCusto(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoCalculado(f.produtos, "Suporte", dec("0"))
	agora := time.Now()
	produto.CustosCalculadosEm = &agora

	corte := &model.Processo{Nome: "Corte", PrecoPorUnidade: dec("6"), Ativo: true}
	require.NoError(t, f.processos.Create(context.Background(), corte))

	resp, err := f.svc.VincularProcesso(context.Background(), produto.ID, dto.VincularProcessoRequest{
		ProcessoID: corte.ID.String(),
		Quantidade: dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Corte", resp.NomeProcesso)
	assert.Nil(t, f.produtos.produtos[produto.ID].CustosCalculadosEm)
}

func TestVincularProcessoInexistente(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoCalculado(f.produtos, "Suporte", dec("0"))

	_, err := f.svc.VincularProcesso(context.Background(), produto.ID, dto.VincularProcessoRequest{
		ProcessoID: uuid.New().String(),
		Quantidade: dec("1"),
	})
	assert.ErrorIs(t, err, ErrProcessoNaoEncontrado)
}

func TestVincularMaoDeObra(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoCalculado(f.produtos, "Suporte", dec("0"))

	soldador := &model.MaoDeObra{Tipo: "Soldador", PrecoPorHora: dec("20"), Ativo: true}
	require.NoError(t, f.maoDeObra.Create(context.Background(), soldador))

	resp, err := f.svc.VincularMaoDeObra(context.Background(), produto.ID, dto.VincularMaoDeObraRequest{
		MaoDeObraID: soldador.ID.String(),
		Horas:       dec("1.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Soldador", resp.TipoMaoDeObra)
	assert.True(t, resp.Horas.Equal(dec("1.5")))
}

func TestAjustarEstoque(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoSimples(f.produtos, "Parafuso", dec("1"))
	produto.Estoque = 10

	resp, err := f.svc.AjustarEstoque(context.Background(), produto.ID, dto.AjustarEstoqueRequest{
		Delta: -4, Motivo: "consumo em producao",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Estoque)

	movs, err := f.svc.Movimentacoes(context.Background(), produto.ID, 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "ajuste_manual", movs[0].Tipo)
	assert.Equal(t, 10, movs[0].EstoqueAnterior)
	assert.Equal(t, 6, movs[0].EstoqueNovo)
}

func TestAjustarEstoqueInsuficiente(t *testing.T) {
	f := newProdutoFixture()
	produto := seedProdutoSimples(f.produtos, "Parafuso", dec("1"))
	produto.Estoque = 3

	_, err := f.svc.AjustarEstoque(context.Background(), produto.ID, dto.AjustarEstoqueRequest{
		Delta: -5, Motivo: "baixa",
	})
	assert.ErrorIs(t, err, ErrEstoqueInsuficiente)
	assert.Equal(t, 3, f.produtos.produtos[produto.ID].Estoque)
	assert.Empty(t, f.movimentacoes.movimentacoes)
}

func TestDesativarProdutoInvalidaCusto(t *testing.T) {
	f := newProdutoFixture()
	pai := seedProdutoCalculado(f.produtos, "Conjunto", dec("0"))
	filho := seedProdutoSimples(f.produtos, "Peca", dec("5"))
	seedDependencia(f.produtos, pai, filho, dec("1"))

	agora := time.Now()
	pai.CustosCalculadosEm = &agora

	require.NoError(t, f.svc.Desativar(context.Background(), filho.ID))
	assert.False(t, f.produtos.produtos[filho.ID].Ativo)
	assert.Nil(t, f.produtos.produtos[pai.ID].CustosCalculadosEm)
}
