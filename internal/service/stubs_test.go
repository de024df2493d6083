package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orcamento/internal/dto"
	"orcamento/internal/model"
	"orcamento/internal/repository"
)

// ── In-memory ProdutoRepository stub ─────────────────────────────────────────

type stubProdutoRepo struct {
	produtos  map[uuid.UUID]*model.Produto
	deps      map[uuid.UUID]*model.DependenciaProduto
	processos map[uuid.UUID]*model.ProdutoProcesso
	maos      map[uuid.UUID]*model.ProdutoMaoDeObra
}

func newStubProdutoRepo() *stubProdutoRepo {
	return &stubProdutoRepo{
		produtos:  make(map[uuid.UUID]*model.Produto),
		deps:      make(map[uuid.UUID]*model.DependenciaProduto),
		processos: make(map[uuid.UUID]*model.ProdutoProcesso),
		maos:      make(map[uuid.UUID]*model.ProdutoMaoDeObra),
	}
}

func (r *stubProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.produtos[p.ID] = p
	return nil
}

func (r *stubProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProdutoRepo) List(_ context.Context, _ dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var result []model.Produto
	for _, p := range r.produtos {
		if p.Ativo {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubProdutoRepo) Update(_ context.Context, p *model.Produto) error {
	r.produtos[p.ID] = p
	return nil
}

func (r *stubProdutoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Ativo = false
	return nil
}

func (r *stubProdutoRepo) CreateDependencia(_ context.Context, d *model.DependenciaProduto) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.deps[d.ID] = d
	return nil
}

func (r *stubProdutoRepo) FindDependenciaByID(_ context.Context, id uuid.UUID) (*model.DependenciaProduto, error) {
	d, ok := r.deps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubProdutoRepo) ListDependencias(_ context.Context, paiID uuid.UUID) ([]model.DependenciaProduto, error) {
	var result []model.DependenciaProduto
	for _, d := range r.deps {
		if d.ProdutoPaiID == paiID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (r *stubProdutoRepo) ListDependenciasPorFilho(_ context.Context, filhoID uuid.UUID) ([]model.DependenciaProduto, error) {
	var result []model.DependenciaProduto
	for _, d := range r.deps {
		if d.ProdutoFilhoID == filhoID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (r *stubProdutoRepo) UpdateDependencia(_ context.Context, d *model.DependenciaProduto) error {
	r.deps[d.ID] = d
	return nil
}

func (r *stubProdutoRepo) DeleteDependencia(_ context.Context, id uuid.UUID) error {
	delete(r.deps, id)
	return nil
}

func (r *stubProdutoRepo) CreateProdutoProcesso(_ context.Context, pp *model.ProdutoProcesso) error {
	if pp.ID == uuid.Nil {
		pp.ID = uuid.New()
	}
	r.processos[pp.ID] = pp
	return nil
}

func (r *stubProdutoRepo) ListProcessos(_ context.Context, produtoID uuid.UUID) ([]model.ProdutoProcesso, error) {
	var result []model.ProdutoProcesso
	for _, pp := range r.processos {
		if pp.ProdutoID == produtoID {
			result = append(result, *pp)
		}
	}
	return result, nil
}

func (r *stubProdutoRepo) DeleteProdutoProcesso(_ context.Context, id uuid.UUID) error {
	delete(r.processos, id)
	return nil
}

func (r *stubProdutoRepo) CreateProdutoMaoDeObra(_ context.Context, pm *model.ProdutoMaoDeObra) error {
	if pm.ID == uuid.Nil {
		pm.ID = uuid.New()
	}
	r.maos[pm.ID] = pm
	return nil
}

func (r *stubProdutoRepo) ListMaoDeObra(_ context.Context, produtoID uuid.UUID) ([]model.ProdutoMaoDeObra, error) {
	var result []model.ProdutoMaoDeObra
	for _, pm := range r.maos {
		if pm.ProdutoID == produtoID {
			result = append(result, *pm)
		}
	}
	return result, nil
}

func (r *stubProdutoRepo) DeleteProdutoMaoDeObra(_ context.Context, id uuid.UUID) error {
	delete(r.maos, id)
	return nil
}

func (r *stubProdutoRepo) ListProdutoIDsPorProcesso(_ context.Context, processoID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, pp := range r.processos {
		if pp.ProcessoID == processoID {
			ids = append(ids, pp.ProdutoID)
		}
	}
	return ids, nil
}

func (r *stubProdutoRepo) ListProdutoIDsPorMaoDeObra(_ context.Context, maoDeObraID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, pm := range r.maos {
		if pm.MaoDeObraID == maoDeObraID {
			ids = append(ids, pm.ProdutoID)
		}
	}
	return ids, nil
}

func (r *stubProdutoRepo) PersistCusto(_ context.Context, id uuid.UUID, total, materiais, processos, maoDeObra decimal.Decimal, quando time.Time) error {
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CustoTotal = total
	p.CustoMateriais = materiais
	p.CustoProcessos = processos
	p.CustoMaoDeObra = maoDeObra
	p.CustosCalculadosEm = &quando
	return nil
}

func (r *stubProdutoRepo) InvalidateCusto(_ context.Context, id uuid.UUID) error {
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CustosCalculadosEm = nil
	return nil
}

func (r *stubProdutoRepo) AjustarEstoque(_ context.Context, id uuid.UUID, delta int) error {
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estoque += delta
	return nil
}

func (r *stubProdutoRepo) DB() *gorm.DB { return nil }

var _ repository.ProdutoRepository = (*stubProdutoRepo)(nil)

// ── In-memory HistoricoCustoRepository stub ──────────────────────────────────

type stubHistoricoRepo struct {
	entradas []model.HistoricoCusto
}

func (r *stubHistoricoRepo) Create(_ context.Context, h *model.HistoricoCusto) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now()
	r.entradas = append(r.entradas, *h)
	return nil
}

func (r *stubHistoricoRepo) ListByProduto(_ context.Context, produtoID uuid.UUID, limit int) ([]model.HistoricoCusto, error) {
	var result []model.HistoricoCusto
	for _, h := range r.entradas {
		if h.ProdutoID == produtoID {
			result = append(result, h)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ repository.HistoricoCustoRepository = (*stubHistoricoRepo)(nil)

// ── In-memory PedidoRepository stub ──────────────────────────────────────────

type stubPedidoRepo struct {
	pedidos  map[uuid.UUID]*model.Pedido
	itens    map[uuid.UUID]*model.ItemExtraPedido
	impostos map[uuid.UUID]*model.ImpostoPedido
}

func newStubPedidoRepo() *stubPedidoRepo {
	return &stubPedidoRepo{
		pedidos:  make(map[uuid.UUID]*model.Pedido),
		itens:    make(map[uuid.UUID]*model.ItemExtraPedido),
		impostos: make(map[uuid.UUID]*model.ImpostoPedido),
	}
}

func (r *stubPedidoRepo) Create(_ context.Context, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pedidos[p.ID] = p
	return nil
}

// FindByID mirrors the GORM preloads: child rows come back ordered by ordem.
func (r *stubPedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	copia.ItensExtras = nil
	copia.Impostos = nil
	for _, item := range r.itens {
		if item.PedidoID == id {
			copia.ItensExtras = append(copia.ItensExtras, *item)
		}
	}
	for _, imp := range r.impostos {
		if imp.PedidoID == id {
			copia.Impostos = append(copia.Impostos, *imp)
		}
	}
	sort.Slice(copia.ItensExtras, func(i, j int) bool { return copia.ItensExtras[i].Ordem < copia.ItensExtras[j].Ordem })
	sort.Slice(copia.Impostos, func(i, j int) bool { return copia.Impostos[i].Ordem < copia.Impostos[j].Ordem })
	return &copia, nil
}

func (r *stubPedidoRepo) List(_ context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var result []model.Pedido
	for _, p := range r.pedidos {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *stubPedidoRepo) Update(_ context.Context, p *model.Pedido) error {
	r.pedidos[p.ID] = p
	return nil
}

func (r *stubPedidoRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *stubPedidoRepo) AddItemExtra(_ context.Context, item *model.ItemExtraPedido) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	max := 0
	for _, existente := range r.itens {
		if existente.PedidoID == item.PedidoID && existente.Ordem > max {
			max = existente.Ordem
		}
	}
	item.Ordem = max + 1
	r.itens[item.ID] = item
	return nil
}

func (r *stubPedidoRepo) DeleteItemExtra(_ context.Context, pedidoID, itemID uuid.UUID) error {
	delete(r.itens, itemID)
	return nil
}

func (r *stubPedidoRepo) AddImposto(_ context.Context, imposto *model.ImpostoPedido) error {
	if imposto.ID == uuid.Nil {
		imposto.ID = uuid.New()
	}
	max := 0
	for _, existente := range r.impostos {
		if existente.PedidoID == imposto.PedidoID && existente.Ordem > max {
			max = existente.Ordem
		}
	}
	imposto.Ordem = max + 1
	r.impostos[imposto.ID] = imposto
	return nil
}

func (r *stubPedidoRepo) DeleteImposto(_ context.Context, pedidoID, impostoID uuid.UUID) error {
	delete(r.impostos, impostoID)
	return nil
}

func (r *stubPedidoRepo) ListImpostos(_ context.Context, pedidoID uuid.UUID) ([]model.ImpostoPedido, error) {
	var result []model.ImpostoPedido
	for _, imp := range r.impostos {
		if imp.PedidoID == pedidoID {
			result = append(result, *imp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ordem < result[j].Ordem })
	return result, nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

// ── In-memory ClienteRepository stub ─────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var result []model.Cliente
	for _, c := range r.clientes {
		if c.Ativo {
			result = append(result, *c)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.clientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Ativo = false
	return nil
}

func (r *stubClienteRepo) ListVencidos(_ context.Context, ref time.Time, limit int) ([]model.Cliente, error) {
	var result []model.Cliente
	for _, c := range r.clientes {
		if c.StatusOrcamento == model.StatusClienteAberto && c.PrazoCancelamento.Before(ref) {
			result = append(result, *c)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *stubClienteRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	c, ok := r.clientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.StatusOrcamento = status
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// ── Catalog side stubs ───────────────────────────────────────────────────────

type stubProcessoRepo struct {
	processos map[uuid.UUID]*model.Processo
}

func newStubProcessoRepo() *stubProcessoRepo {
	return &stubProcessoRepo{processos: make(map[uuid.UUID]*model.Processo)}
}

func (r *stubProcessoRepo) Create(_ context.Context, p *model.Processo) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.processos[p.ID] = p
	return nil
}

func (r *stubProcessoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Processo, error) {
	p, ok := r.processos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProcessoRepo) List(_ context.Context) ([]model.Processo, error) {
	var result []model.Processo
	for _, p := range r.processos {
		if p.Ativo {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProcessoRepo) Update(_ context.Context, p *model.Processo) error {
	r.processos[p.ID] = p
	return nil
}

func (r *stubProcessoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.processos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Ativo = false
	return nil
}

var _ repository.ProcessoRepository = (*stubProcessoRepo)(nil)

type stubMaoDeObraRepo struct {
	maos map[uuid.UUID]*model.MaoDeObra
}

func newStubMaoDeObraRepo() *stubMaoDeObraRepo {
	return &stubMaoDeObraRepo{maos: make(map[uuid.UUID]*model.MaoDeObra)}
}

func (r *stubMaoDeObraRepo) Create(_ context.Context, m *model.MaoDeObra) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.maos[m.ID] = m
	return nil
}

func (r *stubMaoDeObraRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MaoDeObra, error) {
	m, ok := r.maos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMaoDeObraRepo) List(_ context.Context) ([]model.MaoDeObra, error) {
	var result []model.MaoDeObra
	for _, m := range r.maos {
		if m.Ativo {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *stubMaoDeObraRepo) Update(_ context.Context, m *model.MaoDeObra) error {
	r.maos[m.ID] = m
	return nil
}

func (r *stubMaoDeObraRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	m, ok := r.maos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Ativo = false
	return nil
}

var _ repository.MaoDeObraRepository = (*stubMaoDeObraRepo)(nil)

type stubMovimentacaoRepo struct {
	movimentacoes []model.MovimentacaoEstoque
}

func (r *stubMovimentacaoRepo) Create(_ context.Context, m *model.MovimentacaoEstoque) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimentacoes = append(r.movimentacoes, *m)
	return nil
}

func (r *stubMovimentacaoRepo) ListByProduto(_ context.Context, produtoID uuid.UUID, limit int) ([]model.MovimentacaoEstoque, error) {
	var result []model.MovimentacaoEstoque
	for _, m := range r.movimentacoes {
		if m.ProdutoID == produtoID {
			result = append(result, m)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ repository.MovimentacaoEstoqueRepository = (*stubMovimentacaoRepo)(nil)

// ── Seed helpers ─────────────────────────────────────────────────────────────

func seedProdutoSimples(repo *stubProdutoRepo, nome string, preco decimal.Decimal) *model.Produto {
	p := &model.Produto{
		ID:            uuid.New(),
		Nome:          nome,
		PrecoUnitario: preco,
		Tipo:          model.TipoProdutoSimples,
		Ativo:         true,
	}
	repo.produtos[p.ID] = p
	return p
}

func seedProdutoCalculado(repo *stubProdutoRepo, nome string, margem decimal.Decimal) *model.Produto {
	p := &model.Produto{
		ID:             uuid.New(),
		Nome:           nome,
		Tipo:           model.TipoProdutoCalculado,
		MargemLucroPct: margem,
		Ativo:          true,
	}
	repo.produtos[p.ID] = p
	return p
}

func seedDependencia(repo *stubProdutoRepo, pai, filho *model.Produto, qtd decimal.Decimal) *model.DependenciaProduto {
	d := &model.DependenciaProduto{
		ID:             uuid.New(),
		ProdutoPaiID:   pai.ID,
		ProdutoFilhoID: filho.ID,
		Quantidade:     qtd,
	}
	repo.deps[d.ID] = d
	return d
}

func seedCliente(repo *stubClienteRepo, nome string, status string, prazo time.Time) *model.Cliente {
	c := &model.Cliente{
		ID:                uuid.New(),
		Nome:              nome,
		StatusOrcamento:   status,
		PrazoCancelamento: prazo,
		Ativo:             true,
	}
	repo.clientes[c.ID] = c
	return c
}

func farFuture() time.Time { return time.Now().Add(365 * 24 * time.Hour) }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
