package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"orcamento/internal/dto"
	"orcamento/internal/model"
	"orcamento/internal/repository"
	"orcamento/internal/worker"
)

var (
	// ErrEstoqueInsuficiente is returned when an adjustment would leave
	// negative stock.
	ErrEstoqueInsuficiente  = errors.New("estoque insuficiente")
	ErrDependenciaDuplicada = errors.New("dependencia ja existe")
)

// ProdutoService manages the product catalog and the BOM graph. Every
// structural change (edges, processes, labor, unit price) invalidates the
// cached cost of the product and of every ancestor that consumes it, then
// enqueues async recomputation.
type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error

	CriarDependencia(ctx context.Context, paiID uuid.UUID, req dto.CriarDependenciaRequest) (*dto.DependenciaResponse, error)
	ListarDependencias(ctx context.Context, paiID uuid.UUID) ([]dto.DependenciaResponse, error)
	AtualizarDependencia(ctx context.Context, paiID, depID uuid.UUID, req dto.AtualizarDependenciaRequest) (*dto.DependenciaResponse, error)
	RemoverDependencia(ctx context.Context, paiID, depID uuid.UUID) error

	VincularProcesso(ctx context.Context, produtoID uuid.UUID, req dto.VincularProcessoRequest) (*dto.ProdutoProcessoResponse, error)
	ListarProcessos(ctx context.Context, produtoID uuid.UUID) ([]dto.ProdutoProcessoResponse, error)
	DesvincularProcesso(ctx context.Context, produtoID, vinculoID uuid.UUID) error

	VincularMaoDeObra(ctx context.Context, produtoID uuid.UUID, req dto.VincularMaoDeObraRequest) (*dto.ProdutoMaoDeObraResponse, error)
	ListarMaoDeObra(ctx context.Context, produtoID uuid.UUID) ([]dto.ProdutoMaoDeObraResponse, error)
	DesvincularMaoDeObra(ctx context.Context, produtoID, vinculoID uuid.UUID) error

	AjustarEstoque(ctx context.Context, id uuid.UUID, req dto.AjustarEstoqueRequest) (*dto.ProdutoResponse, error)
	Movimentacoes(ctx context.Context, id uuid.UUID, limit int) ([]model.MovimentacaoEstoque, error)
}

type produtoService struct {
	produtos      repository.ProdutoRepository
	processos     repository.ProcessoRepository
	maoDeObra     repository.MaoDeObraRepository
	movimentacoes repository.MovimentacaoEstoqueRepository
	custos        CustoService
	dispatcher    *worker.Dispatcher
}

func NewProdutoService(
	produtos repository.ProdutoRepository,
	processos repository.ProcessoRepository,
	maoDeObra repository.MaoDeObraRepository,
	movimentacoes repository.MovimentacaoEstoqueRepository,
	custos CustoService,
	dispatcher *worker.Dispatcher,
) ProdutoService {
	return &produtoService{
		produtos:      produtos,
		processos:     processos,
		maoDeObra:     maoDeObra,
		movimentacoes: movimentacoes,
		custos:        custos,
		dispatcher:    dispatcher,
	}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	produto := &model.Produto{
		Nome:           req.Nome,
		Descricao:      req.Descricao,
		PrecoUnitario:  req.PrecoUnitario,
		Estoque:        req.Estoque,
		EhMateriaPrima: req.EhMateriaPrima,
		Tipo:           req.Tipo,
		Ativo:          true,
	}
	if req.MargemLucroPct != nil {
		produto.MargemLucroPct = *req.MargemLucroPct
	}
	if err := s.produtos.Create(ctx, produto); err != nil {
		return nil, err
	}
	return produtoToResponse(produto), nil
}

func (s *produtoService) Buscar(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	produto, err := s.buscarProduto(ctx, id)
	if err != nil {
		return nil, err
	}
	return produtoToResponse(produto), nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	produtos, total, err := s.produtos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		data = append(data, *produtoToResponse(&produtos[i]))
	}
	return &dto.ProdutoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	produto, err := s.buscarProduto(ctx, id)
	if err != nil {
		return nil, err
	}

	custoMudou := false
	if req.Nome != nil {
		produto.Nome = *req.Nome
	}
	if req.Descricao != nil {
		produto.Descricao = req.Descricao
	}
	if req.PrecoUnitario != nil && !req.PrecoUnitario.Equal(produto.PrecoUnitario) {
		produto.PrecoUnitario = *req.PrecoUnitario
		custoMudou = true
	}
	if req.EhMateriaPrima != nil {
		produto.EhMateriaPrima = *req.EhMateriaPrima
	}
	if req.Tipo != nil && *req.Tipo != produto.Tipo {
		produto.Tipo = *req.Tipo
		custoMudou = true
	}
	if req.MargemLucroPct != nil {
		produto.MargemLucroPct = *req.MargemLucroPct
	}

	if err := s.produtos.Update(ctx, produto); err != nil {
		return nil, err
	}
	if custoMudou {
		s.invalidarCadeia(ctx, id, "preco_unitario alterado")
	}
	return produtoToResponse(produto), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buscarProduto(ctx, id); err != nil {
		return err
	}
	if err := s.produtos.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarCadeia(ctx, id, "produto desativado")
	return nil
}

// ─── BOM edges ───────────────────────────────────────────────────────────────

func (s *produtoService) CriarDependencia(ctx context.Context, paiID uuid.UUID, req dto.CriarDependenciaRequest) (*dto.DependenciaResponse, error) {
	filhoID, err := uuid.Parse(req.ProdutoFilhoID)
	if err != nil {
		return nil, ErrProdutoNaoEncontrado
	}
	if paiID == filhoID {
		return nil, fmt.Errorf("%w: produto depende de si mesmo", ErrDependenciaCiclica)
	}
	if _, err := s.buscarProduto(ctx, paiID); err != nil {
		return nil, err
	}
	filho, err := s.buscarProduto(ctx, filhoID)
	if err != nil {
		return nil, err
	}

	// Reject the edge before writing it: if pai is reachable from filho by
	// descending the BOM, adding pai -> filho would close a cycle.
	if err := s.verificarCiclo(ctx, filhoID, paiID); err != nil {
		return nil, err
	}

	existentes, err := s.produtos.ListDependencias(ctx, paiID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	for _, dep := range existentes {
		if dep.ProdutoFilhoID == filhoID {
			return nil, ErrDependenciaDuplicada
		}
	}

	dep := &model.DependenciaProduto{
		ProdutoPaiID:   paiID,
		ProdutoFilhoID: filhoID,
		Quantidade:     req.Quantidade,
	}
	if err := s.produtos.CreateDependencia(ctx, dep); err != nil {
		return nil, err
	}
	s.invalidarCadeia(ctx, paiID, "dependencia adicionada")

	return &dto.DependenciaResponse{
		ID:             dep.ID.String(),
		ProdutoPaiID:   paiID.String(),
		ProdutoFilhoID: filhoID.String(),
		NomeFilho:      filho.Nome,
		Quantidade:     dep.Quantidade,
	}, nil
}

func (s *produtoService) ListarDependencias(ctx context.Context, paiID uuid.UUID) ([]dto.DependenciaResponse, error) {
	if _, err := s.buscarProduto(ctx, paiID); err != nil {
		return nil, err
	}
	deps, err := s.produtos.ListDependencias(ctx, paiID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DependenciaResponse, 0, len(deps))
	for _, dep := range deps {
		resp := dto.DependenciaResponse{
			ID:             dep.ID.String(),
			ProdutoPaiID:   dep.ProdutoPaiID.String(),
			ProdutoFilhoID: dep.ProdutoFilhoID.String(),
			Quantidade:     dep.Quantidade,
		}
		if dep.Filho != nil {
			resp.NomeFilho = dep.Filho.Nome
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *produtoService) AtualizarDependencia(ctx context.Context, paiID, depID uuid.UUID, req dto.AtualizarDependenciaRequest) (*dto.DependenciaResponse, error) {
	dep, err := s.buscarDependencia(ctx, paiID, depID)
	if err != nil {
		return nil, err
	}
	dep.Quantidade = req.Quantidade
	if err := s.produtos.UpdateDependencia(ctx, dep); err != nil {
		return nil, err
	}
	s.invalidarCadeia(ctx, paiID, "quantidade de dependencia alterada")

	resp := &dto.DependenciaResponse{
		ID:             dep.ID.String(),
		ProdutoPaiID:   dep.ProdutoPaiID.String(),
		ProdutoFilhoID: dep.ProdutoFilhoID.String(),
		Quantidade:     dep.Quantidade,
	}
	if dep.Filho != nil {
		resp.NomeFilho = dep.Filho.Nome
	}
	return resp, nil
}

func (s *produtoService) RemoverDependencia(ctx context.Context, paiID, depID uuid.UUID) error {
	if _, err := s.buscarDependencia(ctx, paiID, depID); err != nil {
		return err
	}
	if err := s.produtos.DeleteDependencia(ctx, depID); err != nil {
		return err
	}
	s.invalidarCadeia(ctx, paiID, "dependencia removida")
	return nil
}

// ─── Processos / mão de obra ─────────────────────────────────────────────────

func (s *produtoService) VincularProcesso(ctx context.Context, produtoID uuid.UUID, req dto.VincularProcessoRequest) (*dto.ProdutoProcessoResponse, error) {
	if _, err := s.buscarProduto(ctx, produtoID); err != nil {
		return nil, err
	}
	processoID, err := uuid.Parse(req.ProcessoID)
	if err != nil {
		return nil, ErrProcessoNaoEncontrado
	}
	processo, err := s.processos.FindByID(ctx, processoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}

	vinculo := &model.ProdutoProcesso{
		ProdutoID:  produtoID,
		ProcessoID: processoID,
		Quantidade: req.Quantidade,
	}
	if err := s.produtos.CreateProdutoProcesso(ctx, vinculo); err != nil {
		return nil, err
	}
	s.invalidarCadeia(ctx, produtoID, "processo vinculado")

	return &dto.ProdutoProcessoResponse{
		ID:              vinculo.ID.String(),
		ProcessoID:      processoID.String(),
		NomeProcesso:    processo.Nome,
		PrecoPorUnidade: processo.PrecoPorUnidade,
		Quantidade:      vinculo.Quantidade,
	}, nil
}

func (s *produtoService) ListarProcessos(ctx context.Context, produtoID uuid.UUID) ([]dto.ProdutoProcessoResponse, error) {
	if _, err := s.buscarProduto(ctx, produtoID); err != nil {
		return nil, err
	}
	vinculos, err := s.produtos.ListProcessos(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProdutoProcessoResponse, 0, len(vinculos))
	for _, v := range vinculos {
		resp := dto.ProdutoProcessoResponse{
			ID:         v.ID.String(),
			ProcessoID: v.ProcessoID.String(),
			Quantidade: v.Quantidade,
		}
		if v.Processo != nil {
			resp.NomeProcesso = v.Processo.Nome
			resp.PrecoPorUnidade = v.Processo.PrecoPorUnidade
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *produtoService) DesvincularProcesso(ctx context.Context, produtoID, vinculoID uuid.UUID) error {
	if _, err := s.buscarProduto(ctx, produtoID); err != nil {
		return err
	}
	if err := s.produtos.DeleteProdutoProcesso(ctx, vinculoID); err != nil {
		return err
	}
	s.invalidarCadeia(ctx, produtoID, "processo desvinculado")
	return nil
}

func (s *produtoService) VincularMaoDeObra(ctx context.Context, produtoID uuid.UUID, req dto.VincularMaoDeObraRequest) (*dto.ProdutoMaoDeObraResponse, error) {
	if _, err := s.buscarProduto(ctx, produtoID); err != nil {
		return nil, err
	}
	maoDeObraID, err := uuid.Parse(req.MaoDeObraID)
	if err != nil {
		return nil, ErrMaoDeObraNaoEncontrada
	}
	mao, err := s.maoDeObra.FindByID(ctx, maoDeObraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaoDeObraNaoEncontrada
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}

	vinculo := &model.ProdutoMaoDeObra{
		ProdutoID:   produtoID,
		MaoDeObraID: maoDeObraID,
		Horas:       req.Horas,
	}
	if err := s.produtos.CreateProdutoMaoDeObra(ctx, vinculo); err != nil {
		return nil, err
	}
	s.invalidarCadeia(ctx, produtoID, "mao de obra vinculada")

	return &dto.ProdutoMaoDeObraResponse{
		ID:            vinculo.ID.String(),
		MaoDeObraID:   maoDeObraID.String(),
		TipoMaoDeObra: mao.Tipo,
		PrecoPorHora:  mao.PrecoPorHora,
		Horas:         vinculo.Horas,
	}, nil
}

func (s *produtoService) ListarMaoDeObra(ctx context.Context, produtoID uuid.UUID) ([]dto.ProdutoMaoDeObraResponse, error) {
	if _, err := s.buscarProduto(ctx, produtoID); err != nil {
		return nil, err
	}
	vinculos, err := s.produtos.ListMaoDeObra(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProdutoMaoDeObraResponse, 0, len(vinculos))
	for _, v := range vinculos {
		resp := dto.ProdutoMaoDeObraResponse{
			ID:          v.ID.String(),
			MaoDeObraID: v.MaoDeObraID.String(),
			Horas:       v.Horas,
		}
		if v.MaoDeObra != nil {
			resp.TipoMaoDeObra = v.MaoDeObra.Tipo
			resp.PrecoPorHora = v.MaoDeObra.PrecoPorHora
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *produtoService) DesvincularMaoDeObra(ctx context.Context, produtoID, vinculoID uuid.UUID) error {
	if _, err := s.buscarProduto(ctx, produtoID); err != nil {
		return err
	}
	if err := s.produtos.DeleteProdutoMaoDeObra(ctx, vinculoID); err != nil {
		return err
	}
	s.invalidarCadeia(ctx, produtoID, "mao de obra desvinculada")
	return nil
}

// ─── Estoque ─────────────────────────────────────────────────────────────────

func (s *produtoService) AjustarEstoque(ctx context.Context, id uuid.UUID, req dto.AjustarEstoqueRequest) (*dto.ProdutoResponse, error) {
	produto, err := s.buscarProduto(ctx, id)
	if err != nil {
		return nil, err
	}

	// Snapshot before the write — produto may alias a cached entity whose
	// Estoque the repository mutates in place.
	anterior := produto.Estoque
	novo := anterior + req.Delta
	if novo < 0 {
		return nil, fmt.Errorf("%w: estoque %d, ajuste %d", ErrEstoqueInsuficiente, anterior, req.Delta)
	}
	if err := s.produtos.AjustarEstoque(ctx, id, req.Delta); err != nil {
		return nil, err
	}

	mov := &model.MovimentacaoEstoque{
		ProdutoID:       id,
		Tipo:            "ajuste_manual",
		Quantidade:      req.Delta,
		EstoqueAnterior: anterior,
		EstoqueNovo:     novo,
		Motivo:          req.Motivo,
	}
	if err := s.movimentacoes.Create(ctx, mov); err != nil {
		log.Error().Str("produto_id", id.String()).Err(err).Msg("failed to record stock movement")
	}

	produto.Estoque = novo
	return produtoToResponse(produto), nil
}

func (s *produtoService) Movimentacoes(ctx context.Context, id uuid.UUID, limit int) ([]model.MovimentacaoEstoque, error) {
	if _, err := s.buscarProduto(ctx, id); err != nil {
		return nil, err
	}
	return s.movimentacoes.ListByProduto(ctx, id, limit)
}

// ─── internals ───────────────────────────────────────────────────────────────

func (s *produtoService) buscarProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	produto, err := s.produtos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	return produto, nil
}

func (s *produtoService) buscarDependencia(ctx context.Context, paiID, depID uuid.UUID) (*model.DependenciaProduto, error) {
	dep, err := s.produtos.FindDependenciaByID(ctx, depID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	if dep.ProdutoPaiID != paiID {
		return nil, ErrProdutoNaoEncontrado
	}
	return dep, nil
}

// verificarCiclo descends the BOM from origem looking for alvo. Finding it
// means the new edge alvo -> origem would close a cycle.
func (s *produtoService) verificarCiclo(ctx context.Context, origem, alvo uuid.UUID) error {
	visitados := map[uuid.UUID]bool{origem: true}
	fila := []uuid.UUID{origem}
	for len(fila) > 0 {
		atual := fila[0]
		fila = fila[1:]

		deps, err := s.produtos.ListDependencias(ctx, atual)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
		}
		for _, dep := range deps {
			if dep.ProdutoFilhoID == alvo {
				return fmt.Errorf("%w: %s alcançável a partir de %s", ErrDependenciaCiclica, alvo, origem)
			}
			if !visitados[dep.ProdutoFilhoID] {
				visitados[dep.ProdutoFilhoID] = true
				fila = append(fila, dep.ProdutoFilhoID)
			}
		}
	}
	return nil
}

// invalidarCadeia marks the product's cached cost stale, climbs the BOM to
// every ancestor that consumes it (directly or not) and invalidates those
// too, then enqueues async recomputation for each. Invalidation failures
// are logged, not fatal — the nil CustosCalculadosEm check catches stragglers.
func (s *produtoService) invalidarCadeia(ctx context.Context, id uuid.UUID, motivo string) {
	afetados := []uuid.UUID{id}
	visitados := map[uuid.UUID]bool{id: true}
	fila := []uuid.UUID{id}
	for len(fila) > 0 {
		atual := fila[0]
		fila = fila[1:]

		arestas, err := s.produtos.ListDependenciasPorFilho(ctx, atual)
		if err != nil {
			log.Error().Str("produto_id", atual.String()).Err(err).Msg("failed to walk BOM ancestors")
			break
		}
		for _, aresta := range arestas {
			if visitados[aresta.ProdutoPaiID] {
				continue
			}
			visitados[aresta.ProdutoPaiID] = true
			afetados = append(afetados, aresta.ProdutoPaiID)
			fila = append(fila, aresta.ProdutoPaiID)
		}
	}

	for _, produtoID := range afetados {
		if err := s.custos.InvalidarCusto(ctx, produtoID); err != nil {
			log.Error().Str("produto_id", produtoID.String()).Err(err).Msg("failed to invalidate cost cache")
		}
		if s.dispatcher == nil {
			continue
		}
		payload := worker.RecalculoPayload{ProdutoID: produtoID, Motivo: motivo}
		if err := s.dispatcher.EnqueueRecalculo(ctx, payload); err != nil {
			log.Error().Str("produto_id", produtoID.String()).Err(err).Msg("failed to enqueue cost recomputation")
		}
	}
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	return &dto.ProdutoResponse{
		ID:                 p.ID.String(),
		Nome:               p.Nome,
		Descricao:          p.Descricao,
		PrecoUnitario:      p.PrecoUnitario,
		Estoque:            p.Estoque,
		EhMateriaPrima:     p.EhMateriaPrima,
		Tipo:               p.Tipo,
		MargemLucroPct:     p.MargemLucroPct,
		Ativo:              p.Ativo,
		CustoTotal:         p.CustoTotal,
		CustoMateriais:     p.CustoMateriais,
		CustoProcessos:     p.CustoProcessos,
		CustoMaoDeObra:     p.CustoMaoDeObra,
		CustosCalculadosEm: p.CustosCalculadosEm,
	}
}
