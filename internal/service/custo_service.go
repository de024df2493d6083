package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orcamento/internal/dto"
	"orcamento/internal/model"
	"orcamento/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Typed errors of the cost pipeline. Handlers map each to a distinct HTTP
// status; callers distinguish "data unavailable" from "cyclic dependency"
// from "not found" via errors.Is.
var (
	ErrProdutoNaoEncontrado = errors.New("produto nao encontrado")
	ErrDependenciaCiclica   = errors.New("dependencia ciclica detectada")
	ErrFonteIndisponivel    = errors.New("fonte de dados indisponivel")
)

// CustoService resolves the base cost of a product by walking its BOM.
type CustoService interface {
	// CalcularCusto resolves the base cost. With fresh=false the persisted
	// cache may answer; fresh=true forces a full traversal.
	CalcularCusto(ctx context.Context, produtoID uuid.UUID, fresh bool) (*dto.DetalheCustoResponse, error)
	// RecalcularEPersistir forces a traversal, stores the figures on the
	// product row, and records an immutable history entry.
	RecalcularEPersistir(ctx context.Context, produtoID uuid.UUID, motivo string) (*dto.DetalheCustoResponse, error)
	// InvalidarCusto drops both the row cache timestamp and the redis hint.
	InvalidarCusto(ctx context.Context, produtoID uuid.UUID) error
	Historico(ctx context.Context, produtoID uuid.UUID, limit int) ([]model.HistoricoCusto, error)
}

type custoService struct {
	repo          repository.ProdutoRepository
	historicoRepo repository.HistoricoCustoRepository
	rdb           *redis.Client // nil in unit tests — redis is a hint layer only
	cacheTTL      time.Duration
}

func NewCustoService(repo repository.ProdutoRepository, historicoRepo repository.HistoricoCustoRepository, rdb *redis.Client, cacheTTL time.Duration) CustoService {
	return &custoService{repo: repo, historicoRepo: historicoRepo, rdb: rdb, cacheTTL: cacheTTL}
}

// detalheCusto carries the three subtotals through the recursion.
type detalheCusto struct {
	Total     decimal.Decimal `json:"total"`
	Materiais decimal.Decimal `json:"materiais"`
	Processos decimal.Decimal `json:"processos"`
	MaoDeObra decimal.Decimal `json:"mao_de_obra"`
}

func custoCacheKey(id uuid.UUID) string { return "custo:" + id.String() }

func (s *custoService) CalcularCusto(ctx context.Context, produtoID uuid.UUID, fresh bool) (*dto.DetalheCustoResponse, error) {
	if !fresh {
		if hit := s.lerCache(ctx, produtoID); hit != nil {
			return hit, nil
		}
	}

	det, err := s.resolver(ctx, produtoID, map[uuid.UUID]bool{})
	if err != nil {
		return nil, err
	}

	resp := &dto.DetalheCustoResponse{
		ProdutoID:      produtoID.String(),
		CustoTotal:     det.Total,
		CustoMateriais: det.Materiais,
		CustoProcessos: det.Processos,
		CustoMaoDeObra: det.MaoDeObra,
		CalculadoEm:    time.Now().UTC(),
	}
	s.gravarHint(ctx, produtoID, resp)
	return resp, nil
}

func (s *custoService) RecalcularEPersistir(ctx context.Context, produtoID uuid.UUID, motivo string) (*dto.DetalheCustoResponse, error) {
	resp, err := s.CalcularCusto(ctx, produtoID, true)
	if err != nil {
		return nil, err
	}

	// fetch → compute → store; the write only lands after the whole sequence
	// succeeded, so a concurrent recomputation simply wins by being last.
	if err := s.repo.PersistCusto(ctx, produtoID,
		resp.CustoTotal, resp.CustoMateriais, resp.CustoProcessos, resp.CustoMaoDeObra,
		resp.CalculadoEm); err != nil {
		return nil, fmt.Errorf("%w: persistir custo de %s: %v", ErrFonteIndisponivel, produtoID, err)
	}

	if motivo == "" {
		motivo = "recalculo"
	}
	hist := &model.HistoricoCusto{
		ProdutoID:      produtoID,
		CustoTotal:     resp.CustoTotal,
		CustoMateriais: resp.CustoMateriais,
		CustoProcessos: resp.CustoProcessos,
		CustoMaoDeObra: resp.CustoMaoDeObra,
		Motivo:         motivo,
	}
	if err := s.historicoRepo.Create(ctx, hist); err != nil {
		// History is an audit trail, not part of the computation — log and go on.
		log.Error().Err(err).Str("produto_id", produtoID.String()).Msg("custo: falha ao gravar historico")
	}

	return resp, nil
}

func (s *custoService) InvalidarCusto(ctx context.Context, produtoID uuid.UUID) error {
	if s.rdb != nil {
		_ = s.rdb.Del(ctx, custoCacheKey(produtoID)).Err()
	}
	return s.repo.InvalidateCusto(ctx, produtoID)
}

func (s *custoService) Historico(ctx context.Context, produtoID uuid.UUID, limit int) ([]model.HistoricoCusto, error) {
	return s.historicoRepo.ListByProduto(ctx, produtoID, limit)
}

// ── Resolution ───────────────────────────────────────────────────────────────

// resolver walks the BOM depth-first. caminho is the set of product ids on the
// CURRENT path; it is copied per branch so sibling subtrees never see each
// other's entries — a revisit on the same path means a cycle.
func (s *custoService) resolver(ctx context.Context, id uuid.UUID, caminho map[uuid.UUID]bool) (detalheCusto, error) {
	if caminho[id] {
		return detalheCusto{}, fmt.Errorf("%w: produto %s reaparece no caminho", ErrDependenciaCiclica, id)
	}

	produto, err := s.buscarProduto(ctx, id)
	if err != nil {
		return detalheCusto{}, err
	}

	// Simple product: direct unit price, no traversal.
	if produto.Tipo != model.TipoProdutoCalculado {
		return detalheCusto{
			Total:     produto.PrecoUnitario,
			Materiais: produto.PrecoUnitario,
			Processos: decimal.Zero,
			MaoDeObra: decimal.Zero,
		}, nil
	}

	proximo := make(map[uuid.UUID]bool, len(caminho)+1)
	for k := range caminho {
		proximo[k] = true
	}
	proximo[id] = true

	deps, err := s.repo.ListDependencias(ctx, id)
	if err != nil {
		return detalheCusto{}, fmt.Errorf("%w: dependencias de %s: %v", ErrFonteIndisponivel, id, err)
	}

	materiais := decimal.Zero
	for _, dep := range deps {
		filho, err := s.resolver(ctx, dep.ProdutoFilhoID, proximo)
		if err != nil {
			return detalheCusto{}, err
		}
		// Quantities are multiplicative along the path: the child's resolved
		// unit cost times the edge quantity.
		materiais = materiais.Add(filho.Total.Mul(dep.Quantidade))
	}

	processos, err := s.somarProcessos(ctx, id)
	if err != nil {
		return detalheCusto{}, err
	}
	maoDeObra, err := s.somarMaoDeObra(ctx, id)
	if err != nil {
		return detalheCusto{}, err
	}

	return detalheCusto{
		Total:     materiais.Add(processos).Add(maoDeObra),
		Materiais: materiais,
		Processos: processos,
		MaoDeObra: maoDeObra,
	}, nil
}

func (s *custoService) buscarProduto(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	produto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProdutoNaoEncontrado, id)
		}
		return nil, fmt.Errorf("%w: produto %s: %v", ErrFonteIndisponivel, id, err)
	}
	return produto, nil
}

func (s *custoService) somarProcessos(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	pps, err := s.repo.ListProcessos(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: processos de %s: %v", ErrFonteIndisponivel, id, err)
	}
	soma := decimal.Zero
	for _, pp := range pps {
		if pp.Processo == nil {
			return decimal.Zero, fmt.Errorf("%w: processo %s do produto %s", ErrProdutoNaoEncontrado, pp.ProcessoID, id)
		}
		soma = soma.Add(pp.Processo.PrecoPorUnidade.Mul(pp.Quantidade))
	}
	return soma, nil
}

func (s *custoService) somarMaoDeObra(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	pms, err := s.repo.ListMaoDeObra(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: mao de obra de %s: %v", ErrFonteIndisponivel, id, err)
	}
	soma := decimal.Zero
	for _, pm := range pms {
		if pm.MaoDeObra == nil {
			return decimal.Zero, fmt.Errorf("%w: mao de obra %s do produto %s", ErrProdutoNaoEncontrado, pm.MaoDeObraID, id)
		}
		soma = soma.Add(pm.MaoDeObra.PrecoPorHora.Mul(pm.Horas))
	}
	return soma, nil
}

// ── Cache hint ───────────────────────────────────────────────────────────────

// lerCache checks redis first, then the persisted row figures. Either source
// is a hint — callers that need certainty pass fresh=true.
func (s *custoService) lerCache(ctx context.Context, id uuid.UUID) *dto.DetalheCustoResponse {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, custoCacheKey(id)).Bytes(); err == nil {
			var resp dto.DetalheCustoResponse
			if json.Unmarshal(raw, &resp) == nil {
				resp.Cache = true
				return &resp
			}
		}
	}

	produto, err := s.repo.FindByID(ctx, id)
	if err != nil || produto.CustosCalculadosEm == nil {
		return nil
	}
	return &dto.DetalheCustoResponse{
		ProdutoID:      id.String(),
		CustoTotal:     produto.CustoTotal,
		CustoMateriais: produto.CustoMateriais,
		CustoProcessos: produto.CustoProcessos,
		CustoMaoDeObra: produto.CustoMaoDeObra,
		CalculadoEm:    *produto.CustosCalculadosEm,
		Cache:          true,
	}
}

func (s *custoService) gravarHint(ctx context.Context, id uuid.UUID, resp *dto.DetalheCustoResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, custoCacheKey(id), raw, s.cacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("produto_id", id.String()).Msg("custo: falha ao gravar hint no redis")
	}
}
