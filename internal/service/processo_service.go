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

var ErrProcessoNaoEncontrado = errors.New("processo nao encontrado")

// ProcessoService manages the process catalog. Changing a process price
// invalidates every product that uses it, since the cost contribution is
// preco_por_unidade × quantidade.
type ProcessoService interface {
	Criar(ctx context.Context, req dto.CriarProcessoRequest) (*dto.ProcessoResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.ProcessoResponse, error)
	Listar(ctx context.Context) ([]dto.ProcessoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProcessoRequest) (*dto.ProcessoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type processoService struct {
	processos  repository.ProcessoRepository
	produtos   repository.ProdutoRepository
	custos     CustoService
	dispatcher *worker.Dispatcher
}

func NewProcessoService(
	processos repository.ProcessoRepository,
	produtos repository.ProdutoRepository,
	custos CustoService,
	dispatcher *worker.Dispatcher,
) ProcessoService {
	return &processoService{processos: processos, produtos: produtos, custos: custos, dispatcher: dispatcher}
}

func (s *processoService) Criar(ctx context.Context, req dto.CriarProcessoRequest) (*dto.ProcessoResponse, error) {
	processo := &model.Processo{
		Nome:             req.Nome,
		PrecoPorUnidade:  req.PrecoPorUnidade,
		TempoEstimadoMin: req.TempoEstimadoMin,
		Ativo:            true,
	}
	if err := s.processos.Create(ctx, processo); err != nil {
		return nil, err
	}
	return processoToResponse(processo), nil
}

func (s *processoService) Buscar(ctx context.Context, id uuid.UUID) (*dto.ProcessoResponse, error) {
	processo, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return processoToResponse(processo), nil
}

func (s *processoService) Listar(ctx context.Context) ([]dto.ProcessoResponse, error) {
	processos, err := s.processos.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProcessoResponse, 0, len(processos))
	for i := range processos {
		out = append(out, *processoToResponse(&processos[i]))
	}
	return out, nil
}

func (s *processoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProcessoRequest) (*dto.ProcessoResponse, error) {
	processo, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	precoMudou := false
	if req.Nome != nil {
		processo.Nome = *req.Nome
	}
	if req.PrecoPorUnidade != nil && !req.PrecoPorUnidade.Equal(processo.PrecoPorUnidade) {
		processo.PrecoPorUnidade = *req.PrecoPorUnidade
		precoMudou = true
	}
	if req.TempoEstimadoMin != nil {
		processo.TempoEstimadoMin = *req.TempoEstimadoMin
	}

	if err := s.processos.Update(ctx, processo); err != nil {
		return nil, err
	}
	if precoMudou {
		s.invalidarUsuarios(ctx, id, "preco de processo alterado")
	}
	return processoToResponse(processo), nil
}

func (s *processoService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buscar(ctx, id); err != nil {
		return err
	}
	if err := s.processos.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarUsuarios(ctx, id, "processo desativado")
	return nil
}

func (s *processoService) buscar(ctx context.Context, id uuid.UUID) (*model.Processo, error) {
	processo, err := s.processos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProcessoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	return processo, nil
}

// invalidarUsuarios invalidates every product attached to this process and
// enqueues their recomputation.
func (s *processoService) invalidarUsuarios(ctx context.Context, processoID uuid.UUID, motivo string) {
	produtoIDs, err := s.produtos.ListProdutoIDsPorProcesso(ctx, processoID)
	if err != nil {
		log.Error().Str("processo_id", processoID.String()).Err(err).Msg("failed to list products using process")
		return
	}
	for _, produtoID := range produtoIDs {
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

func processoToResponse(p *model.Processo) *dto.ProcessoResponse {
	return &dto.ProcessoResponse{
		ID:               p.ID.String(),
		Nome:             p.Nome,
		PrecoPorUnidade:  p.PrecoPorUnidade,
		TempoEstimadoMin: p.TempoEstimadoMin,
		Ativo:            p.Ativo,
	}
}
