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

var ErrMaoDeObraNaoEncontrada = errors.New("mao de obra nao encontrada")

// MaoDeObraService manages labor types. Rate changes invalidate every
// product that bills hours of that type.
type MaoDeObraService interface {
	Criar(ctx context.Context, req dto.CriarMaoDeObraRequest) (*dto.MaoDeObraResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.MaoDeObraResponse, error)
	Listar(ctx context.Context) ([]dto.MaoDeObraResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMaoDeObraRequest) (*dto.MaoDeObraResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type maoDeObraService struct {
	maoDeObra  repository.MaoDeObraRepository
	produtos   repository.ProdutoRepository
	custos     CustoService
	dispatcher *worker.Dispatcher
}

func NewMaoDeObraService(
	maoDeObra repository.MaoDeObraRepository,
	produtos repository.ProdutoRepository,
	custos CustoService,
	dispatcher *worker.Dispatcher,
) MaoDeObraService {
	return &maoDeObraService{maoDeObra: maoDeObra, produtos: produtos, custos: custos, dispatcher: dispatcher}
}

func (s *maoDeObraService) Criar(ctx context.Context, req dto.CriarMaoDeObraRequest) (*dto.MaoDeObraResponse, error) {
	mao := &model.MaoDeObra{
		Tipo:         req.Tipo,
		PrecoPorHora: req.PrecoPorHora,
		Ativo:        true,
	}
	if err := s.maoDeObra.Create(ctx, mao); err != nil {
		return nil, err
	}
	return maoDeObraToResponse(mao), nil
}

func (s *maoDeObraService) Buscar(ctx context.Context, id uuid.UUID) (*dto.MaoDeObraResponse, error) {
	mao, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return maoDeObraToResponse(mao), nil
}

func (s *maoDeObraService) Listar(ctx context.Context) ([]dto.MaoDeObraResponse, error) {
	maos, err := s.maoDeObra.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaoDeObraResponse, 0, len(maos))
	for i := range maos {
		out = append(out, *maoDeObraToResponse(&maos[i]))
	}
	return out, nil
}

func (s *maoDeObraService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarMaoDeObraRequest) (*dto.MaoDeObraResponse, error) {
	mao, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	precoMudou := false
	if req.Tipo != nil {
		mao.Tipo = *req.Tipo
	}
	if req.PrecoPorHora != nil && !req.PrecoPorHora.Equal(mao.PrecoPorHora) {
		mao.PrecoPorHora = *req.PrecoPorHora
		precoMudou = true
	}

	if err := s.maoDeObra.Update(ctx, mao); err != nil {
		return nil, err
	}
	if precoMudou {
		s.invalidarUsuarios(ctx, id, "preco de mao de obra alterado")
	}
	return maoDeObraToResponse(mao), nil
}

func (s *maoDeObraService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buscar(ctx, id); err != nil {
		return err
	}
	if err := s.maoDeObra.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarUsuarios(ctx, id, "mao de obra desativada")
	return nil
}

func (s *maoDeObraService) buscar(ctx context.Context, id uuid.UUID) (*model.MaoDeObra, error) {
	mao, err := s.maoDeObra.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaoDeObraNaoEncontrada
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	return mao, nil
}

func (s *maoDeObraService) invalidarUsuarios(ctx context.Context, maoDeObraID uuid.UUID, motivo string) {
	produtoIDs, err := s.produtos.ListProdutoIDsPorMaoDeObra(ctx, maoDeObraID)
	if err != nil {
		log.Error().Str("mao_de_obra_id", maoDeObraID.String()).Err(err).Msg("failed to list products using labor type")
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

func maoDeObraToResponse(m *model.MaoDeObra) *dto.MaoDeObraResponse {
	return &dto.MaoDeObraResponse{
		ID:           m.ID.String(),
		Tipo:         m.Tipo,
		PrecoPorHora: m.PrecoPorHora,
		Ativo:        m.Ativo,
	}
}
