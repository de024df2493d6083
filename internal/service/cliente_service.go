package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"orcamento/internal/dto"
	"orcamento/internal/model"
	"orcamento/internal/repository"
)

// ErrStatusClienteTerminal is returned when confirming or cancelling a
// cliente already in a terminal quotation status.
var ErrStatusClienteTerminal = errors.New("status de orcamento do cliente e terminal")

// ClienteService manages client records and their quotation lifecycle:
// aberto until confirmed or cancelled, with a background sweep cancelling
// clients whose deadline expired while still open.
type ClienteService interface {
	Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error

	Confirmar(ctx context.Context, id uuid.UUID) error
	Cancelar(ctx context.Context, id uuid.UUID) error
	// CancelarVencidos is the cron entry point: cancels every cliente still
	// aberto past its deadline. Returns how many were cancelled.
	CancelarVencidos(ctx context.Context) (int, error)
}

type clienteService struct {
	clientes repository.ClienteRepository
	prazo    time.Duration
}

// NewClienteService builds the service; prazo is how long a new cliente
// stays aberto before the cron may cancel it.
func NewClienteService(clientes repository.ClienteRepository, prazo time.Duration) ClienteService {
	return &clienteService{clientes: clientes, prazo: prazo}
}

func (s *clienteService) Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error) {
	cliente := &model.Cliente{
		Nome:              req.Nome,
		Empresa:           req.Empresa,
		CNPJ:              req.CNPJ,
		Telefone:          req.Telefone,
		Email:             req.Email,
		Endereco:          req.Endereco,
		StatusOrcamento:   model.StatusClienteAberto,
		PrazoCancelamento: time.Now().Add(s.prazo),
		Ativo:             true,
	}
	if err := s.clientes.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Buscar(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	clientes, total, err := s.clientes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nome != nil {
		cliente.Nome = *req.Nome
	}
	if req.Empresa != nil {
		cliente.Empresa = req.Empresa
	}
	if req.Telefone != nil {
		cliente.Telefone = req.Telefone
	}
	if req.Email != nil {
		cliente.Email = req.Email
	}
	if req.Endereco != nil {
		cliente.Endereco = req.Endereco
	}

	if err := s.clientes.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.buscar(ctx, id); err != nil {
		return err
	}
	return s.clientes.SoftDelete(ctx, id)
}

func (s *clienteService) Confirmar(ctx context.Context, id uuid.UUID) error {
	return s.transicionar(ctx, id, model.StatusClienteConfirmado)
}

func (s *clienteService) Cancelar(ctx context.Context, id uuid.UUID) error {
	return s.transicionar(ctx, id, model.StatusClienteCancelado)
}

// transicionar moves a cliente out of aberto. Both destinations are
// terminal, so only aberto clients may move.
func (s *clienteService) transicionar(ctx context.Context, id uuid.UUID, destino string) error {
	cliente, err := s.buscar(ctx, id)
	if err != nil {
		return err
	}
	if cliente.StatusOrcamento != model.StatusClienteAberto {
		return fmt.Errorf("%w: %s", ErrStatusClienteTerminal, cliente.StatusOrcamento)
	}
	return s.clientes.UpdateStatus(ctx, id, destino)
}

func (s *clienteService) CancelarVencidos(ctx context.Context) (int, error) {
	vencidos, err := s.clientes.ListVencidos(ctx, time.Now(), 100)
	if err != nil {
		return 0, err
	}

	cancelados := 0
	for _, cliente := range vencidos {
		if err := s.clientes.UpdateStatus(ctx, cliente.ID, model.StatusClienteCancelado); err != nil {
			log.Error().
				Str("cliente_id", cliente.ID.String()).
				Err(err).
				Msg("failed to cancel expired client")
			continue
		}
		cancelados++
	}
	return cancelados, nil
}

func (s *clienteService) buscar(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	cliente, err := s.clientes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	return cliente, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:                c.ID.String(),
		Nome:              c.Nome,
		Empresa:           c.Empresa,
		CNPJ:              c.CNPJ,
		Telefone:          c.Telefone,
		Email:             c.Email,
		Endereco:          c.Endereco,
		StatusOrcamento:   c.StatusOrcamento,
		PrazoCancelamento: c.PrazoCancelamento,
		Ativo:             c.Ativo,
	}
}
