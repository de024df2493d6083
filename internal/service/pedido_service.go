package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orcamento/internal/dto"
	"orcamento/internal/model"
	"orcamento/internal/pricing"
	"orcamento/internal/repository"
)

var (
	ErrPedidoNaoEncontrado  = errors.New("pedido nao encontrado")
	ErrClienteNaoEncontrado = errors.New("cliente nao encontrado")
	// ErrTransicaoInvalida is returned for a status change the state machine
	// does not allow.
	ErrTransicaoInvalida = errors.New("transicao de status invalida")
	// ErrPedidoNaoEditavel is returned when mutating an order past pendente.
	ErrPedidoNaoEditavel = errors.New("pedido nao pode mais ser alterado")
)

// transicoesPedido encodes the order state machine. Finalizado and
// cancelado are terminal.
var transicoesPedido = map[string][]string{
	model.StatusPedidoPendente:   {model.StatusPedidoEmProducao, model.StatusPedidoCancelado},
	model.StatusPedidoEmProducao: {model.StatusPedidoFinalizado, model.StatusPedidoCancelado},
}

type PedidoService interface {
	Criar(ctx context.Context, req dto.CriarPedidoRequest, criadoPor uuid.UUID) (*dto.PedidoResponse, error)
	Buscar(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarPedidoRequest) (*dto.PedidoResponse, error)
	AtualizarStatus(ctx context.Context, id uuid.UUID, status string) error

	AdicionarItemExtra(ctx context.Context, pedidoID uuid.UUID, req dto.CriarItemExtraRequest) (*dto.ItemExtraResponse, error)
	RemoverItemExtra(ctx context.Context, pedidoID, itemID uuid.UUID) error
	AdicionarImposto(ctx context.Context, pedidoID uuid.UUID, req dto.CriarImpostoRequest) (*dto.ImpostoResponse, error)
	RemoverImposto(ctx context.Context, pedidoID, impostoID uuid.UUID) error
}

type pedidoService struct {
	pedidos  repository.PedidoRepository
	clientes repository.ClienteRepository
	produtos repository.ProdutoRepository
}

func NewPedidoService(
	pedidos repository.PedidoRepository,
	clientes repository.ClienteRepository,
	produtos repository.ProdutoRepository,
) PedidoService {
	return &pedidoService{pedidos: pedidos, clientes: clientes, produtos: produtos}
}

func (s *pedidoService) Criar(ctx context.Context, req dto.CriarPedidoRequest, criadoPor uuid.UUID) (*dto.PedidoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, ErrClienteNaoEncontrado
	}
	if _, err := s.clientes.FindByID(ctx, clienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}

	pedido := &model.Pedido{
		ClienteID:  clienteID,
		Quantidade: req.Quantidade,
		Status:     model.StatusPedidoPendente,
		TemFrete:   req.TemFrete,
		ValorFrete: req.ValorFrete,
		Observacao: req.Observacao,
		CriadoPor:  criadoPor,
	}
	if req.ProdutoID != nil {
		produtoID, err := uuid.Parse(*req.ProdutoID)
		if err != nil {
			return nil, ErrProdutoNaoEncontrado
		}
		if _, err := s.produtos.FindByID(ctx, produtoID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProdutoNaoEncontrado
			}
			return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
		}
		pedido.ProdutoID = &produtoID
	}

	if err := s.pedidos.Create(ctx, pedido); err != nil {
		return nil, err
	}
	return s.Buscar(ctx, pedido.ID)
}

func (s *pedidoService) Buscar(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.pedidos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPedidoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	pedidos, total, err := s.pedidos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		data = append(data, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PedidoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *pedidoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarPedidoRequest) (*dto.PedidoResponse, error) {
	pedido, err := s.buscarEditavel(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Quantidade != nil {
		pedido.Quantidade = *req.Quantidade
	}
	if req.TemFrete != nil {
		pedido.TemFrete = *req.TemFrete
	}
	if req.ValorFrete != nil {
		if req.ValorFrete.IsNegative() {
			return nil, fmt.Errorf("%w: frete = %s", pricing.ErrValorNegativo, req.ValorFrete)
		}
		pedido.ValorFrete = *req.ValorFrete
	}
	if req.Observacao != nil {
		pedido.Observacao = req.Observacao
	}

	if err := s.pedidos.Update(ctx, pedido); err != nil {
		return nil, err
	}
	return s.Buscar(ctx, id)
}

func (s *pedidoService) AtualizarStatus(ctx context.Context, id uuid.UUID, status string) error {
	pedido, err := s.pedidos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPedidoNaoEncontrado
		}
		return fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}

	if !transicaoPermitida(pedido.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrTransicaoInvalida, pedido.Status, status)
	}
	return s.pedidos.UpdateStatus(ctx, id, status)
}

func (s *pedidoService) AdicionarItemExtra(ctx context.Context, pedidoID uuid.UUID, req dto.CriarItemExtraRequest) (*dto.ItemExtraResponse, error) {
	if _, err := s.buscarEditavel(ctx, pedidoID); err != nil {
		return nil, err
	}
	if req.Valor.IsNegative() {
		return nil, fmt.Errorf("%w: item extra %q = %s", pricing.ErrValorNegativo, req.Descricao, req.Valor)
	}

	item := &model.ItemExtraPedido{
		PedidoID:  pedidoID,
		Descricao: req.Descricao,
		Valor:     req.Valor,
	}
	if err := s.pedidos.AddItemExtra(ctx, item); err != nil {
		return nil, err
	}
	return &dto.ItemExtraResponse{
		ID:        item.ID.String(),
		Descricao: item.Descricao,
		Valor:     item.Valor,
		Ordem:     item.Ordem,
	}, nil
}

func (s *pedidoService) RemoverItemExtra(ctx context.Context, pedidoID, itemID uuid.UUID) error {
	if _, err := s.buscarEditavel(ctx, pedidoID); err != nil {
		return err
	}
	return s.pedidos.DeleteItemExtra(ctx, pedidoID, itemID)
}

func (s *pedidoService) AdicionarImposto(ctx context.Context, pedidoID uuid.UUID, req dto.CriarImpostoRequest) (*dto.ImpostoResponse, error) {
	if _, err := s.buscarEditavel(ctx, pedidoID); err != nil {
		return nil, err
	}
	// Same range check the tax chain enforces — rejected at the door instead
	// of at quote time.
	if req.Percentual.IsNegative() || req.Percentual.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: %s = %s%%", pricing.ErrPercentualInvalido, req.Tipo, req.Percentual)
	}

	imposto := &model.ImpostoPedido{
		PedidoID:   pedidoID,
		Tipo:       req.Tipo,
		Percentual: req.Percentual,
	}
	if err := s.pedidos.AddImposto(ctx, imposto); err != nil {
		return nil, err
	}
	return &dto.ImpostoResponse{
		ID:         imposto.ID.String(),
		Tipo:       imposto.Tipo,
		Percentual: imposto.Percentual,
		Ordem:      imposto.Ordem,
	}, nil
}

func (s *pedidoService) RemoverImposto(ctx context.Context, pedidoID, impostoID uuid.UUID) error {
	if _, err := s.buscarEditavel(ctx, pedidoID); err != nil {
		return err
	}
	return s.pedidos.DeleteImposto(ctx, pedidoID, impostoID)
}

// buscarEditavel loads the order and rejects mutations past pendente —
// the quote inputs freeze once production starts.
func (s *pedidoService) buscarEditavel(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	pedido, err := s.pedidos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPedidoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}
	if pedido.Status != model.StatusPedidoPendente {
		return nil, fmt.Errorf("%w: status %s", ErrPedidoNaoEditavel, pedido.Status)
	}
	return pedido, nil
}

func transicaoPermitida(de, para string) bool {
	for _, permitido := range transicoesPedido[de] {
		if para == permitido {
			return true
		}
	}
	return false
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	resp := &dto.PedidoResponse{
		ID:         p.ID.String(),
		ClienteID:  p.ClienteID.String(),
		Quantidade: p.Quantidade,
		Status:     p.Status,
		TemFrete:   p.TemFrete,
		ValorFrete: p.ValorFrete,
		Observacao: p.Observacao,
		CriadoPor:  p.CriadoPor.String(),
		CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.ProdutoID != nil {
		id := p.ProdutoID.String()
		resp.ProdutoID = &id
	}
	if p.Produto != nil {
		resp.NomeProduto = p.Produto.Nome
	}
	if p.Cliente != nil {
		resp.NomeCliente = p.Cliente.Nome
	}
	resp.ItensExtras = make([]dto.ItemExtraResponse, 0, len(p.ItensExtras))
	for _, e := range p.ItensExtras {
		resp.ItensExtras = append(resp.ItensExtras, dto.ItemExtraResponse{
			ID: e.ID.String(), Descricao: e.Descricao, Valor: e.Valor, Ordem: e.Ordem,
		})
	}
	resp.Impostos = make([]dto.ImpostoResponse, 0, len(p.Impostos))
	for _, i := range p.Impostos {
		resp.Impostos = append(resp.Impostos, dto.ImpostoResponse{
			ID: i.ID.String(), Tipo: i.Tipo, Percentual: i.Percentual, Ordem: i.Ordem,
		})
	}
	return resp
}
