package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orcamento/internal/dto"
	"orcamento/internal/infra"
	"orcamento/internal/model"
	"orcamento/internal/pricing"
	"orcamento/internal/repository"
	"orcamento/internal/worker"
)

// OrcamentoService runs the full quotation pipeline for a pedido:
// resolve product cost, apply margin, aggregate lines, compound the tax
// chain in stored order, then add freight. Any stage failing aborts the
// whole quote — a partial price is never returned.
type OrcamentoService interface {
	GerarOrcamento(ctx context.Context, pedidoID uuid.UUID, fresh bool) (*dto.OrcamentoResponse, error)
	// SolicitarPDF enqueues async PDF generation (and email delivery when the
	// client has an address).
	SolicitarPDF(ctx context.Context, pedidoID uuid.UUID) error
	// GerarEEnviarPDF is the worker entry point: renders the PDF synchronously
	// and mails it when an address is given. Returns the file path.
	GerarEEnviarPDF(ctx context.Context, pedidoID uuid.UUID, email string) (string, error)
}

type orcamentoService struct {
	pedidos    repository.PedidoRepository
	custos     CustoService
	dispatcher *worker.Dispatcher
	mailer     *infra.Mailer
	cb         *infra.CircuitBreaker
	pdfPath    string
}

func NewOrcamentoService(
	pedidos repository.PedidoRepository,
	custos CustoService,
	dispatcher *worker.Dispatcher,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	pdfPath string,
) OrcamentoService {
	return &orcamentoService{
		pedidos:    pedidos,
		custos:     custos,
		dispatcher: dispatcher,
		mailer:     mailer,
		cb:         cb,
		pdfPath:    pdfPath,
	}
}

func (s *orcamentoService) GerarOrcamento(ctx context.Context, pedidoID uuid.UUID, fresh bool) (*dto.OrcamentoResponse, error) {
	pedido, err := s.pedidos.FindByID(ctx, pedidoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPedidoNaoEncontrado
		}
		return nil, fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}

	itens, linhas, err := s.montarItens(ctx, pedido, fresh)
	if err != nil {
		return nil, err
	}

	extras := make([]pricing.ItemExtra, 0, len(pedido.ItensExtras))
	extrasResp := make([]dto.ItemExtraResponse, 0, len(pedido.ItensExtras))
	for _, e := range pedido.ItensExtras {
		extras = append(extras, pricing.ItemExtra{Descricao: e.Descricao, Valor: e.Valor})
		extrasResp = append(extrasResp, dto.ItemExtraResponse{
			ID:        e.ID.String(),
			Descricao: e.Descricao,
			Valor:     e.Valor,
			Ordem:     e.Ordem,
		})
	}

	frete := decimal.Zero
	if pedido.TemFrete {
		frete = pedido.ValorFrete
	}

	agregado, err := pricing.AgregarPedido(linhas, extras, frete)
	if err != nil {
		return nil, err
	}

	// Impostos come preloaded ORDER BY ordem — the chain compounds in
	// exactly that order.
	cadeia := make([]pricing.Imposto, 0, len(pedido.Impostos))
	for _, imp := range pedido.Impostos {
		cadeia = append(cadeia, pricing.Imposto{Tipo: imp.Tipo, Percentual: imp.Percentual})
	}
	totalComImpostos, detalhes, err := pricing.AplicarImpostos(agregado.Subtotal, cadeia)
	if err != nil {
		return nil, err
	}

	resp := &dto.OrcamentoResponse{
		PedidoID:         pedido.ID.String(),
		Itens:            itens,
		ItensExtras:      extrasResp,
		SubtotalProdutos: agregado.SubtotalProdutos,
		SubtotalExtras:   agregado.SubtotalExtras,
		Subtotal:         agregado.Subtotal,
		Impostos:         detalhes,
		TotalComImpostos: totalComImpostos,
		Frete:            frete,
		TotalFinal:       totalComImpostos.Add(frete),
		GeradoEm:         time.Now(),
	}
	if pedido.Cliente != nil {
		resp.NomeCliente = pedido.Cliente.Nome
	}
	return resp, nil
}

// montarItens resolves cost and applies margin for the pedido's product line.
// Cost resolution failures (missing product, cycle, source down) propagate
// unchanged so the caller aborts the quote with the precise cause.
func (s *orcamentoService) montarItens(ctx context.Context, pedido *model.Pedido, fresh bool) ([]dto.ItemOrcamentoResponse, []pricing.ItemPedido, error) {
	if pedido.ProdutoID == nil {
		return []dto.ItemOrcamentoResponse{}, nil, nil
	}

	custo, err := s.custos.CalcularCusto(ctx, *pedido.ProdutoID, fresh)
	if err != nil {
		return nil, nil, err
	}

	var nome string
	margem := decimal.Zero
	if pedido.Produto != nil {
		nome = pedido.Produto.Nome
		margem = pedido.Produto.MargemLucroPct
	}

	resultado := pricing.AplicarMargem(custo.CustoTotal, margem)
	item := dto.ItemOrcamentoResponse{
		ProdutoID:      pedido.ProdutoID.String(),
		NomeProduto:    nome,
		CustoBase:      custo.CustoTotal,
		MargemPct:      margem,
		ValorMargem:    resultado.ValorMargem,
		PrecoComMargem: resultado.PrecoComMargem,
		Quantidade:     pedido.Quantidade,
		ValorLinha:     resultado.PrecoComMargem.Mul(pedido.Quantidade),
	}
	linha := pricing.ItemPedido{
		Descricao:      nome,
		PrecoComMargem: resultado.PrecoComMargem,
		Quantidade:     pedido.Quantidade,
	}
	return []dto.ItemOrcamentoResponse{item}, []pricing.ItemPedido{linha}, nil
}

func (s *orcamentoService) SolicitarPDF(ctx context.Context, pedidoID uuid.UUID) error {
	pedido, err := s.pedidos.FindByID(ctx, pedidoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPedidoNaoEncontrado
		}
		return fmt.Errorf("%w: %v", ErrFonteIndisponivel, err)
	}

	payload := worker.OrcamentoPDFPayload{PedidoID: pedido.ID}
	if pedido.Cliente != nil && pedido.Cliente.Email != nil {
		payload.Email = *pedido.Cliente.Email
	}
	if s.dispatcher == nil {
		return errors.New("dispatcher nao configurado")
	}
	return s.dispatcher.EnqueueOrcamentoPDF(ctx, payload)
}

func (s *orcamentoService) GerarEEnviarPDF(ctx context.Context, pedidoID uuid.UUID, destinatario string) (string, error) {
	orc, err := s.GerarOrcamento(ctx, pedidoID, false)
	if err != nil {
		return "", err
	}

	path, err := infra.GenerateOrcamentoPDF(orc, s.pdfPath)
	if err != nil {
		return "", err
	}

	if destinatario != "" && s.mailer != nil {
		assunto := fmt.Sprintf("Orçamento do pedido %s", orc.PedidoID)
		corpo := fmt.Sprintf("Segue em anexo o orçamento no valor de R$ %s.", orc.TotalFinal.StringFixed(2))
		sendErr := s.cb.Execute(func() error {
			return s.mailer.SendOrcamento(destinatario, assunto, corpo, path)
		})
		if sendErr != nil {
			// PDF exists on disk; only delivery failed. Let the worker retry.
			return path, fmt.Errorf("enviar orcamento: %w", sendErr)
		}
		log.Info().Str("pedido_id", orc.PedidoID).Str("to", destinatario).Msg("quote emailed")
	}
	return path, nil
}
