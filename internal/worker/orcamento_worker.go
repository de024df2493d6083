package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// OrcamentoGerador renders a quote PDF for a pedido and, when an email
// address is given, sends it to the client. Implemented by
// service.OrcamentoService.
type OrcamentoGerador interface {
	GerarEEnviarPDF(ctx context.Context, pedidoID uuid.UUID, email string) (string, error)
}

// OrcamentoPDFPayload identifies the pedido to render.
type OrcamentoPDFPayload struct {
	PedidoID uuid.UUID `json:"pedido_id"`
	Email    string    `json:"email,omitempty"`
	Attempts int       `json:"attempts"`
}

type OrcamentoPDFWorker struct {
	orcamentos OrcamentoGerador
}

func NewOrcamentoPDFWorker(orcamentos OrcamentoGerador) *OrcamentoPDFWorker {
	return &OrcamentoPDFWorker{orcamentos: orcamentos}
}

func (w *OrcamentoPDFWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload OrcamentoPDFPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invalid orcamento_pdf payload")
		return
	}

	path, err := w.orcamentos.GerarEEnviarPDF(ctx, payload.PedidoID, payload.Email)
	if err != nil {
		payload.Attempts++
		requeued, mErr := json.Marshal(payload)
		if mErr != nil {
			log.Error().Err(mErr).Msg("failed to re-marshal orcamento_pdf payload")
			return
		}
		retryOrDead(ctx, rdb, QueueOrcamentoPDF, requeued, payload.Attempts, err)
		return
	}

	log.Info().
		Str("pedido_id", payload.PedidoID.String()).
		Str("pdf", path).
		Msg("quote PDF generated")
}
