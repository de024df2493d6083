package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"orcamento/internal/dto"
)

// CustoRecalculador recomputes and persists a product's cost tree.
// Implemented by service.CustoService; declared here to avoid an
// import cycle between worker and service.
type CustoRecalculador interface {
	RecalcularEPersistir(ctx context.Context, produtoID uuid.UUID, motivo string) (*dto.DetalheCustoResponse, error)
}

// RecalculoPayload identifies the product whose cost went stale.
type RecalculoPayload struct {
	ProdutoID uuid.UUID `json:"produto_id"`
	Motivo    string    `json:"motivo"`
	Attempts  int       `json:"attempts"`
}

type RecalculoWorker struct {
	custos CustoRecalculador
}

func NewRecalculoWorker(custos CustoRecalculador) *RecalculoWorker {
	return &RecalculoWorker{custos: custos}
}

func (w *RecalculoWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload RecalculoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invalid recalculo payload")
		return
	}

	if _, err := w.custos.RecalcularEPersistir(ctx, payload.ProdutoID, payload.Motivo); err != nil {
		payload.Attempts++
		requeued, mErr := json.Marshal(payload)
		if mErr != nil {
			log.Error().Err(mErr).Msg("failed to re-marshal recalculo payload")
			return
		}
		retryOrDead(ctx, rdb, QueueRecalculo, requeued, payload.Attempts, err)
		return
	}

	log.Info().
		Str("produto_id", payload.ProdutoID.String()).
		Str("motivo", payload.Motivo).
		Msg("cost recomputed")
}
