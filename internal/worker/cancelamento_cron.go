package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ClienteCancelador cancels open clients whose deadline expired.
// Implemented by service.ClienteService.
type ClienteCancelador interface {
	CancelarVencidos(ctx context.Context) (int, error)
}

// StartCancelamentoCron sweeps for expired open clients on a fixed
// interval. One run at startup, then every interval.
func StartCancelamentoCron(ctx context.Context, clientes ClienteCancelador, interval time.Duration) {
	go func() {
		sweep(ctx, clientes)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cancelamento cron shutting down")
				return
			case <-ticker.C:
				sweep(ctx, clientes)
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("cancelamento cron started")
}

func sweep(ctx context.Context, clientes ClienteCancelador) {
	n, err := clientes.CancelarVencidos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cancelamento sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int("cancelados", n).Msg("expired clients cancelled")
	}
}
