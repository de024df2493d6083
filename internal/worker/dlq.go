package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxAttempts = 3

// FailedJob wraps a payload that exhausted its retries.
type FailedJob struct {
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	LastErr  string          `json:"last_err"`
	FailedAt time.Time       `json:"failed_at"`
}

func dlqKey(queue string) string { return queue + ":dlq" }

// retryOrDead requeues the job for another attempt, or parks it in the
// dead-letter list once attempts are exhausted.
func retryOrDead(ctx context.Context, rdb *redis.Client, queue string, payload json.RawMessage, attempts int, cause error) {
	if attempts < maxAttempts {
		job := Job{Type: "retry", Payload: payload}
		encoded, err := json.Marshal(job)
		if err == nil {
			if err := rdb.LPush(ctx, queue, encoded).Err(); err == nil {
				log.Warn().
					Str("queue", queue).
					Int("attempt", attempts).
					Err(cause).
					Msg("job requeued for retry")
				return
			}
		}
	}

	failed := FailedJob{
		Queue:    queue,
		Payload:  payload,
		Attempts: attempts,
		LastErr:  cause.Error(),
		FailedAt: time.Now(),
	}
	encoded, err := json.Marshal(failed)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal dead-letter job")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(queue), encoded).Err(); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to push job to DLQ")
		return
	}
	log.Error().
		Str("queue", queue).
		Int("attempts", attempts).
		Err(cause).
		Msg("job moved to dead-letter queue")
}
