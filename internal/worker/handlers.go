package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayhub/internal/pkg/clock"
	"stayhub/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const sweepBatchSize = 500

// SweepStore lists confirmed bookings whose stay has ended.
type SweepStore interface {
	FindCheckedOutConfirmed(ctx context.Context, asOf time.Time, limit int32) ([]uuid.UUID, error)
}

// IdempotencyCleaner removes completed idempotency records past their TTL.
type IdempotencyCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Handlers struct {
	sweepStore  SweepStore
	cleaner     IdempotencyCleaner
	transitions commands.TransitionCommands
	clock       clock.Clock
}

func NewHandlers(sweepStore SweepStore, cleaner IdempotencyCleaner, transitions commands.TransitionCommands, clk clock.Clock) *Handlers {
	return &Handlers{
		sweepStore:  sweepStore,
		cleaner:     cleaner,
		transitions: transitions,
		clock:       clk,
	}
}

// HandleSweepCompleted moves confirmed bookings whose check-out has passed to
// completed. Each booking is completed in its own transaction so one bad row
// does not stall the batch.
func (h *Handlers) HandleSweepCompleted(ctx context.Context, _ *asynq.Task) error {
	now := h.clock.Now()

	ids, err := h.sweepStore.FindCheckedOutConfirmed(ctx, now, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var failed int
	for _, id := range ids {
		if err := h.transitions.CompleteSystem(ctx, id); err != nil {
			// Cancelled or already-completed rows can race with the sweep.
			// They are fine to skip; anything else counts as a failure.
			if errors.Is(err, commands.ErrBookingNotFound) {
				continue
			}
			failed++
			slog.Warn("sweep failed to complete booking",
				"booking_id", id.String(),
				"error", err.Error())
		}
	}

	slog.Info("completed booking sweep",
		"candidates", len(ids),
		"failed", failed)
	return nil
}

// HandleIdempotencyCleanup purges completed idempotency keys whose TTL has
// lapsed. In-flight keys are never touched here; they expire via reclaim on
// the write path.
func (h *Handlers) HandleIdempotencyCleanup(ctx context.Context, _ *asynq.Task) error {
	deleted, err := h.cleaner.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("purged expired idempotency keys", "deleted", deleted)
	}
	return nil
}
