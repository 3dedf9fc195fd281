package worker

import (
	"github.com/hibiken/asynq"
)

const (
	TypeSweepCompleted     = "booking:sweep_completed"
	TypeIdempotencyCleanup = "idempotency:cleanup"
)

func NewSweepCompletedTask() *asynq.Task {
	return asynq.NewTask(TypeSweepCompleted, nil)
}

func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeIdempotencyCleanup, nil)
}
