package worker

import (
	"fmt"
	"log/slog"

	"stayhub/internal/pkg/config"
	"stayhub/internal/pkg/errs"

	"github.com/hibiken/asynq"
)

// Server runs the background queue consumer plus the periodic scheduler that
// enqueues the sweep and cleanup tasks.
type Server struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

func NewServer(redisCfg config.RedisConfig, workerCfg config.WorkerConfig, handlers *Handlers) (*Server, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: workerCfg.Concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSweepCompleted, handlers.HandleSweepCompleted)
	mux.HandleFunc(TypeIdempotencyCleanup, handlers.HandleIdempotencyCleanup)

	scheduler := asynq.NewScheduler(redisOpt, nil)

	sweepSpec := fmt.Sprintf("@every %s", workerCfg.SweepInterval)
	if _, err := scheduler.Register(sweepSpec, NewSweepCompletedTask()); err != nil {
		return nil, errs.Wrap(err, "failed to register sweep task")
	}
	if _, err := scheduler.Register("@every 1h", NewIdempotencyCleanupTask()); err != nil {
		return nil, errs.Wrap(err, "failed to register idempotency cleanup task")
	}

	return &Server{srv: srv, scheduler: scheduler, mux: mux}, nil
}

func (s *Server) Start() error {
	if err := s.srv.Start(s.mux); err != nil {
		return errs.Wrap(err, "failed to start worker server")
	}
	if err := s.scheduler.Start(); err != nil {
		s.srv.Shutdown()
		return errs.Wrap(err, "failed to start scheduler")
	}
	slog.Info("worker started")
	return nil
}

func (s *Server) Shutdown() {
	s.scheduler.Shutdown()
	s.srv.Shutdown()
	slog.Info("worker stopped")
}
