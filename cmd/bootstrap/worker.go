package bootstrap

import (
	"context"

	"stayhub/internal/pkg/config"
	"stayhub/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewHandlers,
		NewWorkerServer,
	),
	fx.Invoke(startWorker),
)

func NewWorkerServer(cfg config.Config, handlers *worker.Handlers) (*worker.Server, error) {
	return worker.NewServer(cfg.Redis, cfg.Worker, handlers)
}

func startWorker(lc fx.Lifecycle, srv *worker.Server) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return srv.Start()
		},
		OnStop: func(_ context.Context) error {
			srv.Shutdown()
			return nil
		},
	})
}
