package components

import (
	"stayhub/internal/infra/db"
	"stayhub/internal/infra/readstore"
	"stayhub/internal/infra/repository"
	"stayhub/internal/infra/uow"
	"stayhub/internal/usecase/queries"
	"stayhub/internal/usecase/shared"
	"stayhub/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Read-side stores
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
			fx.As(new(worker.SweepStore)),
		),
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(queries.AvailabilityReadStore)),
		),
		// Pool-backed repositories for out-of-transaction maintenance
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(worker.IdempotencyCleaner)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
