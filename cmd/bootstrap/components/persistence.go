package components

import (
	"volunteer-slots/internal/infra/db"
	"volunteer-slots/internal/infra/readstore"
	"volunteer-slots/internal/infra/repository"
	"volunteer-slots/internal/infra/uow"
	"volunteer-slots/internal/pkg/config"
	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/usecase/queries"
	"volunteer-slots/internal/usecase/shared"
	"volunteer-slots/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Reservation
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationViewRepo)),
			fx.As(new(commands.ReservationReads)),
			fx.As(new(commands.DayFillReads)),
		),
		// Delivery
		fx.Annotate(
			readstore.NewDeliveryReadStore,
			fx.As(new(queries.DeliveryViewRepo)),
			fx.As(new(commands.DeliveryDedupReads)),
			fx.As(new(worker.UnfinishedReads)),
		),
		// Policy: read-through cache on the reserve path
		NewPolicyReadStore,
		fx.Annotate(
			func(s *readstore.PolicyReadStore) *readstore.PolicyReadStore { return s },
			fx.As(new(queries.PolicyViewRepo)),
			fx.As(new(commands.PolicyReads)),
		),
		// Volunteer
		fx.Annotate(
			readstore.NewVolunteerReadStore,
			fx.As(new(queries.VolunteerViewRepo)),
			fx.As(new(commands.VolunteerReads)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Delivery audit log writes outside the booking transaction
		fx.Annotate(
			repository.NewDeliveryLogStore,
			fx.As(new(commands.DeliveryLog)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewPolicyReadStore(dbtx db.DBTX, cfg config.Config) *readstore.PolicyReadStore {
	return readstore.NewPolicyReadStore(dbtx, cfg.Booking.PolicyCacheTTL)
}
