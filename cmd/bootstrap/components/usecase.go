package components

import (
	"context"

	"campbook/internal/domain/quote"
	"campbook/internal/pkg/clock"
	"campbook/internal/pkg/config"
	"campbook/internal/usecase/commands"
	"campbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
	fx.Invoke(startSweeper),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) *quote.Assembler {
		return quote.NewAssembler(cfg.Booking.MaxStayNights)
	},
	func(cfg config.Config) config.BookingConfig {
		return cfg.Booking
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingUseCase,
		func(booking commands.BookingCommands, cfg config.BookingConfig) *commands.Sweeper {
			return commands.NewSweeper(booking, cfg.SweepInterval)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewPricingQueries,
		queries.NewReservationQueries,
	),
)

func startSweeper(lc fx.Lifecycle, sweeper *commands.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sweeper.Stop(ctx)
		},
	})
}
