package bootstrap

import (
	"campbook/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StorageModule,
	components.IntegrationModule,
	components.UseCaseModule,
	components.HandlerModule,
)
