package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"campbook/internal/infra/converter"
	"campbook/internal/infra/db"
	"campbook/internal/infra/memory"
	"campbook/internal/infra/readstore"
	"campbook/internal/infra/repository"
	"campbook/internal/infra/uow"
	"campbook/internal/pkg/config"
	"campbook/internal/pkg/errs"
	"campbook/internal/usecase/shared"

	"go.uber.org/fx"
)

var StorageModule = fx.Module("storage",
	fx.Provide(
		NewStorage,
	),
)

type Storage struct {
	fx.Out

	Catalog shared.CatalogReader
	Store   shared.AllocationStore
}

func NewStorage(lc fx.Lifecycle, cfg config.Config) (Storage, error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		return newPostgresStorage(lc, cfg)
	default:
		return newMemoryStorage(cfg.Storage)
	}
}

func newMemoryStorage(cfg config.StorageConfig) (Storage, error) {
	catalog, err := memory.LoadCatalogFile(cfg.CatalogFixtures)
	if err != nil {
		return Storage{}, err
	}
	slog.Info("using in-memory storage", "fixtures", cfg.CatalogFixtures)
	return Storage{Catalog: catalog, Store: memory.NewAllocationStore()}, nil
}

func newPostgresStorage(lc fx.Lifecycle, cfg config.Config) (Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return Storage{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	if cfg.Storage.Migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return Storage{}, err
		}
	}

	u := uow.NewPostgresUoW(pool)
	if cfg.Storage.Seed {
		doc, err := converter.LoadCatalogDoc(cfg.Storage.CatalogFixtures)
		if err != nil {
			return Storage{}, err
		}
		if err := repository.NewCatalogRepository(u).Seed(ctx, doc); err != nil {
			return Storage{}, errs.Wrap(err, "failed to seed catalog")
		}
		slog.Info("seeded catalog", "fixtures", cfg.Storage.CatalogFixtures, "campgrounds", len(doc.Campgrounds))
	}

	slog.Info("using postgres storage", "host", cfg.DB.Host, "database", cfg.DB.DBName)
	return Storage{
		Catalog: readstore.NewCatalogReadStore(u),
		Store:   repository.NewReservationRepository(u),
	}, nil
}
