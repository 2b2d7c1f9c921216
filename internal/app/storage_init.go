package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/storage/memory"
	"github.com/vladislavdragonenkov/smartmeal/internal/storage/postgres"
)

// initStorage открывает хранилище каталога. Для postgres возвращается и Store,
// который нужно закрыть по завершении работы.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.MenuRepository, *postgres.Store, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Info("используем in-memory хранилище каталога")
		return memory.NewMenuRepository(), nil, nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres dsn is required for %s storage", StorageDriverPostgres)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN, logger.WithField("component", "postgres"))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("миграции postgres применены")
		}
		return postgres.NewMenuRepository(store), store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
