package fx

import (
	"context"

	"Caixinha/config"
	"Caixinha/internal/infrastructure"
	"Caixinha/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newRedisClient,
		newTransactor,
		newWalletRepository,
		newGoalRepository,
		newBudgetRepository,
		newLedgerRepository,
	),
)

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			logger.Info().Msg("Fechando conexões com o banco")
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newRedisClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	client, err := infrastructure.NewRedisClient(cfg)
	if err != nil || client == nil {
		return client, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newTransactor(db *gorm.DB) *infrastructure.Transactor {
	return infrastructure.NewTransactor(db)
}

func newWalletRepository(db *gorm.DB) *infrastructure.WalletRepository {
	return &infrastructure.WalletRepository{DB: db}
}

func newGoalRepository(db *gorm.DB) *infrastructure.GoalRepository {
	return &infrastructure.GoalRepository{DB: db}
}

func newBudgetRepository(db *gorm.DB) *infrastructure.BudgetRepository {
	return &infrastructure.BudgetRepository{DB: db}
}

func newLedgerRepository(db *gorm.DB) *infrastructure.LedgerRepository {
	return &infrastructure.LedgerRepository{DB: db}
}
