package fx

import (
	"context"

	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/goal"
	"Caixinha/internal/domain/ledger"
	"Caixinha/internal/domain/wallet"
	"Caixinha/internal/routes"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// RoutesModule fornece o handler HTTP
var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
	),
)

func newHandler(
	db *gorm.DB,
	client *redis.Client,
	goalSvc *goal.Service,
	budgetSvc *budget.Service,
	ledgerSvc *ledger.Service,
	walletSvc *wallet.Service,
) *routes.Handler {
	return &routes.Handler{
		GoalService:   goalSvc,
		BudgetService: budgetSvc,
		LedgerService: ledgerSvc,
		WalletService: walletSvc,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			if client != nil {
				return client.Ping(ctx).Err()
			}
			return nil
		},
	}
}
