package fx

import (
	"Caixinha/config"
	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/goal"
	"Caixinha/internal/domain/ledger"
	"Caixinha/internal/domain/wallet"
	"Caixinha/internal/infrastructure"

	"go.uber.org/fx"
)

// DomainModule fornece os services do domínio
var DomainModule = fx.Module("domain",
	fx.Provide(
		newWalletService,
		newGoalService,
		newBudgetService,
		newLedgerService,
	),
)

func newWalletService(repo *infrastructure.WalletRepository) *wallet.Service {
	return wallet.NewService(repo)
}

// O débito na carteira participa da transação do aporte pelo contexto.
func newGoalService(
	repo *infrastructure.GoalRepository,
	walletSvc *wallet.Service,
	transactor *infrastructure.Transactor,
) *goal.Service {
	return goal.NewService(repo, walletSvc, transactor)
}

func newBudgetService(
	repo *infrastructure.BudgetRepository,
	goalRepo *infrastructure.GoalRepository,
	transactor *infrastructure.Transactor,
) *budget.Service {
	return budget.NewService(repo, goalRepo, goalRepo, transactor)
}

func newLedgerService(
	cfg *config.Config,
	repo *infrastructure.LedgerRepository,
	goalRepo *infrastructure.GoalRepository,
	transactor *infrastructure.Transactor,
) *ledger.Service {
	return ledger.NewService(repo, goalRepo, goalRepo, transactor, cfg.Ledger.PaidTolerance)
}
