package infrastructure

import (
	"context"
	"errors"
	"time"

	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/goal"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository concentra as leituras e escritas do fluxo de pagamento.
// Os métodos Lock* usam SELECT ... FOR UPDATE e devem rodar dentro do
// Transactor.
type LedgerRepository struct {
	DB *gorm.DB
}

type budgetPaymentDB struct {
	Id             string          `gorm:"type:varchar(26);primaryKey"`
	BudgetId       string          `gorm:"type:varchar(26);index;not null"`
	UserId         string          `gorm:"type:uuid;index;not null;uniqueIndex:idx_payments_user_idempotency,priority:1"`
	Amount         decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Notes          string          `gorm:"type:varchar(255)"`
	IdempotencyKey *string         `gorm:"type:varchar(100);uniqueIndex:idx_payments_user_idempotency,priority:2"`
	CreatedAt      time.Time       `gorm:"not null"`
}

func (budgetPaymentDB) TableName() string {
	return "goal_budget_payments"
}

func toDomainBudgetPayment(pdb *budgetPaymentDB) (*budget.Payment, error) {
	id, err := pkg.ParseULID(pdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	itemID, err := pkg.ParseULID(pdb.BudgetId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	userID, err := pkg.ParseUserID(pdb.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &budget.Payment{
		Id:             id,
		BudgetItemId:   itemID,
		UserId:         userID,
		Amount:         pdb.Amount,
		Notes:          pdb.Notes,
		IdempotencyKey: pdb.IdempotencyKey,
		CreatedAt:      pdb.CreatedAt,
	}, nil
}

func sumColumn(query *gorm.DB, column string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, appErrors.NewDatabaseError(err)
	}
	return result.Total, nil
}

func (r *LedgerRepository) LockMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
	return findMember(conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}), goalID, userID)
}

func (r *LedgerRepository) SumContributions(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (decimal.Decimal, error) {
	query := conn(ctx, r.DB).Model(&contributionDB{}).
		Where("goal_id = ? AND user_id = ?", goalID.String(), userID.String())
	return sumColumn(query, "amount")
}

func (r *LedgerRepository) SumMemberPayments(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (decimal.Decimal, error) {
	query := conn(ctx, r.DB).Model(&budgetPaymentDB{}).
		Joins("JOIN goal_budgets ON goal_budgets.id = goal_budget_payments.budget_id").
		Where("goal_budgets.goal_id = ? AND goal_budget_payments.user_id = ?", goalID.String(), userID.String())
	return sumColumn(query, "goal_budget_payments.amount")
}

func (r *LedgerRepository) LockBudgetItem(ctx context.Context, goalID, itemID ulid.ULID) (*budget.Item, error) {
	return findBudgetItem(conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}), goalID, itemID)
}

// GetPaymentByIdempotencyKey devolve nil, nil quando a chave ainda não existe.
func (r *LedgerRepository) GetPaymentByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*budget.Payment, error) {
	var pdb budgetPaymentDB
	err := conn(ctx, r.DB).
		Where("user_id = ? AND idempotency_key = ?", userID.String(), key).
		First(&pdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainBudgetPayment(&pdb)
}

func (r *LedgerRepository) CreatePayment(ctx context.Context, payment *budget.Payment) error {
	pdb := &budgetPaymentDB{
		Id:             payment.Id.String(),
		BudgetId:       payment.BudgetItemId.String(),
		UserId:         payment.UserId.String(),
		Amount:         payment.Amount,
		Notes:          payment.Notes,
		IdempotencyKey: payment.IdempotencyKey,
		CreatedAt:      payment.CreatedAt,
	}
	if err := conn(ctx, r.DB).Create(pdb).Error; err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewConflictError("Pagamento com esta chave de idempotência")
		}
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *LedgerRepository) SumItemPayments(ctx context.Context, itemID ulid.ULID) (decimal.Decimal, error) {
	query := conn(ctx, r.DB).Model(&budgetPaymentDB{}).Where("budget_id = ?", itemID.String())
	return sumColumn(query, "amount")
}

func (r *LedgerRepository) UpdateItemProgress(ctx context.Context, itemID ulid.ULID, paid decimal.Decimal, status budget.Status) error {
	result := conn(ctx, r.DB).Model(&budgetItemDB{}).
		Where("id = ?", itemID.String()).
		Updates(map[string]interface{}{
			"paid_amount": paid,
			"status":      string(status),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrBudgetItemNotFound
	}
	return nil
}
