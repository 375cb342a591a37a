package infrastructure

import (
	"context"
	"errors"
	"time"

	"Caixinha/internal/domain/budget"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BudgetRepository struct {
	DB *gorm.DB
}

type budgetItemDB struct {
	Id         string          `gorm:"type:varchar(26);primaryKey"`
	GoalId     string          `gorm:"type:varchar(26);index;not null"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	PaidAmount decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Status     string          `gorm:"type:varchar(20);index;not null;default:'pending'"`
	Priority   string          `gorm:"type:varchar(10);not null;default:'medium'"`
	CreatedBy  string          `gorm:"type:uuid;not null"`
	DueDate    *time.Time
	Notes      string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (budgetItemDB) TableName() string {
	return "goal_budgets"
}

func toDomainBudgetItem(bdb *budgetItemDB) (*budget.Item, error) {
	id, err := pkg.ParseULID(bdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	goalID, err := pkg.ParseULID(bdb.GoalId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	createdBy, err := pkg.ParseUserID(bdb.CreatedBy)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &budget.Item{
		Id:         id,
		GoalId:     goalID,
		Name:       bdb.Name,
		Amount:     bdb.Amount,
		PaidAmount: bdb.PaidAmount,
		Status:     budget.Status(bdb.Status),
		Priority:   budget.Priority(bdb.Priority),
		CreatedBy:  createdBy,
		DueDate:    bdb.DueDate,
		Notes:      bdb.Notes,
		CreatedAt:  bdb.CreatedAt,
		UpdatedAt:  bdb.UpdatedAt,
	}, nil
}

func toDBBudgetItem(i *budget.Item) *budgetItemDB {
	return &budgetItemDB{
		Id:         i.Id.String(),
		GoalId:     i.GoalId.String(),
		Name:       i.Name,
		Amount:     i.Amount,
		PaidAmount: i.PaidAmount,
		Status:     string(i.Status),
		Priority:   string(i.Priority),
		CreatedBy:  i.CreatedBy.String(),
		DueDate:    i.DueDate,
		Notes:      i.Notes,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, item *budget.Item) error {
	if err := conn(ctx, r.DB).Create(toDBBudgetItem(item)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

// Update grava apenas os campos descritivos. amount, paid_amount e status
// pertencem ao fluxo de pagamento.
func (r *BudgetRepository) Update(ctx context.Context, item *budget.Item) error {
	result := conn(ctx, r.DB).Model(&budgetItemDB{}).
		Where("id = ? AND goal_id = ?", item.Id.String(), item.GoalId.String()).
		Updates(map[string]interface{}{
			"name":       item.Name,
			"priority":   string(item.Priority),
			"due_date":   item.DueDate,
			"notes":      item.Notes,
			"updated_at": item.UpdatedAt,
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrBudgetItemNotFound
	}
	return nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, goalID, itemID ulid.ULID) (*budget.Item, error) {
	return findBudgetItem(conn(ctx, r.DB), goalID, itemID)
}

func findBudgetItem(db *gorm.DB, goalID, itemID ulid.ULID) (*budget.Item, error) {
	var bdb budgetItemDB
	err := db.Where("id = ? AND goal_id = ?", itemID.String(), goalID.String()).First(&bdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrBudgetItemNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainBudgetItem(&bdb)
}

func (r *BudgetRepository) GetByGoalID(ctx context.Context, goalID ulid.ULID, filters *budget.ItemFilters, pagination *pkg.PaginationParams) ([]*budget.Item, int64, error) {
	baseQuery := conn(ctx, r.DB).Model(&budgetItemDB{}).Where("goal_id = ?", goalID.String())
	if filters != nil && filters.Status != nil {
		baseQuery = baseQuery.Where("status = ?", string(*filters.Status))
	}

	return pkg.Paginate(baseQuery, "goal_budgets", pagination, pkg.SortOldest, toDomainBudgetItem)
}

func (r *BudgetRepository) GetPayments(ctx context.Context, itemID ulid.ULID) ([]*budget.Payment, error) {
	var rows []budgetPaymentDB
	if err := conn(ctx, r.DB).
		Where("budget_id = ?", itemID.String()).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	out := make([]*budget.Payment, 0, len(rows))
	for i := range rows {
		p, err := toDomainBudgetPayment(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *BudgetRepository) GetSummary(ctx context.Context, goalID ulid.ULID) (*budget.Summary, error) {
	var result struct {
		TotalPlanned decimal.Decimal
		TotalPaid    decimal.Decimal
		PendingCount int64
		PartialCount int64
		PaidCount    int64
	}

	err := conn(ctx, r.DB).Model(&budgetItemDB{}).
		Where("goal_id = ?", goalID.String()).
		Select(`COALESCE(SUM(amount), 0) AS total_planned,
			COALESCE(SUM(paid_amount), 0) AS total_paid,
			COUNT(*) FILTER (WHERE status = ?) AS pending_count,
			COUNT(*) FILTER (WHERE status = ?) AS partial_count,
			COUNT(*) FILTER (WHERE status = ?) AS paid_count`,
			string(budget.StatusPending), string(budget.StatusPartial), string(budget.StatusPaid)).
		Scan(&result).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	remaining := result.TotalPlanned.Sub(result.TotalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	percentage := 0.0
	if result.TotalPlanned.IsPositive() {
		percentage, _ = result.TotalPaid.Div(result.TotalPlanned).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	return &budget.Summary{
		TotalPlanned:   result.TotalPlanned,
		TotalPaid:      result.TotalPaid,
		TotalRemaining: remaining,
		Percentage:     percentage,
		PendingCount:   result.PendingCount,
		PartialCount:   result.PartialCount,
		PaidCount:      result.PaidCount,
	}, nil
}
