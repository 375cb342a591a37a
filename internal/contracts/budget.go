package contracts

import (
	"time"

	"Caixinha/internal/domain/budget"

	"github.com/shopspring/decimal"
)

type BudgetItemCreateRequest struct {
	Name     string           `json:"name" binding:"required,max=100"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Priority string           `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate  *time.Time       `json:"due_date"`
	Notes    string           `json:"notes" binding:"omitempty,max=255"`
}

// BudgetItemUpdateRequest não tem amount: o valor planejado não muda depois
// de criado.
type BudgetItemUpdateRequest struct {
	Name     *string    `json:"name" binding:"omitempty,max=100"`
	Priority *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate  *time.Time `json:"due_date"`
	Notes    *string    `json:"notes" binding:"omitempty,max=255"`
}

type BudgetItemResponse struct {
	Item       *budget.Item    `json:"item"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

func NewBudgetItemResponse(item *budget.Item) *BudgetItemResponse {
	return &BudgetItemResponse{
		Item:       item,
		Remaining:  item.GetRemaining(),
		Percentage: item.GetPercentage(),
	}
}

type BudgetSummaryResponse struct {
	Summary *budget.Summary `json:"summary"`
}
