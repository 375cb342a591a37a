package contracts

import (
	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/ledger"

	"github.com/shopspring/decimal"
)

type PayBudgetItemRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Notes  string           `json:"notes" binding:"omitempty,max=255"`
}

type PayBudgetItemResponse struct {
	Success          bool            `json:"success"`
	PaymentID        string          `json:"paymentId"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	ItemTotalPaid    decimal.Decimal `json:"itemTotalPaid"`
	NewStatus        budget.Status   `json:"newStatus"`
	Replayed         bool            `json:"replayed,omitempty"`
}

func NewPayBudgetItemResponse(result *ledger.PaymentResult) *PayBudgetItemResponse {
	return &PayBudgetItemResponse{
		Success:          true,
		PaymentID:        result.PaymentId.String(),
		AvailableBalance: result.AvailableBalance,
		ItemTotalPaid:    result.ItemTotalPaid,
		NewStatus:        result.NewStatus,
		Replayed:         result.Replayed,
	}
}

type BalanceResponse struct {
	GoalID string `json:"goalId"`
	*ledger.Balance
}
