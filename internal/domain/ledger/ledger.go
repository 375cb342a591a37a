package ledger

import (
	"Caixinha/internal/domain/budget"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// DefaultPaidTolerance é a folga usada quando nenhuma é configurada.
var DefaultPaidTolerance = decimal.New(1, -2)

// Balance é a posição de um membro dentro de uma meta:
// AvailableBalance = TotalContributed - TotalPaid.
type Balance struct {
	TotalContributed decimal.Decimal `json:"totalContributed"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

type PayRequest struct {
	GoalId         ulid.ULID
	UserId         uuid.UUID
	BudgetItemId   ulid.ULID
	Amount         decimal.Decimal
	Notes          string
	IdempotencyKey string
}

type PaymentResult struct {
	PaymentId        ulid.ULID       `json:"paymentId"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	ItemTotalPaid    decimal.Decimal `json:"itemTotalPaid"`
	NewStatus        budget.Status   `json:"newStatus"`
	Replayed         bool            `json:"replayed,omitempty"`
}
