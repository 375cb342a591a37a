package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Item é uma despesa planejada da meta. Amount é fixado na criação e
// PaidAmount só cresce, sempre igual à soma dos pagamentos do item.
type Item struct {
	Id         ulid.ULID       `json:"id"`
	GoalId     ulid.ULID       `json:"goalId"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Status     Status          `json:"status"`
	Priority   Priority        `json:"priority"`
	CreatedBy  uuid.UUID       `json:"createdBy"`
	DueDate    *time.Time      `json:"dueDate,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// GetRemaining retorna quanto ainda falta pagar
func (i *Item) GetRemaining() decimal.Decimal {
	remaining := i.Amount.Sub(i.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// GetPercentage retorna a porcentagem já paga do item
func (i *Item) GetPercentage() float64 {
	if !i.Amount.IsPositive() {
		return 0
	}
	pct, _ := i.PaidAmount.Div(i.Amount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

// ResolveStatus aplica a regra de quitação: pago quando paid >= amount - tolerance,
// parcial com qualquer valor pago, pendente caso contrário.
func ResolveStatus(paid, amount, tolerance decimal.Decimal) Status {
	if paid.GreaterThanOrEqual(amount.Sub(tolerance)) && paid.IsPositive() {
		return StatusPaid
	}
	if paid.IsPositive() {
		return StatusPartial
	}
	return StatusPending
}

// Payment é um lançamento imutável de um membro contra um item.
type Payment struct {
	Id             ulid.ULID       `json:"id"`
	BudgetItemId   ulid.ULID       `json:"budgetItemId"`
	UserId         uuid.UUID       `json:"userId"`
	Amount         decimal.Decimal `json:"amount"`
	Notes          string          `json:"notes,omitempty"`
	IdempotencyKey *string         `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type Summary struct {
	TotalPlanned   decimal.Decimal `json:"totalPlanned"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
	Percentage     float64         `json:"percentage"`
	PendingCount   int64           `json:"pendingCount"`
	PartialCount   int64           `json:"partialCount"`
	PaidCount      int64           `json:"paidCount"`
}

type CreateItemRequest struct {
	GoalId   ulid.ULID
	UserId   uuid.UUID
	Name     string
	Amount   decimal.Decimal
	Priority Priority
	DueDate  *time.Time
	Notes    string
}

// UpdateItemRequest não aceita Amount: o custo planejado é imutável.
type UpdateItemRequest struct {
	GoalId   ulid.ULID
	ItemId   ulid.ULID
	UserId   uuid.UUID
	Name     *string
	Priority *Priority
	DueDate  *time.Time
	Notes    *string
}

type ItemFilters struct {
	Status *Status
}
