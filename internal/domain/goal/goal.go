package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	Active    GoalStatus = "active"
	Completed GoalStatus = "completed"
	Archived  GoalStatus = "archived"
)

// Goal é uma meta compartilhada. CurrentAmount é sempre recalculado a partir
// do histórico de aportes, nunca incrementado isoladamente.
type Goal struct {
	Id            ulid.ULID       `json:"id"`
	OwnerId       uuid.UUID       `json:"ownerId"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Status        GoalStatus      `json:"status"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (g *Goal) AcceptsContributions() bool {
	return g.Status == Active || g.Status == Completed
}

type GoalProgress struct {
	GoalId        ulid.ULID       `json:"goalId"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Remaining     decimal.Decimal `json:"remaining"`
	Percentage    float64         `json:"percentage"`
	Status        GoalStatus      `json:"status"`
}

type CreateGoalRequest struct {
	UserId       uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	Deadline     *time.Time
}

type UpdateGoalRequest struct {
	Id           ulid.ULID
	UserId       uuid.UUID
	Name         *string
	TargetAmount *decimal.Decimal
	Deadline     *time.Time
}

type GoalFilters struct {
	Status *GoalStatus
}
