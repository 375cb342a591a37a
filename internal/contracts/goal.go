package contracts

import (
	"time"

	domainGoal "Caixinha/internal/domain/goal"

	"github.com/shopspring/decimal"
)

type GoalCreateRequest struct {
	Name     string           `json:"name" binding:"required,max=100"`
	Target   *decimal.Decimal `json:"target" binding:"required"`
	Deadline *time.Time       `json:"deadline"`
}

type GoalUpdateRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=100"`
	Target   *decimal.Decimal `json:"target"`
	Deadline *time.Time       `json:"deadline"`
}

type GoalContributionRequest struct {
	WalletID string           `json:"wallet_id" binding:"required"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Notes    string           `json:"notes" binding:"omitempty,max=255"`
}

type GoalResponse struct {
	Goal *domainGoal.Goal `json:"goal"`
}

type GoalProgressResponse struct {
	Progress *domainGoal.GoalProgress `json:"progress"`
}

type ContributionResponse struct {
	Message      string                   `json:"message"`
	Contribution *domainGoal.Contribution `json:"contribution"`
}

type MemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner editor viewer"`
}

type InvitationCreateRequest struct {
	Role         string `json:"role" binding:"omitempty,oneof=editor viewer"`
	ExpiresInHrs int    `json:"expires_in_hours" binding:"omitempty,min=1,max=720"`
}

type InvitationClaimRequest struct {
	Token string `json:"token" binding:"required"`
}

type InvitationResponse struct {
	Invitation *domainGoal.Invitation `json:"invitation"`
	Token      string                 `json:"token"`
}

type MemberResponse struct {
	Member *domainGoal.Member `json:"member"`
}
