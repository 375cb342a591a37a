package goal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	ActionGoalCreated       = "goal_created"
	ActionGoalUpdated       = "goal_updated"
	ActionGoalArchived      = "goal_archived"
	ActionGoalCompleted     = "goal_completed"
	ActionContribution      = "contribution"
	ActionBudgetCreated     = "budget_created"
	ActionBudgetUpdated     = "budget_updated"
	ActionBudgetPayment     = "budget_payment"
	ActionInvitationCreated = "invitation_created"
	ActionMemberJoined      = "member_joined"
	ActionMemberRoleChanged = "member_role_changed"
	ActionMemberRemoved     = "member_removed"
)

type Activity struct {
	Id        ulid.ULID              `json:"id"`
	GoalId    ulid.ULID              `json:"goalId"`
	UserId    uuid.UUID              `json:"userId"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ActivityLogger é o único ponto de escrita do histórico da meta.
type ActivityLogger interface {
	CreateActivity(ctx context.Context, activity *Activity) error
}

// MemberReader permite que outros domínios verifiquem a participação na meta.
type MemberReader interface {
	GetMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*Member, error)
}
