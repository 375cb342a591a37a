package goal

import (
	"context"
	"time"

	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Repository interface {
	ActivityLogger
	MemberReader

	Create(ctx context.Context, goal *Goal) error
	Update(ctx context.Context, goal *Goal) error
	UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	GetByID(ctx context.Context, id ulid.ULID) (*Goal, error)
	// LockGoal bloqueia a linha da meta até o fim da transação.
	LockGoal(ctx context.Context, id ulid.ULID) (*Goal, error)
	GetByMember(ctx context.Context, userID uuid.UUID, filters *GoalFilters, pagination *pkg.PaginationParams) ([]*Goal, int64, error)
	// RecalculateCurrentAmount grava em goals.current_amount a soma dos aportes e devolve o total.
	// Exige a meta bloqueada por LockGoal.
	RecalculateCurrentAmount(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error)

	AddMember(ctx context.Context, member *Member) error
	ListMembers(ctx context.Context, goalID ulid.ULID) ([]*Member, error)
	UpdateMemberRole(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, role Role) error
	RemoveMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) error
	CountMembersByRole(ctx context.Context, goalID ulid.ULID, role Role) (int64, error)

	CreateInvitation(ctx context.Context, invitation *Invitation) error
	GetInvitationForUpdate(ctx context.Context, id ulid.ULID) (*Invitation, error)
	MarkInvitationClaimed(ctx context.Context, id ulid.ULID, userID uuid.UUID, claimedAt time.Time) error

	CreateContribution(ctx context.Context, contribution *Contribution) error
	GetContributionsByGoalID(ctx context.Context, goalID ulid.ULID) ([]*Contribution, error)

	ListActivities(ctx context.Context, goalID ulid.ULID, pagination *pkg.PaginationParams) ([]*Activity, int64, error)
}

// WalletDebiter retira o valor do aporte da carteira de origem.
type WalletDebiter interface {
	Debit(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error
}
