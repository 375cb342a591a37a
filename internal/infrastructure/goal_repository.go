package infrastructure

import (
	"context"
	"errors"
	"time"

	"Caixinha/internal/domain/goal"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoalRepository struct {
	DB *gorm.DB
}

type goalDB struct {
	Id            string          `gorm:"type:varchar(26);primaryKey"`
	OwnerId       string          `gorm:"type:uuid;index;not null"`
	Name          string          `gorm:"type:varchar(100);not null"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);index;not null"`
	Deadline      *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (goalDB) TableName() string {
	return "goals"
}

func toDomainGoal(gdb *goalDB) (*goal.Goal, error) {
	id, err := pkg.ParseULID(gdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	ownerID, err := pkg.ParseUserID(gdb.OwnerId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &goal.Goal{
		Id:            id,
		OwnerId:       ownerID,
		Name:          gdb.Name,
		TargetAmount:  gdb.TargetAmount,
		CurrentAmount: gdb.CurrentAmount,
		Status:        goal.GoalStatus(gdb.Status),
		Deadline:      gdb.Deadline,
		CreatedAt:     gdb.CreatedAt,
		UpdatedAt:     gdb.UpdatedAt,
	}, nil
}

func toDBGoal(g *goal.Goal) *goalDB {
	return &goalDB{
		Id:            g.Id.String(),
		OwnerId:       g.OwnerId.String(),
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Status:        string(g.Status),
		Deadline:      g.Deadline,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	if err := conn(ctx, r.DB).Create(toDBGoal(g)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

// Update grava os campos editáveis; current_amount fica de fora porque só
// RecalculateCurrentAmount escreve nele.
func (r *GoalRepository) Update(ctx context.Context, g *goal.Goal) error {
	result := conn(ctx, r.DB).Model(&goalDB{}).
		Where("id = ?", g.Id.String()).
		Updates(map[string]interface{}{
			"name":          g.Name,
			"target_amount": g.TargetAmount,
			"status":        string(g.Status),
			"deadline":      g.Deadline,
			"updated_at":    g.UpdatedAt,
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrGoalNotFound
	}
	return nil
}

func (r *GoalRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	if status, ok := fields["status"].(goal.GoalStatus); ok {
		fields["status"] = string(status)
	}
	result := conn(ctx, r.DB).Model(&goalDB{}).Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrGoalNotFound
	}
	return nil
}

func (r *GoalRepository) GetByID(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
	var gdb goalDB
	if err := conn(ctx, r.DB).Where("id = ?", id.String()).First(&gdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrGoalNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainGoal(&gdb)
}

// LockGoal lê a meta com SELECT ... FOR UPDATE. Aportes, arquivamento e
// mudanças de dono passam por aqui, então ficam serializados por meta.
func (r *GoalRepository) LockGoal(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
	var gdb goalDB
	err := conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id.String()).
		First(&gdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrGoalNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainGoal(&gdb)
}

func (r *GoalRepository) GetByMember(ctx context.Context, userID uuid.UUID, filters *goal.GoalFilters, pagination *pkg.PaginationParams) ([]*goal.Goal, int64, error) {
	baseQuery := conn(ctx, r.DB).Model(&goalDB{}).
		Joins("JOIN goal_members ON goal_members.goal_id = goals.id").
		Where("goal_members.user_id = ?", userID.String())
	if filters != nil && filters.Status != nil {
		baseQuery = baseQuery.Where("goals.status = ?", string(*filters.Status))
	}

	return pkg.Paginate(baseQuery, "goals", pagination, pkg.SortNewest, toDomainGoal)
}

// RecalculateCurrentAmount deve rodar depois de LockGoal na mesma transação;
// sem a trava duas somas concorrentes gravariam totais desatualizados.
func (r *GoalRepository) RecalculateCurrentAmount(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error) {
	db := conn(ctx, r.DB)

	total, err := sumColumn(db.Model(&contributionDB{}).Where("goal_id = ?", goalID.String()), "amount")
	if err != nil {
		return decimal.Zero, err
	}

	result := db.Model(&goalDB{}).
		Where("id = ?", goalID.String()).
		Updates(map[string]interface{}{
			"current_amount": total,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return decimal.Zero, appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, appErrors.ErrGoalNotFound
	}
	return total, nil
}

type goalMemberDB struct {
	GoalId   string    `gorm:"type:varchar(26);primaryKey"`
	UserId   string    `gorm:"type:uuid;primaryKey;index"`
	Role     string    `gorm:"type:varchar(20);not null"`
	JoinedAt time.Time `gorm:"not null"`
}

func (goalMemberDB) TableName() string {
	return "goal_members"
}

func toDomainMember(mdb *goalMemberDB) (*goal.Member, error) {
	goalID, err := pkg.ParseULID(mdb.GoalId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	userID, err := pkg.ParseUserID(mdb.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &goal.Member{
		GoalId:   goalID,
		UserId:   userID,
		Role:     goal.Role(mdb.Role),
		JoinedAt: mdb.JoinedAt,
	}, nil
}

func (r *GoalRepository) AddMember(ctx context.Context, member *goal.Member) error {
	mdb := &goalMemberDB{
		GoalId:   member.GoalId.String(),
		UserId:   member.UserId.String(),
		Role:     string(member.Role),
		JoinedAt: member.JoinedAt,
	}
	if err := conn(ctx, r.DB).Create(mdb).Error; err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewConflictError("Membro")
		}
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *GoalRepository) GetMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
	return findMember(conn(ctx, r.DB), goalID, userID)
}

func findMember(db *gorm.DB, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
	var mdb goalMemberDB
	err := db.Where("goal_id = ? AND user_id = ?", goalID.String(), userID.String()).First(&mdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrMemberNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainMember(&mdb)
}

func (r *GoalRepository) ListMembers(ctx context.Context, goalID ulid.ULID) ([]*goal.Member, error) {
	var rows []goalMemberDB
	if err := conn(ctx, r.DB).
		Where("goal_id = ?", goalID.String()).
		Order("joined_at ASC").
		Find(&rows).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	out := make([]*goal.Member, 0, len(rows))
	for i := range rows {
		m, err := toDomainMember(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *GoalRepository) UpdateMemberRole(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, role goal.Role) error {
	result := conn(ctx, r.DB).Model(&goalMemberDB{}).
		Where("goal_id = ? AND user_id = ?", goalID.String(), userID.String()).
		Update("role", string(role))
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrMemberNotFound
	}
	return nil
}

func (r *GoalRepository) RemoveMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) error {
	result := conn(ctx, r.DB).
		Where("goal_id = ? AND user_id = ?", goalID.String(), userID.String()).
		Delete(&goalMemberDB{})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrMemberNotFound
	}
	return nil
}

func (r *GoalRepository) CountMembersByRole(ctx context.Context, goalID ulid.ULID, role goal.Role) (int64, error) {
	var count int64
	if err := conn(ctx, r.DB).Model(&goalMemberDB{}).
		Where("goal_id = ? AND role = ?", goalID.String(), string(role)).
		Count(&count).Error; err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}

type invitationDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	GoalId    string    `gorm:"type:varchar(26);index;not null"`
	InvitedBy string    `gorm:"type:uuid;not null"`
	Role      string    `gorm:"type:varchar(20);not null"`
	TokenHash string    `gorm:"type:varchar(100);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	ClaimedBy *string   `gorm:"type:uuid"`
	ClaimedAt *time.Time
	CreatedAt time.Time `gorm:"not null"`
}

func (invitationDB) TableName() string {
	return "goal_invitations"
}

func toDomainInvitation(idb *invitationDB) (*goal.Invitation, error) {
	id, err := pkg.ParseULID(idb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	goalID, err := pkg.ParseULID(idb.GoalId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	invitedBy, err := pkg.ParseUserID(idb.InvitedBy)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	inv := &goal.Invitation{
		Id:        id,
		GoalId:    goalID,
		InvitedBy: invitedBy,
		Role:      goal.Role(idb.Role),
		TokenHash: idb.TokenHash,
		ExpiresAt: idb.ExpiresAt,
		ClaimedAt: idb.ClaimedAt,
		CreatedAt: idb.CreatedAt,
	}
	if idb.ClaimedBy != nil {
		claimedBy, err := pkg.ParseUserID(*idb.ClaimedBy)
		if err != nil {
			return nil, appErrors.ErrInternalServer.WithError(err)
		}
		inv.ClaimedBy = &claimedBy
	}
	return inv, nil
}

func (r *GoalRepository) CreateInvitation(ctx context.Context, invitation *goal.Invitation) error {
	idb := &invitationDB{
		Id:        invitation.Id.String(),
		GoalId:    invitation.GoalId.String(),
		InvitedBy: invitation.InvitedBy.String(),
		Role:      string(invitation.Role),
		TokenHash: invitation.TokenHash,
		ExpiresAt: invitation.ExpiresAt,
		CreatedAt: invitation.CreatedAt,
	}
	if err := conn(ctx, r.DB).Create(idb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *GoalRepository) GetInvitationForUpdate(ctx context.Context, id ulid.ULID) (*goal.Invitation, error) {
	var idb invitationDB
	err := conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id.String()).
		First(&idb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrInvitationInvalid
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainInvitation(&idb)
}

func (r *GoalRepository) MarkInvitationClaimed(ctx context.Context, id ulid.ULID, userID uuid.UUID, claimedAt time.Time) error {
	result := conn(ctx, r.DB).Model(&invitationDB{}).
		Where("id = ? AND claimed_at IS NULL", id.String()).
		Updates(map[string]interface{}{
			"claimed_by": userID.String(),
			"claimed_at": claimedAt,
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrInvitationInvalid
	}
	return nil
}

type contributionDB struct {
	Id        string          `gorm:"type:varchar(26);primaryKey"`
	GoalId    string          `gorm:"type:varchar(26);index:idx_contributions_goal_user;not null"`
	UserId    string          `gorm:"type:uuid;index:idx_contributions_goal_user;not null"`
	WalletId  string          `gorm:"type:varchar(26);index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Notes     string          `gorm:"type:varchar(255)"`
	CreatedAt time.Time       `gorm:"not null"`
}

func (contributionDB) TableName() string {
	return "goal_contributions"
}

func toDomainContribution(cdb *contributionDB) (*goal.Contribution, error) {
	id, err := pkg.ParseULID(cdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	goalID, err := pkg.ParseULID(cdb.GoalId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	userID, err := pkg.ParseUserID(cdb.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	walletID, err := pkg.ParseULID(cdb.WalletId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &goal.Contribution{
		Id:        id,
		GoalId:    goalID,
		UserId:    userID,
		WalletId:  walletID,
		Amount:    cdb.Amount,
		Notes:     cdb.Notes,
		CreatedAt: cdb.CreatedAt,
	}, nil
}

func toDBContribution(c *goal.Contribution) *contributionDB {
	return &contributionDB{
		Id:        c.Id.String(),
		GoalId:    c.GoalId.String(),
		UserId:    c.UserId.String(),
		WalletId:  c.WalletId.String(),
		Amount:    c.Amount,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func (r *GoalRepository) CreateContribution(ctx context.Context, c *goal.Contribution) error {
	if err := conn(ctx, r.DB).Create(toDBContribution(c)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *GoalRepository) GetContributionsByGoalID(ctx context.Context, goalID ulid.ULID) ([]*goal.Contribution, error) {
	var rows []contributionDB
	if err := conn(ctx, r.DB).
		Where("goal_id = ?", goalID.String()).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	out := make([]*goal.Contribution, 0, len(rows))
	for i := range rows {
		c, err := toDomainContribution(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type activityDB struct {
	Id        string            `gorm:"type:varchar(26);primaryKey"`
	GoalId    string            `gorm:"type:varchar(26);index;not null"`
	UserId    string            `gorm:"type:uuid;not null"`
	Action    string            `gorm:"type:varchar(40);not null"`
	Details   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time         `gorm:"not null"`
}

func (activityDB) TableName() string {
	return "goal_activities"
}

func toDomainActivity(adb *activityDB) (*goal.Activity, error) {
	id, err := pkg.ParseULID(adb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	goalID, err := pkg.ParseULID(adb.GoalId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	userID, err := pkg.ParseUserID(adb.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	details := map[string]interface{}(adb.Details)
	if details == nil {
		details = map[string]interface{}{}
	}
	return &goal.Activity{
		Id:        id,
		GoalId:    goalID,
		UserId:    userID,
		Action:    adb.Action,
		Details:   details,
		CreatedAt: adb.CreatedAt,
	}, nil
}

func (r *GoalRepository) CreateActivity(ctx context.Context, activity *goal.Activity) error {
	details := datatypes.JSONMap(activity.Details)
	if details == nil {
		details = datatypes.JSONMap{}
	}
	adb := &activityDB{
		Id:        activity.Id.String(),
		GoalId:    activity.GoalId.String(),
		UserId:    activity.UserId.String(),
		Action:    activity.Action,
		Details:   details,
		CreatedAt: activity.CreatedAt,
	}
	if err := conn(ctx, r.DB).Create(adb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *GoalRepository) ListActivities(ctx context.Context, goalID ulid.ULID, pagination *pkg.PaginationParams) ([]*goal.Activity, int64, error) {
	baseQuery := conn(ctx, r.DB).Model(&activityDB{}).Where("goal_id = ?", goalID.String())
	return pkg.Paginate(baseQuery, "goal_activities", pagination, pkg.SortNewest, toDomainActivity)
}
