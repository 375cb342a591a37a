package goal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"Caixinha/internal/domain/goal"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type fakeGoalRepository struct {
	createFn                 func(ctx context.Context, g *goal.Goal) error
	updateFn                 func(ctx context.Context, g *goal.Goal) error
	updateFieldsFn           func(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error
	getByIDFn                func(ctx context.Context, id ulid.ULID) (*goal.Goal, error)
	lockGoalFn               func(ctx context.Context, id ulid.ULID) (*goal.Goal, error)
	getByMemberFn            func(ctx context.Context, userID uuid.UUID, filters *goal.GoalFilters, pagination *pkg.PaginationParams) ([]*goal.Goal, int64, error)
	recalculateFn            func(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error)
	getMemberFn              func(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error)
	addMemberFn              func(ctx context.Context, member *goal.Member) error
	updateMemberRoleFn       func(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, role goal.Role) error
	removeMemberFn           func(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) error
	countMembersByRoleFn     func(ctx context.Context, goalID ulid.ULID, role goal.Role) (int64, error)
	createInvitationFn       func(ctx context.Context, invitation *goal.Invitation) error
	getInvitationForUpdateFn func(ctx context.Context, id ulid.ULID) (*goal.Invitation, error)
	markInvitationClaimedFn  func(ctx context.Context, id ulid.ULID, userID uuid.UUID, claimedAt time.Time) error
	createContributionFn     func(ctx context.Context, contribution *goal.Contribution) error

	activities []*goal.Activity
}

func (f *fakeGoalRepository) Create(ctx context.Context, g *goal.Goal) error {
	if f.createFn != nil {
		return f.createFn(ctx, g)
	}
	return nil
}

func (f *fakeGoalRepository) Update(ctx context.Context, g *goal.Goal) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, g)
	}
	return nil
}

func (f *fakeGoalRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	if f.updateFieldsFn != nil {
		return f.updateFieldsFn(ctx, id, fields)
	}
	return nil
}

func (f *fakeGoalRepository) GetByID(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, appErrors.ErrGoalNotFound
}

func (f *fakeGoalRepository) LockGoal(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
	if f.lockGoalFn != nil {
		return f.lockGoalFn(ctx, id)
	}
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return &goal.Goal{Id: id, Status: goal.Active}, nil
}

func (f *fakeGoalRepository) GetByMember(ctx context.Context, userID uuid.UUID, filters *goal.GoalFilters, pagination *pkg.PaginationParams) ([]*goal.Goal, int64, error) {
	if f.getByMemberFn != nil {
		return f.getByMemberFn(ctx, userID, filters, pagination)
	}
	return nil, 0, nil
}

func (f *fakeGoalRepository) RecalculateCurrentAmount(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error) {
	if f.recalculateFn != nil {
		return f.recalculateFn(ctx, goalID)
	}
	return decimal.Zero, nil
}

func (f *fakeGoalRepository) GetMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
	if f.getMemberFn != nil {
		return f.getMemberFn(ctx, goalID, userID)
	}
	return nil, appErrors.ErrMemberNotFound
}

func (f *fakeGoalRepository) AddMember(ctx context.Context, member *goal.Member) error {
	if f.addMemberFn != nil {
		return f.addMemberFn(ctx, member)
	}
	return nil
}

func (f *fakeGoalRepository) ListMembers(ctx context.Context, goalID ulid.ULID) ([]*goal.Member, error) {
	return nil, nil
}

func (f *fakeGoalRepository) UpdateMemberRole(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, role goal.Role) error {
	if f.updateMemberRoleFn != nil {
		return f.updateMemberRoleFn(ctx, goalID, userID, role)
	}
	return nil
}

func (f *fakeGoalRepository) RemoveMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) error {
	if f.removeMemberFn != nil {
		return f.removeMemberFn(ctx, goalID, userID)
	}
	return nil
}

func (f *fakeGoalRepository) CountMembersByRole(ctx context.Context, goalID ulid.ULID, role goal.Role) (int64, error) {
	if f.countMembersByRoleFn != nil {
		return f.countMembersByRoleFn(ctx, goalID, role)
	}
	return 0, nil
}

func (f *fakeGoalRepository) CreateInvitation(ctx context.Context, invitation *goal.Invitation) error {
	if f.createInvitationFn != nil {
		return f.createInvitationFn(ctx, invitation)
	}
	return nil
}

func (f *fakeGoalRepository) GetInvitationForUpdate(ctx context.Context, id ulid.ULID) (*goal.Invitation, error) {
	if f.getInvitationForUpdateFn != nil {
		return f.getInvitationForUpdateFn(ctx, id)
	}
	return nil, appErrors.ErrInvitationInvalid
}

func (f *fakeGoalRepository) MarkInvitationClaimed(ctx context.Context, id ulid.ULID, userID uuid.UUID, claimedAt time.Time) error {
	if f.markInvitationClaimedFn != nil {
		return f.markInvitationClaimedFn(ctx, id, userID, claimedAt)
	}
	return nil
}

func (f *fakeGoalRepository) CreateContribution(ctx context.Context, contribution *goal.Contribution) error {
	if f.createContributionFn != nil {
		return f.createContributionFn(ctx, contribution)
	}
	return nil
}

func (f *fakeGoalRepository) GetContributionsByGoalID(ctx context.Context, goalID ulid.ULID) ([]*goal.Contribution, error) {
	return nil, nil
}

func (f *fakeGoalRepository) CreateActivity(ctx context.Context, activity *goal.Activity) error {
	f.activities = append(f.activities, activity)
	return nil
}

func (f *fakeGoalRepository) ListActivities(ctx context.Context, goalID ulid.ULID, pagination *pkg.PaginationParams) ([]*goal.Activity, int64, error) {
	return f.activities, int64(len(f.activities)), nil
}

func (f *fakeGoalRepository) actions() []string {
	out := make([]string, 0, len(f.activities))
	for _, a := range f.activities {
		out = append(out, a.Action)
	}
	return out
}

type fakeWalletDebiter struct {
	debitFn func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error
}

func (f *fakeWalletDebiter) Debit(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error {
	if f.debitFn != nil {
		return f.debitFn(ctx, walletID, userID, amount)
	}
	return nil
}

type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func memberWithRole(goalID ulid.ULID, role goal.Role) func(ctx context.Context, id ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
	return func(ctx context.Context, id ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
		if id != goalID {
			return nil, appErrors.ErrMemberNotFound
		}
		return &goal.Member{GoalId: id, UserId: userID, Role: role}, nil
	}
}

func TestCreateGoalAddsOwnerMembership(t *testing.T) {
	t.Parallel()

	var added *goal.Member
	repo := &fakeGoalRepository{
		addMemberFn: func(ctx context.Context, member *goal.Member) error {
			added = member
			return nil
		},
	}
	tx := &fakeTransactor{}
	svc := goal.NewService(repo, &fakeWalletDebiter{}, tx)
	userID := uuid.New()

	created, err := svc.CreateGoal(context.Background(), &goal.CreateGoalRequest{
		UserId:       userID,
		Name:         "  Viagem   para Lisboa ",
		TargetAmount: decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Name != "Viagem para Lisboa" {
		t.Fatalf("expected normalized name, got %q", created.Name)
	}
	if created.Status != goal.Active || !created.CurrentAmount.IsZero() {
		t.Fatalf("unexpected initial state: %+v", created)
	}
	if added == nil || added.Role != goal.RoleOwner || added.UserId != userID || added.GoalId != created.Id {
		t.Fatalf("expected owner membership, got %+v", added)
	}
	if tx.calls != 1 {
		t.Fatalf("expected a single transaction, got %d", tx.calls)
	}
	if actions := repo.actions(); len(actions) != 1 || actions[0] != goal.ActionGoalCreated {
		t.Fatalf("unexpected activities: %v", actions)
	}
}

func TestCreateGoalValidation(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	tests := []struct {
		name string
		req  *goal.CreateGoalRequest
		code string
	}{
		{name: "sem usuário", req: &goal.CreateGoalRequest{Name: "Meta", TargetAmount: decimal.NewFromInt(1)}, code: "UNAUTHORIZED"},
		{name: "nome vazio", req: &goal.CreateGoalRequest{UserId: uuid.New(), Name: "  ", TargetAmount: decimal.NewFromInt(1)}, code: "VALIDATION_ERROR"},
		{name: "alvo zero", req: &goal.CreateGoalRequest{UserId: uuid.New(), Name: "Meta"}, code: "VALIDATION_ERROR"},
		{name: "prazo no passado", req: &goal.CreateGoalRequest{UserId: uuid.New(), Name: "Meta", TargetAmount: decimal.NewFromInt(1), Deadline: &past}, code: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := goal.NewService(&fakeGoalRepository{}, &fakeWalletDebiter{}, &fakeTransactor{})
			_, err := svc.CreateGoal(context.Background(), tt.req)
			appErr, ok := appErrors.AsAppError(err)
			if !ok || appErr.Code != tt.code {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestMakeContributionCompletesGoal(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	walletID := pkg.GenerateULIDObject()
	userID := uuid.New()

	var debited decimal.Decimal
	var status interface{}
	var stored *goal.Contribution
	repo := &fakeGoalRepository{
		getMemberFn: memberWithRole(goalID, goal.RoleEditor),
		getByIDFn: func(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
			return &goal.Goal{Id: id, Status: goal.Active, TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(800)}, nil
		},
		createContributionFn: func(ctx context.Context, c *goal.Contribution) error {
			stored = c
			return nil
		},
		recalculateFn: func(ctx context.Context, id ulid.ULID) (decimal.Decimal, error) {
			return decimal.NewFromInt(1000), nil
		},
		updateFieldsFn: func(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
			status = fields["status"]
			return nil
		},
	}
	wallets := &fakeWalletDebiter{
		debitFn: func(ctx context.Context, id ulid.ULID, uid uuid.UUID, amount decimal.Decimal) error {
			if id != walletID || uid != userID {
				t.Fatalf("unexpected wallet debit target")
			}
			debited = amount
			return nil
		},
	}
	svc := goal.NewService(repo, wallets, &fakeTransactor{})

	contribution, err := svc.MakeContribution(context.Background(), &goal.CreateContributionRequest{
		GoalId:   goalID,
		UserId:   userID,
		WalletId: walletID,
		Amount:   decimal.NewFromInt(200),
		Notes:    " aporte de junho ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !debited.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected wallet debit of 200, got %s", debited)
	}
	if stored == nil || stored.Id != contribution.Id || stored.Notes != "aporte de junho" {
		t.Fatalf("contribution not stored as expected: %+v", stored)
	}
	if status != goal.Completed {
		t.Fatalf("expected goal to be completed, got %v", status)
	}
	actions := repo.actions()
	if len(actions) != 2 || actions[0] != goal.ActionContribution || actions[1] != goal.ActionGoalCompleted {
		t.Fatalf("unexpected activities: %v", actions)
	}
}

func TestMakeContributionRejections(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	activeGoal := func(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
		return &goal.Goal{Id: id, Status: goal.Active, TargetAmount: decimal.NewFromInt(100)}, nil
	}
	archivedGoal := func(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
		return &goal.Goal{Id: id, Status: goal.Archived, TargetAmount: decimal.NewFromInt(100)}, nil
	}

	tests := []struct {
		name    string
		role    goal.Role
		getGoal func(ctx context.Context, id ulid.ULID) (*goal.Goal, error)
		amount  decimal.Decimal
		debit   error
		want    string
	}{
		{name: "valor zero", role: goal.RoleOwner, getGoal: activeGoal, amount: decimal.Zero, want: "VALIDATION_ERROR"},
		{name: "fração de centavo", role: goal.RoleOwner, getGoal: activeGoal, amount: decimal.RequireFromString("10.005"), want: "VALIDATION_ERROR"},
		{name: "leitor", role: goal.RoleViewer, getGoal: activeGoal, amount: decimal.NewFromInt(10), want: "FORBIDDEN"},
		{name: "meta arquivada", role: goal.RoleOwner, getGoal: archivedGoal, amount: decimal.NewFromInt(10), want: "GOAL_NOT_ACTIVE"},
		{name: "carteira inexistente", role: goal.RoleOwner, getGoal: activeGoal, amount: decimal.NewFromInt(10), debit: appErrors.ErrWalletNotFound, want: "WALLET_NOT_FOUND"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			created := false
			repo := &fakeGoalRepository{
				getMemberFn: memberWithRole(goalID, tt.role),
				getByIDFn:   tt.getGoal,
				createContributionFn: func(ctx context.Context, c *goal.Contribution) error {
					created = true
					return nil
				},
			}
			wallets := &fakeWalletDebiter{
				debitFn: func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error {
					return tt.debit
				},
			}
			svc := goal.NewService(repo, wallets, &fakeTransactor{})

			_, err := svc.MakeContribution(context.Background(), &goal.CreateContributionRequest{
				GoalId:   goalID,
				UserId:   uuid.New(),
				WalletId: pkg.GenerateULIDObject(),
				Amount:   tt.amount,
			})
			appErr, ok := appErrors.AsAppError(err)
			if !ok || appErr.Code != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
			if created {
				t.Fatalf("contribution must not be stored")
			}
		})
	}
}

func TestGetGoalHidesNonMembers(t *testing.T) {
	t.Parallel()

	svc := goal.NewService(&fakeGoalRepository{}, &fakeWalletDebiter{}, &fakeTransactor{})
	_, err := svc.GetGoalByID(context.Background(), pkg.GenerateULIDObject(), uuid.New())
	if !errors.Is(err, appErrors.ErrGoalNotFound) {
		t.Fatalf("expected goal not found, got %v", err)
	}
}

func TestGetGoalProgress(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	repo := &fakeGoalRepository{
		getMemberFn: memberWithRole(goalID, goal.RoleViewer),
		getByIDFn: func(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
			return &goal.Goal{Id: id, Name: "Carro", Status: goal.Active, TargetAmount: decimal.NewFromInt(400), CurrentAmount: decimal.NewFromInt(100)}, nil
		},
	}
	svc := goal.NewService(repo, &fakeWalletDebiter{}, &fakeTransactor{})

	progress, err := svc.GetGoalProgress(context.Background(), goalID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Percentage != 25 || !progress.Remaining.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestInvitationRoundTrip(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	ownerID := uuid.New()
	guestID := uuid.New()

	var stored *goal.Invitation
	var joined *goal.Member
	repo := &fakeGoalRepository{
		getMemberFn: func(ctx context.Context, id ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
			if userID == ownerID {
				return &goal.Member{GoalId: id, UserId: userID, Role: goal.RoleOwner}, nil
			}
			if joined != nil && joined.UserId == userID {
				return joined, nil
			}
			return nil, appErrors.ErrMemberNotFound
		},
		createInvitationFn: func(ctx context.Context, invitation *goal.Invitation) error {
			stored = invitation
			return nil
		},
		getInvitationForUpdateFn: func(ctx context.Context, id ulid.ULID) (*goal.Invitation, error) {
			if stored == nil || stored.Id != id {
				return nil, appErrors.ErrInvitationInvalid
			}
			return stored, nil
		},
		addMemberFn: func(ctx context.Context, member *goal.Member) error {
			joined = member
			return nil
		},
		markInvitationClaimedFn: func(ctx context.Context, id ulid.ULID, userID uuid.UUID, claimedAt time.Time) error {
			stored.ClaimedBy = &userID
			stored.ClaimedAt = &claimedAt
			return nil
		},
	}
	svc := goal.NewService(repo, &fakeWalletDebiter{}, &fakeTransactor{})

	issued, err := svc.CreateInvitation(context.Background(), goalID, ownerID, goal.RoleViewer, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.TokenHash == "" || stored.TokenHash == issued.Token {
		t.Fatalf("token must be stored hashed")
	}

	member, err := svc.ClaimInvitation(context.Background(), issued.Token, guestID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member.Role != goal.RoleViewer || member.GoalId != goalID {
		t.Fatalf("unexpected member: %+v", member)
	}

	_, err = svc.ClaimInvitation(context.Background(), issued.Token, uuid.New())
	if !errors.Is(err, appErrors.ErrInvitationInvalid) {
		t.Fatalf("expected claimed invitation to be rejected, got %v", err)
	}
}

func TestClaimInvitationRejectsBadTokens(t *testing.T) {
	t.Parallel()

	id := pkg.GenerateULIDObject()
	expired := &goal.Invitation{Id: id, GoalId: pkg.GenerateULIDObject(), Role: goal.RoleEditor, ExpiresAt: time.Now().Add(-time.Minute)}
	repo := &fakeGoalRepository{
		getInvitationForUpdateFn: func(ctx context.Context, invitationID ulid.ULID) (*goal.Invitation, error) {
			return expired, nil
		},
	}
	svc := goal.NewService(repo, &fakeWalletDebiter{}, &fakeTransactor{})

	for _, token := range []string{"", "sem-separador", "nao-e-ulid.segredo", id.String() + ".segredo"} {
		_, err := svc.ClaimInvitation(context.Background(), token, uuid.New())
		if !errors.Is(err, appErrors.ErrInvitationInvalid) {
			t.Fatalf("token %q: expected invalid invitation, got %v", token, err)
		}
	}
}

func TestRemoveMemberKeepsAnOwner(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	ownerID := uuid.New()
	removed := false
	repo := &fakeGoalRepository{
		getMemberFn: memberWithRole(goalID, goal.RoleOwner),
		countMembersByRoleFn: func(ctx context.Context, id ulid.ULID, role goal.Role) (int64, error) {
			return 1, nil
		},
		removeMemberFn: func(ctx context.Context, id ulid.ULID, userID uuid.UUID) error {
			removed = true
			return nil
		},
	}
	svc := goal.NewService(repo, &fakeWalletDebiter{}, &fakeTransactor{})

	err := svc.RemoveMember(context.Background(), goalID, ownerID, ownerID)
	appErr, ok := appErrors.AsAppError(err)
	if !ok || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if removed {
		t.Fatalf("last owner must not be removed")
	}
}

func TestRemoveMemberRequiresOwner(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	svc := goal.NewService(&fakeGoalRepository{getMemberFn: memberWithRole(goalID, goal.RoleEditor)}, &fakeWalletDebiter{}, &fakeTransactor{})

	err := svc.RemoveMember(context.Background(), goalID, uuid.New(), uuid.New())
	appErr, ok := appErrors.AsAppError(err)
	if !ok || appErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	ownerID := uuid.New()
	editorID := uuid.New()
	var changedTo goal.Role
	repo := &fakeGoalRepository{
		getMemberFn: func(ctx context.Context, id ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
			if userID == ownerID {
				return &goal.Member{GoalId: id, UserId: userID, Role: goal.RoleOwner}, nil
			}
			return &goal.Member{GoalId: id, UserId: userID, Role: goal.RoleEditor}, nil
		},
		updateMemberRoleFn: func(ctx context.Context, id ulid.ULID, userID uuid.UUID, role goal.Role) error {
			changedTo = role
			return nil
		},
	}
	svc := goal.NewService(repo, &fakeWalletDebiter{}, &fakeTransactor{})

	if err := svc.UpdateMemberRole(context.Background(), goalID, ownerID, editorID, goal.RoleViewer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changedTo != goal.RoleViewer {
		t.Fatalf("expected viewer, got %s", changedTo)
	}
	if err := svc.UpdateMemberRole(context.Background(), goalID, ownerID, editorID, goal.Role("admin")); err == nil {
		t.Fatalf("expected invalid role error")
	}
}
