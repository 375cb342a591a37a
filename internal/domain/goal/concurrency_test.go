package goal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"Caixinha/internal/domain/goal"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// committedStore imita o Postgres em READ COMMITTED: escritas ficam
// pendentes na transação e só aparecem para as outras no commit, e
// LockGoal segura a linha da meta até o fim da transação.
type committedStore struct {
	*fakeGoalRepository

	mu            sync.Mutex
	goalLock      sync.Mutex
	goal          goal.Goal
	contributions []decimal.Decimal
	members       map[uuid.UUID]goal.Role
	activities    int
}

type pendingTx struct {
	holdsGoal     bool
	contributions []decimal.Decimal
	currentAmount *decimal.Decimal
	status        *goal.GoalStatus
	roles         map[uuid.UUID]goal.Role
	removed       map[uuid.UUID]bool
}

type pendingTxKey struct{}

func pendingFrom(ctx context.Context) *pendingTx {
	tx, _ := ctx.Value(pendingTxKey{}).(*pendingTx)
	return tx
}

func newCommittedStore(g goal.Goal, members map[uuid.UUID]goal.Role) *committedStore {
	return &committedStore{
		fakeGoalRepository: &fakeGoalRepository{},
		goal:               g,
		members:            members,
	}
}

func (s *committedStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := &pendingTx{roles: map[uuid.UUID]goal.Role{}, removed: map[uuid.UUID]bool{}}
	err := fn(context.WithValue(ctx, pendingTxKey{}, tx))
	if err == nil {
		s.commit(tx)
	}
	if tx.holdsGoal {
		s.goalLock.Unlock()
	}
	return err
}

func (s *committedStore) commit(tx *pendingTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions = append(s.contributions, tx.contributions...)
	if tx.currentAmount != nil {
		s.goal.CurrentAmount = *tx.currentAmount
	}
	if tx.status != nil {
		s.goal.Status = *tx.status
	}
	for id, role := range tx.roles {
		s.members[id] = role
	}
	for id := range tx.removed {
		delete(s.members, id)
	}
}

func (s *committedStore) LockGoal(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
	if tx := pendingFrom(ctx); tx != nil && !tx.holdsGoal {
		s.goalLock.Lock()
		tx.holdsGoal = true
	}
	return s.GetByID(ctx, id)
}

func (s *committedStore) GetByID(ctx context.Context, id ulid.ULID) (*goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.goal.Id {
		return nil, appErrors.ErrGoalNotFound
	}
	found := s.goal
	return &found, nil
}

func (s *committedStore) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	if status, ok := fields["status"].(goal.GoalStatus); ok {
		pendingFrom(ctx).status = &status
	}
	return nil
}

func (s *committedStore) CreateContribution(ctx context.Context, c *goal.Contribution) error {
	tx := pendingFrom(ctx)
	tx.contributions = append(tx.contributions, c.Amount)
	return nil
}

func (s *committedStore) RecalculateCurrentAmount(ctx context.Context, goalID ulid.ULID) (decimal.Decimal, error) {
	tx := pendingFrom(ctx)

	s.mu.Lock()
	total := decimal.Zero
	for _, amount := range s.contributions {
		total = total.Add(amount)
	}
	s.mu.Unlock()
	for _, amount := range tx.contributions {
		total = total.Add(amount)
	}

	// alarga a janela entre a soma e o commit
	time.Sleep(time.Millisecond)
	tx.currentAmount = &total
	return total, nil
}

func (s *committedStore) GetMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error) {
	role, ok := s.roleOf(ctx, userID)
	if !ok || goalID != s.goal.Id {
		return nil, appErrors.ErrMemberNotFound
	}
	return &goal.Member{GoalId: goalID, UserId: userID, Role: role}, nil
}

func (s *committedStore) roleOf(ctx context.Context, userID uuid.UUID) (goal.Role, bool) {
	if tx := pendingFrom(ctx); tx != nil {
		if tx.removed[userID] {
			return "", false
		}
		if role, ok := tx.roles[userID]; ok {
			return role, true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.members[userID]
	return role, ok
}

func (s *committedStore) UpdateMemberRole(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, role goal.Role) error {
	pendingFrom(ctx).roles[userID] = role
	return nil
}

func (s *committedStore) RemoveMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) error {
	pendingFrom(ctx).removed[userID] = true
	return nil
}

func (s *committedStore) CountMembersByRole(ctx context.Context, goalID ulid.ULID, role goal.Role) (int64, error) {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var count int64
	for _, id := range ids {
		if r, ok := s.roleOf(ctx, id); ok && r == role {
			count++
		}
	}
	time.Sleep(time.Millisecond)
	return count, nil
}

func (s *committedStore) CreateActivity(ctx context.Context, activity *goal.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities++
	return nil
}

func (s *committedStore) owners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, role := range s.members {
		if role == goal.RoleOwner {
			count++
		}
	}
	return count
}

func runTogether(n int, fn func(i int) error) []error {
	start := make(chan struct{})
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestConcurrentContributionsKeepCurrentAmount(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	const contributors = 20
	members := map[uuid.UUID]goal.Role{}
	ids := make([]uuid.UUID, contributors)
	for i := range ids {
		ids[i] = uuid.New()
		members[ids[i]] = goal.RoleEditor
	}
	store := newCommittedStore(goal.Goal{
		Id:           goalID,
		Status:       goal.Active,
		TargetAmount: decimal.NewFromInt(1000000),
	}, members)
	svc := goal.NewService(store, &fakeWalletDebiter{}, store)

	errs := runTogether(contributors, func(i int) error {
		_, err := svc.MakeContribution(context.Background(), &goal.CreateContributionRequest{
			GoalId:   goalID,
			UserId:   ids[i],
			WalletId: pkg.GenerateULIDObject(),
			Amount:   decimal.NewFromInt(10),
		})
		return err
	})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	g, _ := store.GetByID(context.Background(), goalID)
	if !g.CurrentAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected current amount 200, got %s", g.CurrentAmount)
	}
	if len(store.contributions) != contributors {
		t.Fatalf("expected %d contributions, got %d", contributors, len(store.contributions))
	}
}

func TestConcurrentContributionsCompleteGoal(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	first, second := uuid.New(), uuid.New()
	store := newCommittedStore(goal.Goal{
		Id:           goalID,
		Status:       goal.Active,
		TargetAmount: decimal.NewFromInt(100),
	}, map[uuid.UUID]goal.Role{first: goal.RoleOwner, second: goal.RoleEditor})
	svc := goal.NewService(store, &fakeWalletDebiter{}, store)

	users := []uuid.UUID{first, second}
	errs := runTogether(2, func(i int) error {
		_, err := svc.MakeContribution(context.Background(), &goal.CreateContributionRequest{
			GoalId:   goalID,
			UserId:   users[i],
			WalletId: pkg.GenerateULIDObject(),
			Amount:   decimal.NewFromInt(60),
		})
		return err
	})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	g, _ := store.GetByID(context.Background(), goalID)
	if !g.CurrentAmount.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected current amount 120, got %s", g.CurrentAmount)
	}
	if g.Status != goal.Completed {
		t.Fatalf("expected completed goal, got %s", g.Status)
	}
}

func TestContributionAfterArchiveIsRejected(t *testing.T) {
	t.Parallel()

	goalID := pkg.GenerateULIDObject()
	owner, editor := uuid.New(), uuid.New()
	store := newCommittedStore(goal.Goal{
		Id:           goalID,
		Status:       goal.Active,
		TargetAmount: decimal.NewFromInt(100),
	}, map[uuid.UUID]goal.Role{owner: goal.RoleOwner, editor: goal.RoleEditor})
	svc := goal.NewService(store, &fakeWalletDebiter{}, store)

	if err := svc.ArchiveGoal(context.Background(), goalID, owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.MakeContribution(context.Background(), &goal.CreateContributionRequest{
		GoalId:   goalID,
		UserId:   editor,
		WalletId: pkg.GenerateULIDObject(),
		Amount:   decimal.NewFromInt(10),
	})
	if appErr, ok := appErrors.AsAppError(err); !ok || appErr.Code != "GOAL_NOT_ACTIVE" {
		t.Fatalf("expected GOAL_NOT_ACTIVE, got %v", err)
	}
	if len(store.contributions) != 0 {
		t.Fatalf("no contribution expected on archived goal")
	}
}

func TestConcurrentOwnerChangesKeepAnOwner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		act  func(svc *goal.Service, goalID ulid.ULID, actor, target uuid.UUID) error
	}{
		{
			name: "rebaixamento mútuo",
			act: func(svc *goal.Service, goalID ulid.ULID, actor, target uuid.UUID) error {
				return svc.UpdateMemberRole(context.Background(), goalID, actor, target, goal.RoleEditor)
			},
		},
		{
			name: "remoção mútua",
			act: func(svc *goal.Service, goalID ulid.ULID, actor, target uuid.UUID) error {
				return svc.RemoveMember(context.Background(), goalID, actor, target)
			},
		},
		{
			name: "ambos saem",
			act: func(svc *goal.Service, goalID ulid.ULID, actor, target uuid.UUID) error {
				return svc.RemoveMember(context.Background(), goalID, actor, actor)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			goalID := pkg.GenerateULIDObject()
			a, b := uuid.New(), uuid.New()
			store := newCommittedStore(goal.Goal{Id: goalID, Status: goal.Active},
				map[uuid.UUID]goal.Role{a: goal.RoleOwner, b: goal.RoleOwner})
			svc := goal.NewService(store, &fakeWalletDebiter{}, store)

			pairs := [][2]uuid.UUID{{a, b}, {b, a}}
			errs := runTogether(2, func(i int) error {
				return tt.act(svc, goalID, pairs[i][0], pairs[i][1])
			})

			failures := 0
			for _, err := range errs {
				if err == nil {
					continue
				}
				failures++
				// quem chega depois do commit do outro já perdeu o papel na checagem inicial
				appErr, ok := appErrors.AsAppError(err)
				if !ok {
					t.Fatalf("expected app error, got %v", err)
				}
				switch appErr.Code {
				case "VALIDATION_ERROR", "FORBIDDEN", "GOAL_NOT_FOUND":
				default:
					t.Fatalf("unexpected error code %s", appErr.Code)
				}
			}
			if failures != 1 {
				t.Fatalf("expected exactly one rejected change, got %d", failures)
			}
			if store.owners() != 1 {
				t.Fatalf("expected one owner left, got %d", store.owners())
			}
		})
	}
}
