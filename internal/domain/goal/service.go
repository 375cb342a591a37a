package goal

import (
	"context"
	"errors"
	"strings"
	"time"

	"Caixinha/internal/domain/shared"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/logger"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	Repository Repository
	Wallets    WalletDebiter
	Transactor shared.Transactor
}

func NewService(repo Repository, wallets WalletDebiter, transactor shared.Transactor) *Service {
	return &Service{
		Repository: repo,
		Wallets:    wallets,
		Transactor: transactor,
	}
}

// RequireMember devolve a participação do usuário na meta. Quem não é membro
// recebe GOAL_NOT_FOUND para não revelar a existência da meta.
func RequireMember(ctx context.Context, members MemberReader, goalID ulid.ULID, userID uuid.UUID) (*Member, error) {
	if userID == uuid.Nil {
		return nil, appErrors.ErrUnauthorized
	}
	member, err := members.GetMember(ctx, goalID, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrMemberNotFound) {
			return nil, appErrors.ErrGoalNotFound
		}
		return nil, err
	}
	return member, nil
}

func RequireContributor(ctx context.Context, members MemberReader, goalID ulid.ULID, userID uuid.UUID) (*Member, error) {
	member, err := RequireMember(ctx, members, goalID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanContribute() {
		return nil, appErrors.NewForbiddenError("Seu papel na meta não permite esta operação")
	}
	return member, nil
}

func (s *Service) requireOwner(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*Member, error) {
	member, err := RequireMember(ctx, s.Repository, goalID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanManage() {
		return nil, appErrors.NewForbiddenError("Apenas o dono da meta pode realizar esta operação")
	}
	return member, nil
}

func (s *Service) CreateGoal(ctx context.Context, req *CreateGoalRequest) (*Goal, error) {
	if req.UserId == uuid.Nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	entity := &Goal{
		Id:            pkg.GenerateULIDObject(),
		OwnerId:       req.UserId,
		Name:          shared.NormalizeName(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		Status:        Active,
		Deadline:      req.Deadline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repository.Create(ctx, entity); err != nil {
			return err
		}
		if err := s.Repository.AddMember(ctx, &Member{
			GoalId:   entity.Id,
			UserId:   req.UserId,
			Role:     RoleOwner,
			JoinedAt: now,
		}); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(entity.Id, req.UserId, ActionGoalCreated, map[string]interface{}{
			"name":   entity.Name,
			"target": entity.TargetAmount.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

func (s *Service) UpdateGoal(ctx context.Context, req *UpdateGoalRequest) (*Goal, error) {
	if err := ValidateUpdateGoal(req); err != nil {
		return nil, err
	}
	if _, err := RequireContributor(ctx, s.Repository, req.Id, req.UserId); err != nil {
		return nil, err
	}

	var current *Goal
	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		current, err = s.Repository.LockGoal(ctx, req.Id)
		if err != nil {
			return err
		}
		if current.Status == Archived {
			return appErrors.ErrGoalNotActive
		}

		changes := map[string]interface{}{}
		if req.Name != nil {
			current.Name = shared.NormalizeName(*req.Name)
			changes["name"] = current.Name
		}
		if req.TargetAmount != nil {
			current.TargetAmount = *req.TargetAmount
			changes["target"] = current.TargetAmount.String()
		}
		if req.Deadline != nil {
			current.Deadline = req.Deadline
			changes["deadline"] = req.Deadline.Format(time.RFC3339)
		}

		switch {
		case current.Status == Active && current.CurrentAmount.GreaterThanOrEqual(current.TargetAmount):
			current.Status = Completed
		case current.Status == Completed && current.CurrentAmount.LessThan(current.TargetAmount):
			current.Status = Active
		}
		current.UpdatedAt = time.Now()

		if err := s.Repository.Update(ctx, current); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(current.Id, req.UserId, ActionGoalUpdated, changes))
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) ArchiveGoal(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) error {
	if _, err := s.requireOwner(ctx, goalID, userID); err != nil {
		return err
	}

	return s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Repository.LockGoal(ctx, goalID); err != nil {
			return err
		}
		if err := s.Repository.UpdateFields(ctx, goalID, map[string]interface{}{
			"status":     Archived,
			"updated_at": time.Now(),
		}); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(goalID, userID, ActionGoalArchived, nil))
	})
}

func (s *Service) GetGoalByID(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*Goal, error) {
	if _, err := RequireMember(ctx, s.Repository, goalID, userID); err != nil {
		return nil, err
	}
	return s.Repository.GetByID(ctx, goalID)
}

func (s *Service) ListGoals(ctx context.Context, userID uuid.UUID, filters *GoalFilters, pagination *pkg.PaginationParams) ([]*Goal, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	return s.Repository.GetByMember(ctx, userID, filters, pagination)
}

func (s *Service) GetGoalProgress(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*GoalProgress, error) {
	goal, err := s.GetGoalByID(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}

	percentage := 0.0
	if goal.TargetAmount.IsPositive() {
		percentage, _ = goal.CurrentAmount.Div(goal.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &GoalProgress{
		GoalId:        goalID,
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Remaining:     remaining,
		Percentage:    percentage,
		Status:        goal.Status,
	}, nil
}

// MakeContribution debita a carteira, registra o aporte e recalcula o total
// da meta na mesma transação, com a linha da meta bloqueada do início ao fim.
func (s *Service) MakeContribution(ctx context.Context, req *CreateContributionRequest) (*Contribution, error) {
	if !shared.IsPositiveCents(req.Amount) {
		return nil, appErrors.NewValidationError("amount", "deve ser maior que zero, em centavos")
	}
	if pkg.IsEmptyULID(req.WalletId) {
		return nil, appErrors.NewValidationError("wallet_id", "é obrigatório")
	}
	if _, err := RequireContributor(ctx, s.Repository, req.GoalId, req.UserId); err != nil {
		return nil, err
	}

	contribution := &Contribution{
		Id:        pkg.GenerateULIDObject(),
		GoalId:    req.GoalId,
		UserId:    req.UserId,
		WalletId:  req.WalletId,
		Amount:    req.Amount,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: time.Now(),
	}

	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		goal, err := s.Repository.LockGoal(ctx, req.GoalId)
		if err != nil {
			return err
		}
		if !goal.AcceptsContributions() {
			return appErrors.ErrGoalNotActive
		}

		if err := s.Wallets.Debit(ctx, req.WalletId, req.UserId, req.Amount); err != nil {
			return err
		}
		if err := s.Repository.CreateContribution(ctx, contribution); err != nil {
			return err
		}

		total, err := s.Repository.RecalculateCurrentAmount(ctx, req.GoalId)
		if err != nil {
			return err
		}

		if err := s.Repository.CreateActivity(ctx, NewActivity(req.GoalId, req.UserId, ActionContribution, map[string]interface{}{
			"contribution_id": contribution.Id.String(),
			"amount":          req.Amount.String(),
			"wallet_id":       req.WalletId.String(),
		})); err != nil {
			return err
		}

		if goal.Status == Active && total.GreaterThanOrEqual(goal.TargetAmount) {
			if err := s.Repository.UpdateFields(ctx, req.GoalId, map[string]interface{}{
				"status":     Completed,
				"updated_at": time.Now(),
			}); err != nil {
				return err
			}
			return s.Repository.CreateActivity(ctx, NewActivity(req.GoalId, req.UserId, ActionGoalCompleted, map[string]interface{}{
				"current_amount": total.String(),
			}))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("goal_id", req.GoalId.String()).
		Str("user_id", req.UserId.String()).
		Str("amount", req.Amount.String()).
		Msg("contribution_recorded")

	return contribution, nil
}

func (s *Service) GetContributions(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) ([]*Contribution, error) {
	if _, err := RequireMember(ctx, s.Repository, goalID, userID); err != nil {
		return nil, err
	}
	return s.Repository.GetContributionsByGoalID(ctx, goalID)
}

func (s *Service) ListActivities(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, pagination *pkg.PaginationParams) ([]*Activity, int64, error) {
	if _, err := RequireMember(ctx, s.Repository, goalID, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.ListActivities(ctx, goalID, pagination)
}

func (s *Service) ListMembers(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) ([]*Member, error) {
	if _, err := RequireMember(ctx, s.Repository, goalID, userID); err != nil {
		return nil, err
	}
	return s.Repository.ListMembers(ctx, goalID)
}

func (s *Service) UpdateMemberRole(ctx context.Context, goalID ulid.ULID, actorID, targetID uuid.UUID, role Role) error {
	if !role.IsValid() {
		return appErrors.NewValidationError("role", "deve ser owner, editor ou viewer")
	}
	if _, err := s.requireOwner(ctx, goalID, actorID); err != nil {
		return err
	}

	return s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// a contagem de donos só vale com a meta bloqueada
		if _, err := s.Repository.LockGoal(ctx, goalID); err != nil {
			return err
		}
		target, err := s.Repository.GetMember(ctx, goalID, targetID)
		if err != nil {
			return err
		}
		if target.Role == role {
			return nil
		}
		if target.Role == RoleOwner {
			if err := s.ensureAnotherOwner(ctx, goalID); err != nil {
				return err
			}
		}
		if err := s.Repository.UpdateMemberRole(ctx, goalID, targetID, role); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(goalID, actorID, ActionMemberRoleChanged, map[string]interface{}{
			"member_id": targetID.String(),
			"from":      string(target.Role),
			"to":        string(role),
		}))
	})
}

// RemoveMember permite que o dono remova alguém ou que o próprio membro saia.
func (s *Service) RemoveMember(ctx context.Context, goalID ulid.ULID, actorID, targetID uuid.UUID) error {
	actor, err := RequireMember(ctx, s.Repository, goalID, actorID)
	if err != nil {
		return err
	}
	if actorID != targetID && !actor.Role.CanManage() {
		return appErrors.NewForbiddenError("Apenas o dono da meta pode remover membros")
	}

	return s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// a contagem de donos só vale com a meta bloqueada
		if _, err := s.Repository.LockGoal(ctx, goalID); err != nil {
			return err
		}
		target, err := s.Repository.GetMember(ctx, goalID, targetID)
		if err != nil {
			return err
		}
		if target.Role == RoleOwner {
			if err := s.ensureAnotherOwner(ctx, goalID); err != nil {
				return err
			}
		}
		if err := s.Repository.RemoveMember(ctx, goalID, targetID); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(goalID, actorID, ActionMemberRemoved, map[string]interface{}{
			"member_id": targetID.String(),
		}))
	})
}

// ensureAnotherOwner exige LockGoal na transação corrente.
func (s *Service) ensureAnotherOwner(ctx context.Context, goalID ulid.ULID) error {
	owners, err := s.Repository.CountMembersByRole(ctx, goalID, RoleOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return appErrors.NewValidationError("role", "a meta precisa de pelo menos um dono")
	}
	return nil
}

func (s *Service) CreateInvitation(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, role Role, ttl time.Duration) (*IssuedInvitation, error) {
	if role == "" {
		role = RoleEditor
	}
	if role != RoleEditor && role != RoleViewer {
		return nil, appErrors.NewValidationError("role", "deve ser editor ou viewer")
	}
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	if _, err := s.requireOwner(ctx, goalID, userID); err != nil {
		return nil, err
	}

	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}

	now := time.Now()
	invitation := &Invitation{
		Id:        pkg.GenerateULIDObject(),
		GoalId:    goalID,
		InvitedBy: userID,
		Role:      role,
		TokenHash: string(hash),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	err = s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repository.CreateInvitation(ctx, invitation); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(goalID, userID, ActionInvitationCreated, map[string]interface{}{
			"invitation_id": invitation.Id.String(),
			"role":          string(role),
		}))
	})
	if err != nil {
		return nil, err
	}

	return &IssuedInvitation{
		Invitation: invitation,
		Token:      formatInvitationToken(invitation.Id, secret),
	}, nil
}

// ClaimInvitation consome o convite uma única vez; o registro fica bloqueado
// durante a transação para que dois usos simultâneos não gerem dois membros.
func (s *Service) ClaimInvitation(ctx context.Context, token string, userID uuid.UUID) (*Member, error) {
	if userID == uuid.Nil {
		return nil, appErrors.ErrUnauthorized
	}
	invitationID, secret, err := parseInvitationToken(token)
	if err != nil {
		return nil, appErrors.ErrInvitationInvalid.WithError(err)
	}

	var member *Member
	err = s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		invitation, err := s.Repository.GetInvitationForUpdate(ctx, invitationID)
		if err != nil {
			return err
		}

		now := time.Now()
		if !invitation.IsClaimable(now) {
			return appErrors.ErrInvitationInvalid
		}
		if err := bcrypt.CompareHashAndPassword([]byte(invitation.TokenHash), []byte(secret)); err != nil {
			return appErrors.ErrInvitationInvalid
		}

		existing, err := s.Repository.GetMember(ctx, invitation.GoalId, userID)
		if err != nil && !errors.Is(err, appErrors.ErrMemberNotFound) {
			return err
		}
		if existing != nil {
			return appErrors.NewConflictError("Membro")
		}

		member = &Member{
			GoalId:   invitation.GoalId,
			UserId:   userID,
			Role:     invitation.Role,
			JoinedAt: now,
		}
		if err := s.Repository.AddMember(ctx, member); err != nil {
			return err
		}
		if err := s.Repository.MarkInvitationClaimed(ctx, invitation.Id, userID, now); err != nil {
			return err
		}
		return s.Repository.CreateActivity(ctx, NewActivity(invitation.GoalId, userID, ActionMemberJoined, map[string]interface{}{
			"invitation_id": invitation.Id.String(),
			"role":          string(invitation.Role),
		}))
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// NewActivity monta uma entrada de histórico; também usada pelos domínios de orçamento e ledger.
func NewActivity(goalID ulid.ULID, userID uuid.UUID, action string, details map[string]interface{}) *Activity {
	if details == nil {
		details = map[string]interface{}{}
	}
	return &Activity{
		Id:        pkg.GenerateULIDObject(),
		GoalId:    goalID,
		UserId:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

func Validate(request *CreateGoalRequest) error {
	if strings.TrimSpace(request.Name) == "" {
		return appErrors.NewValidationError("name", "é obrigatório")
	}
	if len(request.Name) > 100 {
		return appErrors.NewValidationError("name", "deve ter no máximo 100 caracteres")
	}
	if !shared.IsPositiveCents(request.TargetAmount) {
		return appErrors.NewValidationError("target", "deve ser maior que zero, em centavos")
	}
	if request.Deadline != nil && request.Deadline.Before(time.Now()) {
		return appErrors.NewValidationError("deadline", "deve ser uma data futura")
	}
	return nil
}

func ValidateUpdateGoal(request *UpdateGoalRequest) error {
	if request.Name != nil && strings.TrimSpace(*request.Name) == "" {
		return appErrors.NewValidationError("name", "não pode ser vazio")
	}
	if request.TargetAmount != nil && !shared.IsPositiveCents(*request.TargetAmount) {
		return appErrors.NewValidationError("target", "deve ser maior que zero, em centavos")
	}
	if request.Deadline != nil && request.Deadline.Before(time.Now()) {
		return appErrors.NewValidationError("deadline", "deve ser uma data futura")
	}
	return nil
}
