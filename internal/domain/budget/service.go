package budget

import (
	"context"
	"strings"
	"time"

	"Caixinha/internal/domain/goal"
	"Caixinha/internal/domain/shared"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Service struct {
	Repository Repository
	Members    goal.MemberReader
	Activities goal.ActivityLogger
	Transactor shared.Transactor
}

func NewService(repo Repository, members goal.MemberReader, activities goal.ActivityLogger, transactor shared.Transactor) *Service {
	return &Service{
		Repository: repo,
		Members:    members,
		Activities: activities,
		Transactor: transactor,
	}
}

func (s *Service) CreateBudgetItem(ctx context.Context, req *CreateItemRequest) (*Item, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}
	if _, err := goal.RequireContributor(ctx, s.Members, req.GoalId, req.UserId); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now()
	item := &Item{
		Id:         pkg.GenerateULIDObject(),
		GoalId:     req.GoalId,
		Name:       shared.NormalizeName(req.Name),
		Amount:     req.Amount,
		PaidAmount: decimal.Zero,
		Status:     StatusPending,
		Priority:   priority,
		CreatedBy:  req.UserId,
		DueDate:    req.DueDate,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repository.Create(ctx, item); err != nil {
			return err
		}
		return s.Activities.CreateActivity(ctx, goal.NewActivity(req.GoalId, req.UserId, goal.ActionBudgetCreated, map[string]interface{}{
			"budget_id": item.Id.String(),
			"name":      item.Name,
			"amount":    item.Amount.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) UpdateBudgetItem(ctx context.Context, req *UpdateItemRequest) (*Item, error) {
	if _, err := goal.RequireContributor(ctx, s.Members, req.GoalId, req.UserId); err != nil {
		return nil, err
	}

	item, err := s.Repository.GetByID(ctx, req.GoalId, req.ItemId)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"budget_id": item.Id.String()}
	if req.Name != nil {
		name := shared.NormalizeName(*req.Name)
		if name == "" {
			return nil, appErrors.NewValidationError("name", "não pode ser vazio")
		}
		item.Name = name
		changes["name"] = name
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, appErrors.NewValidationError("priority", "deve ser low, medium ou high")
		}
		item.Priority = *req.Priority
		changes["priority"] = string(item.Priority)
	}
	if req.DueDate != nil {
		item.DueDate = req.DueDate
		changes["due_date"] = req.DueDate.Format(time.RFC3339)
	}
	if req.Notes != nil {
		item.Notes = strings.TrimSpace(*req.Notes)
	}
	item.UpdatedAt = time.Now()

	err = s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repository.Update(ctx, item); err != nil {
			return err
		}
		return s.Activities.CreateActivity(ctx, goal.NewActivity(req.GoalId, req.UserId, goal.ActionBudgetUpdated, changes))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) GetBudgetItem(ctx context.Context, goalID, itemID ulid.ULID, userID uuid.UUID) (*Item, error) {
	if _, err := goal.RequireMember(ctx, s.Members, goalID, userID); err != nil {
		return nil, err
	}
	return s.Repository.GetByID(ctx, goalID, itemID)
}

func (s *Service) ListBudgetItems(ctx context.Context, goalID ulid.ULID, userID uuid.UUID, filters *ItemFilters, pagination *pkg.PaginationParams) ([]*Item, int64, error) {
	if _, err := goal.RequireMember(ctx, s.Members, goalID, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.GetByGoalID(ctx, goalID, filters, pagination)
}

func (s *Service) ListPayments(ctx context.Context, goalID, itemID ulid.ULID, userID uuid.UUID) ([]*Payment, error) {
	if _, err := s.GetBudgetItem(ctx, goalID, itemID, userID); err != nil {
		return nil, err
	}
	return s.Repository.GetPayments(ctx, itemID)
}

func (s *Service) GetBudgetSummary(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*Summary, error) {
	if _, err := goal.RequireMember(ctx, s.Members, goalID, userID); err != nil {
		return nil, err
	}
	return s.Repository.GetSummary(ctx, goalID)
}

func validateCreateRequest(req *CreateItemRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return appErrors.NewValidationError("name", "é obrigatório")
	}
	if len(req.Name) > 100 {
		return appErrors.NewValidationError("name", "deve ter no máximo 100 caracteres")
	}
	if !shared.IsPositiveCents(req.Amount) {
		return appErrors.NewValidationError("amount", "deve ser maior que zero, em centavos")
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		return appErrors.NewValidationError("priority", "deve ser low, medium ou high")
	}
	return nil
}
