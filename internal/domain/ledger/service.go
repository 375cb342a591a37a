package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/goal"
	"Caixinha/internal/domain/shared"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/logger"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const maxIdempotencyKeyLength = 100

type Service struct {
	Repository    Repository
	Members       goal.MemberReader
	Activities    goal.ActivityLogger
	Transactor    shared.Transactor
	PaidTolerance decimal.Decimal
}

func NewService(
	repo Repository,
	members goal.MemberReader,
	activities goal.ActivityLogger,
	transactor shared.Transactor,
	paidTolerance decimal.Decimal,
) *Service {
	if paidTolerance.IsNegative() {
		paidTolerance = DefaultPaidTolerance
	}
	return &Service{
		Repository:    repo,
		Members:       members,
		Activities:    activities,
		Transactor:    transactor,
		PaidTolerance: paidTolerance,
	}
}

// GetAvailableBalance é uma leitura pura: soma os aportes e os pagamentos do
// membro na meta sem aplicar nenhuma regra de saldo mínimo.
func (s *Service) GetAvailableBalance(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*Balance, error) {
	if _, err := goal.RequireMember(ctx, s.Members, goalID, userID); err != nil {
		return nil, err
	}
	return s.balance(ctx, goalID, userID)
}

func (s *Service) balance(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*Balance, error) {
	contributed, err := s.Repository.SumContributions(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	paid, err := s.Repository.SumMemberPayments(ctx, goalID, userID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		TotalContributed: contributed,
		TotalPaid:        paid,
		AvailableBalance: contributed.Sub(paid),
	}, nil
}

// PayBudgetItem autoriza e registra um pagamento. Verificação de saldo,
// inserção, recálculo do item e histórico acontecem na mesma transação, com a
// linha do membro bloqueada, então dois pagamentos simultâneos do mesmo membro
// nunca enxergam o mesmo saldo.
func (s *Service) PayBudgetItem(ctx context.Context, req *PayRequest) (*PaymentResult, error) {
	if req.UserId == uuid.Nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !shared.IsPositiveCents(req.Amount) || pkg.IsEmptyULID(req.BudgetItemId) {
		return nil, appErrors.ErrInvalidPayment
	}
	key := strings.TrimSpace(req.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		return nil, appErrors.ErrInvalidPayment.WithDetails(map[string]interface{}{
			"field": "idempotency_key",
		})
	}

	var result *PaymentResult
	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := s.Repository.LockMember(ctx, req.GoalId, req.UserId)
		if err != nil {
			if errors.Is(err, appErrors.ErrMemberNotFound) {
				return appErrors.ErrGoalNotFound
			}
			return err
		}
		if !member.Role.CanContribute() {
			return appErrors.NewForbiddenError("Seu papel na meta não permite pagar itens")
		}

		item, err := s.Repository.LockBudgetItem(ctx, req.GoalId, req.BudgetItemId)
		if err != nil {
			return err
		}

		if key != "" {
			replayed, err := s.replay(ctx, req, item, key)
			if err != nil {
				return err
			}
			if replayed != nil {
				result = replayed
				return nil
			}
		}

		bal, err := s.balance(ctx, req.GoalId, req.UserId)
		if err != nil {
			return err
		}
		if bal.AvailableBalance.LessThan(req.Amount) {
			return appErrors.NewInsufficientFundsError(bal.AvailableBalance, req.Amount)
		}

		payment := &budget.Payment{
			Id:           pkg.GenerateULIDObject(),
			BudgetItemId: item.Id,
			UserId:       req.UserId,
			Amount:       req.Amount,
			Notes:        strings.TrimSpace(req.Notes),
			CreatedAt:    time.Now(),
		}
		if key != "" {
			payment.IdempotencyKey = &key
		}
		if err := s.Repository.CreatePayment(ctx, payment); err != nil {
			return err
		}

		total, err := s.Repository.SumItemPayments(ctx, item.Id)
		if err != nil {
			return err
		}
		status := s.nextStatus(item, total)
		if err := s.Repository.UpdateItemProgress(ctx, item.Id, total, status); err != nil {
			return err
		}

		if err := s.Activities.CreateActivity(ctx, goal.NewActivity(req.GoalId, req.UserId, goal.ActionBudgetPayment, map[string]interface{}{
			"budget_id": item.Id.String(),
			"amount":    req.Amount.String(),
			"status":    string(status),
		})); err != nil {
			return err
		}

		result = &PaymentResult{
			PaymentId:        payment.Id,
			AvailableBalance: bal.AvailableBalance.Sub(req.Amount),
			ItemTotalPaid:    total,
			NewStatus:        status,
		}
		return nil
	})
	if err != nil {
		if appErr, ok := appErrors.AsAppError(err); ok && appErr.Code == "INSUFFICIENT_FUNDS" {
			logger.Warn().
				Str("goal_id", req.GoalId.String()).
				Str("user_id", req.UserId.String()).
				Str("budget_id", req.BudgetItemId.String()).
				Interface("details", appErr.Details).
				Msg("budget_payment_rejected")
		}
		return nil, err
	}

	logger.Info().
		Str("goal_id", req.GoalId.String()).
		Str("user_id", req.UserId.String()).
		Str("budget_id", req.BudgetItemId.String()).
		Str("amount", req.Amount.String()).
		Str("status", string(result.NewStatus)).
		Bool("replayed", result.Replayed).
		Msg("budget_payment_recorded")

	return result, nil
}

// nextStatus nunca rebaixa um item já quitado.
func (s *Service) nextStatus(item *budget.Item, total decimal.Decimal) budget.Status {
	if item.Status == budget.StatusPaid {
		return budget.StatusPaid
	}
	return budget.ResolveStatus(total, item.Amount, s.PaidTolerance)
}

// replay devolve o resultado de um pagamento já registrado com a mesma chave.
// Retorna nil quando a chave ainda não foi usada.
func (s *Service) replay(ctx context.Context, req *PayRequest, item *budget.Item, key string) (*PaymentResult, error) {
	existing, err := s.Repository.GetPaymentByIdempotencyKey(ctx, req.UserId, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.BudgetItemId != req.BudgetItemId || !existing.Amount.Equal(req.Amount) {
		return nil, appErrors.NewConflictError("Pagamento com esta chave de idempotência")
	}

	bal, err := s.balance(ctx, req.GoalId, req.UserId)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{
		PaymentId:        existing.Id,
		AvailableBalance: bal.AvailableBalance,
		ItemTotalPaid:    item.PaidAmount,
		NewStatus:        item.Status,
		Replayed:         true,
	}, nil
}
