package ledger

import (
	"context"

	"Caixinha/internal/domain/budget"
	"Caixinha/internal/domain/goal"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// LockMember bloqueia a linha de participação até o fim da transação,
	// serializando os pagamentos de um mesmo membro na meta.
	LockMember(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (*goal.Member, error)
	SumContributions(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (decimal.Decimal, error)
	SumMemberPayments(ctx context.Context, goalID ulid.ULID, userID uuid.UUID) (decimal.Decimal, error)

	LockBudgetItem(ctx context.Context, goalID, itemID ulid.ULID) (*budget.Item, error)
	GetPaymentByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*budget.Payment, error)
	CreatePayment(ctx context.Context, payment *budget.Payment) error
	SumItemPayments(ctx context.Context, itemID ulid.ULID) (decimal.Decimal, error)
	UpdateItemProgress(ctx context.Context, itemID ulid.ULID, paid decimal.Decimal, status budget.Status) error
}
