package wallet

import (
	"context"

	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, wallet *Wallet) error
	GetByID(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, pagination *pkg.PaginationParams) ([]*Wallet, int64, error)
	AddBalance(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error
	// DebitIfSufficient subtrai amount apenas se o saldo cobrir o valor.
	// Retorna false quando o saldo é insuficiente.
	DebitIfSufficient(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) (bool, error)
}
