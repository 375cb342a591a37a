package wallet

import (
	"context"
	"time"

	"Caixinha/internal/domain/shared"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Service struct {
	Repository Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo}
}

func (s *Service) CreateWallet(ctx context.Context, req *CreateWalletRequest) (*Wallet, error) {
	name := shared.NormalizeName(req.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "é obrigatório")
	}
	if len(name) > 100 {
		return nil, appErrors.NewValidationError("name", "deve ter no máximo 100 caracteres")
	}
	if req.InitialBalance.IsNegative() {
		return nil, appErrors.NewValidationError("amount", "não pode ser negativo")
	}
	if !shared.IsCents(req.InitialBalance) {
		return nil, appErrors.NewValidationError("amount", "deve ter no máximo duas casas decimais")
	}

	now := time.Now()
	w := &Wallet{
		Id:        pkg.GenerateULIDObject(),
		UserId:    req.UserId,
		Name:      name,
		Balance:   req.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repository.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) GetWallet(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*Wallet, error) {
	return s.Repository.GetByID(ctx, walletID, userID)
}

func (s *Service) ListWallets(ctx context.Context, userID uuid.UUID, pagination *pkg.PaginationParams) ([]*Wallet, int64, error) {
	return s.Repository.GetByUserID(ctx, userID, pagination)
}

func (s *Service) Deposit(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) (*Wallet, error) {
	if !shared.IsPositiveCents(amount) {
		return nil, appErrors.NewValidationError("amount", "deve ser maior que zero, em centavos")
	}
	if _, err := s.Repository.GetByID(ctx, walletID, userID); err != nil {
		return nil, err
	}
	if err := s.Repository.AddBalance(ctx, walletID, userID, amount); err != nil {
		return nil, err
	}
	return s.Repository.GetByID(ctx, walletID, userID)
}

// Debit retira amount da carteira numa única instrução condicional, de modo
// que dois aportes simultâneos não deixem o saldo negativo.
func (s *Service) Debit(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error {
	if !shared.IsPositiveCents(amount) {
		return appErrors.NewValidationError("amount", "deve ser maior que zero, em centavos")
	}

	ok, err := s.Repository.DebitIfSufficient(ctx, walletID, userID, amount)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := s.Repository.GetByID(ctx, walletID, userID); err != nil {
		return err
	}
	return appErrors.NewValidationError("amount", "saldo insuficiente na carteira")
}
