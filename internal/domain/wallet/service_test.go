package wallet_test

import (
	"context"
	"testing"

	"Caixinha/internal/domain/wallet"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type fakeWalletRepository struct {
	createFn     func(ctx context.Context, w *wallet.Wallet) error
	getByIDFn    func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*wallet.Wallet, error)
	addBalanceFn func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error
	debitFn      func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) (bool, error)
}

func (f *fakeWalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	if f.createFn != nil {
		return f.createFn(ctx, w)
	}
	return nil
}

func (f *fakeWalletRepository) GetByID(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*wallet.Wallet, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, walletID, userID)
	}
	return nil, appErrors.ErrWalletNotFound
}

func (f *fakeWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID, pagination *pkg.PaginationParams) ([]*wallet.Wallet, int64, error) {
	return nil, 0, nil
}

func (f *fakeWalletRepository) AddBalance(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error {
	if f.addBalanceFn != nil {
		return f.addBalanceFn(ctx, walletID, userID, amount)
	}
	return nil
}

func (f *fakeWalletRepository) DebitIfSufficient(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if f.debitFn != nil {
		return f.debitFn(ctx, walletID, userID, amount)
	}
	return true, nil
}

func TestCreateWallet(t *testing.T) {
	t.Parallel()

	svc := wallet.NewService(&fakeWalletRepository{})
	w, err := svc.CreateWallet(context.Background(), &wallet.CreateWalletRequest{
		UserId:         uuid.New(),
		Name:           " Conta   corrente ",
		InitialBalance: decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Name != "Conta corrente" || !w.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	_, err = svc.CreateWallet(context.Background(), &wallet.CreateWalletRequest{
		UserId:         uuid.New(),
		Name:           "Negativa",
		InitialBalance: decimal.NewFromInt(-1),
	})
	if err == nil {
		t.Fatalf("expected validation error for negative balance")
	}

	_, err = svc.CreateWallet(context.Background(), &wallet.CreateWalletRequest{
		UserId:         uuid.New(),
		Name:           "Fracionada",
		InitialBalance: decimal.RequireFromString("12.345"),
	})
	if appErr, ok := appErrors.AsAppError(err); !ok || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error for sub-cent balance, got %v", err)
	}
}

func TestDeposit(t *testing.T) {
	t.Parallel()

	balance := decimal.NewFromInt(10)
	repo := &fakeWalletRepository{
		getByIDFn: func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*wallet.Wallet, error) {
			return &wallet.Wallet{Id: walletID, UserId: userID, Balance: balance}, nil
		},
		addBalanceFn: func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error {
			balance = balance.Add(amount)
			return nil
		},
	}
	svc := wallet.NewService(repo)

	w, err := svc.Deposit(context.Background(), pkg.GenerateULIDObject(), uuid.New(), decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50, got %s", w.Balance)
	}

	if _, err := svc.Deposit(context.Background(), pkg.GenerateULIDObject(), uuid.New(), decimal.Zero); err == nil {
		t.Fatalf("expected validation error for zero deposit")
	}
	if _, err := svc.Deposit(context.Background(), pkg.GenerateULIDObject(), uuid.New(), decimal.RequireFromString("0.001")); err == nil {
		t.Fatalf("expected validation error for sub-cent deposit")
	}
	if !balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("rejected deposits must not change the balance, got %s", balance)
	}
}

func TestDebit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		debited  bool
		exists   bool
		wantCode string
	}{
		{name: "saldo suficiente", debited: true, exists: true},
		{name: "saldo insuficiente", debited: false, exists: true, wantCode: "VALIDATION_ERROR"},
		{name: "carteira de outro usuário", debited: false, exists: false, wantCode: "WALLET_NOT_FOUND"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeWalletRepository{
				debitFn: func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
					return tt.debited, nil
				},
				getByIDFn: func(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*wallet.Wallet, error) {
					if !tt.exists {
						return nil, appErrors.ErrWalletNotFound
					}
					return &wallet.Wallet{Id: walletID, UserId: userID}, nil
				},
			}
			svc := wallet.NewService(repo)

			err := svc.Debit(context.Background(), pkg.GenerateULIDObject(), uuid.New(), decimal.NewFromInt(5))
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			appErr, ok := appErrors.AsAppError(err)
			if !ok || appErr.Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}
