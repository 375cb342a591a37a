package infrastructure

import (
	"context"
	"errors"
	"time"

	"Caixinha/internal/domain/wallet"
	appErrors "Caixinha/internal/errors"
	"Caixinha/internal/pkg"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletRepository struct {
	DB *gorm.DB
}

type walletDB struct {
	Id        string          `gorm:"type:varchar(26);primaryKey"`
	UserId    string          `gorm:"type:uuid;index;not null"`
	Name      string          `gorm:"type:varchar(100);not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

func (walletDB) TableName() string {
	return "wallets"
}

func toDomainWallet(wdb *walletDB) (*wallet.Wallet, error) {
	id, err := pkg.ParseULID(wdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	userID, err := pkg.ParseUserID(wdb.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &wallet.Wallet{
		Id:        id,
		UserId:    userID,
		Name:      wdb.Name,
		Balance:   wdb.Balance,
		CreatedAt: wdb.CreatedAt,
		UpdatedAt: wdb.UpdatedAt,
	}, nil
}

func toDBWallet(w *wallet.Wallet) *walletDB {
	return &walletDB{
		Id:        w.Id.String(),
		UserId:    w.UserId.String(),
		Name:      w.Name,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	if err := conn(ctx, r.DB).Create(toDBWallet(w)).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *WalletRepository) GetByID(ctx context.Context, walletID ulid.ULID, userID uuid.UUID) (*wallet.Wallet, error) {
	var wdb walletDB
	err := conn(ctx, r.DB).
		Where("id = ? AND user_id = ?", walletID.String(), userID.String()).
		First(&wdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrWalletNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainWallet(&wdb)
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID, pagination *pkg.PaginationParams) ([]*wallet.Wallet, int64, error) {
	baseQuery := conn(ctx, r.DB).Model(&walletDB{}).Where("user_id = ?", userID.String())
	return pkg.Paginate(baseQuery, "wallets", pagination, pkg.SortNewest, toDomainWallet)
}

func (r *WalletRepository) AddBalance(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) error {
	result := conn(ctx, r.DB).Model(&walletDB{}).
		Where("id = ? AND user_id = ?", walletID.String(), userID.String()).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrWalletNotFound
	}
	return nil
}

func (r *WalletRepository) DebitIfSufficient(ctx context.Context, walletID ulid.ULID, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := conn(ctx, r.DB).Model(&walletDB{}).
		Where("id = ? AND user_id = ? AND balance >= ?", walletID.String(), userID.String(), amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
