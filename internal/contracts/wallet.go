package contracts

import (
	"Caixinha/internal/domain/wallet"

	"github.com/shopspring/decimal"
)

type WalletCreateRequest struct {
	Name           string           `json:"name" binding:"required,max=100"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

type WalletDepositRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type WalletResponse struct {
	Wallet *wallet.Wallet `json:"wallet"`
}
