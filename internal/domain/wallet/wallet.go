package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Wallet é a origem do dinheiro usado nos aportes em metas.
type Wallet struct {
	Id        ulid.ULID       `json:"id"`
	UserId    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CreateWalletRequest struct {
	UserId         uuid.UUID
	Name           string
	InitialBalance decimal.Decimal
}
