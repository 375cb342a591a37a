package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Contribution é um lançamento imutável: não existe caminho de edição ou remoção.
type Contribution struct {
	Id        ulid.ULID       `json:"id"`
	GoalId    ulid.ULID       `json:"goalId"`
	UserId    uuid.UUID       `json:"userId"`
	WalletId  ulid.ULID       `json:"walletId"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CreateContributionRequest struct {
	GoalId   ulid.ULID
	UserId   uuid.UUID
	WalletId ulid.ULID
	Amount   decimal.Decimal
	Notes    string
}
