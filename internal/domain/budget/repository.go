package budget

import (
	"context"

	"Caixinha/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, goalID, itemID ulid.ULID) (*Item, error)
	GetByGoalID(ctx context.Context, goalID ulid.ULID, filters *ItemFilters, pagination *pkg.PaginationParams) ([]*Item, int64, error)
	GetPayments(ctx context.Context, itemID ulid.ULID) ([]*Payment, error)
	GetSummary(ctx context.Context, goalID ulid.ULID) (*Summary, error)
}
