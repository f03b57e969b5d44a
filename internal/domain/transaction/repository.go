package transaction

import (
	"context"
	"time"

	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

// RangeFilter delimita a consulta por período e conjunto de cartões.
// DateTo nulo significa sem limite superior; CardIds vazio significa
// todos os cartões.
type RangeFilter struct {
	DateFrom time.Time
	DateTo   *time.Time
	CardIds  []ulid.ULID
}

type Repository interface {
	Create(ctx context.Context, transaction *Transaction) error
	CreateBatch(ctx context.Context, transactions []*Transaction) error
	GetByHash(ctx context.Context, hash string) (*Transaction, error)
	GetInRange(ctx context.Context, filter *RangeFilter) ([]*Transaction, error)
	GetByGroupId(ctx context.Context, groupId string) ([]*Transaction, error)
	GroupExists(ctx context.Context, groupId string) (bool, error)
	ExistsSubscriptionChargeAfter(ctx context.Context, subscriptionId ulid.ULID, after time.Time) (bool, error)
	MarkCompleted(ctx context.Context, hash string, chargedAmount float64, dealDate time.Time) error
	GetAll(ctx context.Context, filter *RangeFilter, pagination *pkg.PaginationParams) ([]*Transaction, int64, error)
}

type BusinessRepository interface {
	Create(ctx context.Context, business *Business) error
	GetById(ctx context.Context, businessId ulid.ULID) (*Business, error)
	GetByName(ctx context.Context, name string) (*Business, error)
}
