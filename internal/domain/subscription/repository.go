package subscription

import (
	"context"
	"time"

	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Update(ctx context.Context, subscription *Subscription) error
	GetById(ctx context.Context, subscriptionId ulid.ULID) (*Subscription, error)
	GetAll(ctx context.Context, pagination *pkg.PaginationParams) ([]*Subscription, int64, error)
	GetActive(ctx context.Context) ([]*Subscription, error)
	// Cancel é um update de linha única e idempotente: re-aplicar o
	// mesmo estado terminal não é erro.
	Cancel(ctx context.Context, subscriptionId ulid.ULID, endDate, cancelledAt time.Time) error
}
