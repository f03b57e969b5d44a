package card

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, card *Card) error
	GetById(ctx context.Context, cardId ulid.ULID) (*Card, error)
	GetAll(ctx context.Context) ([]*Card, error)
}
