package card

import (
	"context"
	"errors"
	"strings"
	"time"

	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type Service struct {
	Repository Repository
}

func (s *Service) CreateCard(ctx context.Context, card *Card) error {
	card.Name = strings.TrimSpace(card.Name)
	if card.Name == "" {
		return appErrors.NewValidationError("name", "é obrigatório")
	}
	if len(card.LastFourDigits) > 0 && len(card.LastFourDigits) != 4 {
		return appErrors.NewValidationError("lastFourDigits", "deve ter exatamente 4 caracteres")
	}

	card.Id = pkg.GenerateULIDObject()
	card.IsActive = true
	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := s.Repository.Create(ctx, card); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *Service) GetCardById(ctx context.Context, cardId ulid.ULID) (*Card, error) {
	card, err := s.Repository.GetById(ctx, cardId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCardNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return card, nil
}

func (s *Service) ListCards(ctx context.Context) ([]*Card, error) {
	cards, err := s.Repository.GetAll(ctx)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return cards, nil
}
