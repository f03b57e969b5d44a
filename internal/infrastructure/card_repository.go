package infrastructure

import (
	"context"
	"time"

	"Parcelo/internal/domain/card"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type CardRepository struct {
	DB *gorm.DB
}

var _ card.Repository = (*CardRepository)(nil)

type cardDB struct {
	Id             string    `gorm:"type:varchar(26);primaryKey;column:id"`
	Name           string    `gorm:"size:100;not null;column:name"`
	Issuer         string    `gorm:"size:50;column:issuer"`
	LastFourDigits string    `gorm:"size:4;column:last_four_digits"`
	IsActive       bool      `gorm:"not null;column:is_active"`
	CreatedAt      time.Time `gorm:"not null;column:created_at"`
	UpdatedAt      time.Time `gorm:"not null;column:updated_at"`
}

func toDomainCard(cdb *cardDB) (*card.Card, error) {
	id, err := pkg.ParseULID(cdb.Id)
	if err != nil {
		return nil, err
	}
	return &card.Card{
		Id:             id,
		Name:           cdb.Name,
		Issuer:         cdb.Issuer,
		LastFourDigits: cdb.LastFourDigits,
		IsActive:       cdb.IsActive,
		CreatedAt:      cdb.CreatedAt,
		UpdatedAt:      cdb.UpdatedAt,
	}, nil
}

func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	cdb := &cardDB{
		Id:             c.Id.String(),
		Name:           c.Name,
		Issuer:         c.Issuer,
		LastFourDigits: c.LastFourDigits,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	return r.DB.WithContext(ctx).Table("cards").Create(cdb).Error
}

func (r *CardRepository) GetById(ctx context.Context, cardId ulid.ULID) (*card.Card, error) {
	var cdb cardDB
	err := r.DB.WithContext(ctx).Table("cards").
		Where("id = ?", cardId.String()).
		First(&cdb).Error
	if err != nil {
		return nil, err
	}
	return toDomainCard(&cdb)
}

func (r *CardRepository) GetAll(ctx context.Context) ([]*card.Card, error) {
	var rows []cardDB
	err := r.DB.WithContext(ctx).Table("cards").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*card.Card, 0, len(rows))
	for i := range rows {
		c, err := toDomainCard(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
