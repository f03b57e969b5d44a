package infrastructure

import (
	"context"
	"time"

	"Parcelo/internal/domain/transaction"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type BusinessRepository struct {
	DB *gorm.DB
}

var _ transaction.BusinessRepository = (*BusinessRepository)(nil)

type businessDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey;column:id"`
	Name      string    `gorm:"size:255;not null;column:name"`
	RawName   string    `gorm:"size:255;column:raw_name"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`
}

func toDomainBusiness(bdb *businessDB) (*transaction.Business, error) {
	id, err := pkg.ParseULID(bdb.Id)
	if err != nil {
		return nil, err
	}
	return &transaction.Business{
		Id:        id,
		Name:      bdb.Name,
		RawName:   bdb.RawName,
		CreatedAt: bdb.CreatedAt,
		UpdatedAt: bdb.UpdatedAt,
	}, nil
}

func toDBBusiness(b *transaction.Business) *businessDB {
	return &businessDB{
		Id:        b.Id.String(),
		Name:      b.Name,
		RawName:   b.RawName,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (r *BusinessRepository) Create(ctx context.Context, business *transaction.Business) error {
	bdb := toDBBusiness(business)
	return r.DB.WithContext(ctx).Table("businesses").Create(bdb).Error
}

func (r *BusinessRepository) GetById(ctx context.Context, businessId ulid.ULID) (*transaction.Business, error) {
	var bdb businessDB
	err := r.DB.WithContext(ctx).Table("businesses").
		Where("id = ?", businessId.String()).
		First(&bdb).Error
	if err != nil {
		return nil, err
	}
	return toDomainBusiness(&bdb)
}

func (r *BusinessRepository) GetByName(ctx context.Context, name string) (*transaction.Business, error) {
	var bdb businessDB
	err := r.DB.WithContext(ctx).Table("businesses").
		Where("name = ?", name).
		First(&bdb).Error
	if err != nil {
		return nil, err
	}
	return toDomainBusiness(&bdb)
}
