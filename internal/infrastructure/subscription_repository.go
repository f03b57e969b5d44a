package infrastructure

import (
	"context"
	"time"

	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)

type subscriptionDB struct {
	Id          string     `gorm:"type:varchar(26);primaryKey;column:id"`
	BusinessId  string     `gorm:"type:varchar(26);index;not null;column:business_id"`
	CardId      string     `gorm:"type:varchar(26);index;not null;column:card_id"`
	Name        string     `gorm:"size:255;not null;column:name"`
	Amount      float64    `gorm:"not null;column:amount"`
	Frequency   string     `gorm:"size:10;not null;column:frequency"`
	StartDate   time.Time  `gorm:"not null;column:start_date"`
	EndDate     *time.Time `gorm:"column:end_date"`
	Status      string     `gorm:"size:10;not null;column:status"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time  `gorm:"not null;column:updated_at"`
}

func toDomainSubscription(sdb *subscriptionDB) (*subscription.Subscription, error) {
	id, err := pkg.ParseULID(sdb.Id)
	if err != nil {
		return nil, err
	}
	bid, err := pkg.ParseULID(sdb.BusinessId)
	if err != nil {
		return nil, err
	}
	cid, err := pkg.ParseULID(sdb.CardId)
	if err != nil {
		return nil, err
	}

	return &subscription.Subscription{
		Id:          id,
		BusinessId:  bid,
		CardId:      cid,
		Name:        sdb.Name,
		Amount:      sdb.Amount,
		Frequency:   subscription.Frequency(sdb.Frequency),
		StartDate:   sdb.StartDate,
		EndDate:     sdb.EndDate,
		Status:      subscription.Status(sdb.Status),
		CancelledAt: sdb.CancelledAt,
		CreatedAt:   sdb.CreatedAt,
		UpdatedAt:   sdb.UpdatedAt,
	}, nil
}

func toDBSubscription(s *subscription.Subscription) *subscriptionDB {
	return &subscriptionDB{
		Id:          s.Id.String(),
		BusinessId:  s.BusinessId.String(),
		CardId:      s.CardId.String(),
		Name:        s.Name,
		Amount:      s.Amount,
		Frequency:   string(s.Frequency),
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		Status:      string(s.Status),
		CancelledAt: s.CancelledAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	sdb := toDBSubscription(s)
	return r.DB.WithContext(ctx).Table("subscriptions").Create(sdb).Error
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	sdb := toDBSubscription(s)
	return r.DB.WithContext(ctx).Table("subscriptions").Where("id = ?", sdb.Id).Updates(sdb).Error
}

func (r *SubscriptionRepository) GetById(ctx context.Context, subscriptionId ulid.ULID) (*subscription.Subscription, error) {
	var sdb subscriptionDB
	err := r.DB.WithContext(ctx).Table("subscriptions").
		Where("id = ?", subscriptionId.String()).
		First(&sdb).Error
	if err != nil {
		return nil, err
	}
	return toDomainSubscription(&sdb)
}

func (r *SubscriptionRepository) GetAll(ctx context.Context, pagination *pkg.PaginationParams) ([]*subscription.Subscription, int64, error) {
	query := r.DB.WithContext(ctx).Table("subscriptions")
	return pkg.Paginate[subscription.Subscription, subscriptionDB](query, pagination, "start_date DESC", toDomainSubscription)
}

func (r *SubscriptionRepository) GetActive(ctx context.Context) ([]*subscription.Subscription, error) {
	var rows []subscriptionDB
	err := r.DB.WithContext(ctx).Table("subscriptions").
		Where("status = ?", string(subscription.StatusActive)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		s, err := toDomainSubscription(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Cancel só transita linhas ainda ativas; uma assinatura já cancelada
// mantém endDate e cancelledAt originais, e repetir o cancelamento não
// é erro.
func (r *SubscriptionRepository) Cancel(ctx context.Context, subscriptionId ulid.ULID, endDate, cancelledAt time.Time) error {
	return r.DB.WithContext(ctx).Table("subscriptions").
		Where("id = ? AND status = ?", subscriptionId.String(), string(subscription.StatusActive)).
		Updates(map[string]interface{}{
			"status":       string(subscription.StatusCancelled),
			"end_date":     endDate,
			"cancelled_at": cancelledAt,
			"updated_at":   time.Now(),
		}).Error
}
