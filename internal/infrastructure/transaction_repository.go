package infrastructure

import (
	"context"
	"time"

	"Parcelo/internal/domain/transaction"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	DB *gorm.DB
}

var _ transaction.Repository = (*TransactionRepository)(nil)

type transactionDB struct {
	Id                 string    `gorm:"type:varchar(26);primaryKey;column:id"`
	BusinessId         string    `gorm:"type:varchar(26);index;not null;column:business_id"`
	BusinessName       string    `gorm:"->;column:business_name"`
	CardId             string    `gorm:"type:varchar(26);index;not null;column:card_id"`
	DealDate           time.Time `gorm:"not null;column:deal_date"`
	OriginalAmount     float64   `gorm:"not null;column:original_amount"`
	OriginalCurrency   string    `gorm:"size:3;column:original_currency"`
	ChargedAmount      float64   `gorm:"not null;column:charged_amount"`
	Type               string    `gorm:"size:15;not null;column:type"`
	Status             string    `gorm:"size:10;not null;column:status"`
	InstallmentGroupId *string   `gorm:"size:64;index;column:installment_group_id"`
	InstallmentIndex   *int      `gorm:"column:installment_index"`
	InstallmentTotal   *int      `gorm:"column:installment_total"`
	SubscriptionId     *string   `gorm:"size:26;index;column:subscription_id"`
	TransactionHash    string    `gorm:"size:64;not null;column:transaction_hash"`
	CreatedAt          time.Time `gorm:"not null;column:created_at"`
	UpdatedAt          time.Time `gorm:"not null;column:updated_at"`
}

func toDomainTransaction(tdb *transactionDB) (*transaction.Transaction, error) {
	id, err := pkg.ParseULID(tdb.Id)
	if err != nil {
		return nil, err
	}
	bid, err := pkg.ParseULID(tdb.BusinessId)
	if err != nil {
		return nil, err
	}
	cid, err := pkg.ParseULID(tdb.CardId)
	if err != nil {
		return nil, err
	}
	sid, err := pkg.ParseULIDPtr(tdb.SubscriptionId)
	if err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		Id:                 id,
		BusinessId:         bid,
		CardId:             cid,
		DealDate:           tdb.DealDate,
		OriginalAmount:     tdb.OriginalAmount,
		OriginalCurrency:   tdb.OriginalCurrency,
		ChargedAmount:      tdb.ChargedAmount,
		Type:               transaction.Types(tdb.Type),
		Status:             transaction.Status(tdb.Status),
		InstallmentGroupId: tdb.InstallmentGroupId,
		InstallmentIndex:   tdb.InstallmentIndex,
		InstallmentTotal:   tdb.InstallmentTotal,
		SubscriptionId:     sid,
		TransactionHash:    tdb.TransactionHash,
		BusinessName:       tdb.BusinessName,
		CreatedAt:          tdb.CreatedAt,
		UpdatedAt:          tdb.UpdatedAt,
	}, nil
}

func toDBTransaction(t *transaction.Transaction) *transactionDB {
	var subscriptionId *string
	if t.SubscriptionId != nil {
		s := t.SubscriptionId.String()
		subscriptionId = &s
	}
	return &transactionDB{
		Id:                 t.Id.String(),
		BusinessId:         t.BusinessId.String(),
		CardId:             t.CardId.String(),
		DealDate:           t.DealDate,
		OriginalAmount:     t.OriginalAmount,
		OriginalCurrency:   t.OriginalCurrency,
		ChargedAmount:      t.ChargedAmount,
		Type:               string(t.Type),
		Status:             string(t.Status),
		InstallmentGroupId: t.InstallmentGroupId,
		InstallmentIndex:   t.InstallmentIndex,
		InstallmentTotal:   t.InstallmentTotal,
		SubscriptionId:     subscriptionId,
		TransactionHash:    t.TransactionHash,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	tdb := toDBTransaction(t)
	return r.DB.WithContext(ctx).Table("transactions").Create(tdb).Error
}

func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []*transaction.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	rows := make([]*transactionDB, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, toDBTransaction(t))
	}
	return r.DB.WithContext(ctx).Table("transactions").Create(rows).Error
}

func (r *TransactionRepository) GetByHash(ctx context.Context, hash string) (*transaction.Transaction, error) {
	var tdb transactionDB
	err := r.DB.WithContext(ctx).Table("transactions t").
		Select("t.*, b.name as business_name").
		Joins("LEFT JOIN businesses b ON t.business_id = b.id").
		Where("t.transaction_hash = ?", hash).
		First(&tdb).Error
	if err != nil {
		return nil, err
	}
	return toDomainTransaction(&tdb)
}

func (r *TransactionRepository) GetInRange(ctx context.Context, filter *transaction.RangeFilter) ([]*transaction.Transaction, error) {
	query := r.rangeQuery(ctx, filter)

	var rows []transactionDB
	if err := query.Order("t.deal_date ASC, t.id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(rows)
}

func (r *TransactionRepository) GetByGroupId(ctx context.Context, groupId string) ([]*transaction.Transaction, error) {
	var rows []transactionDB
	err := r.DB.WithContext(ctx).Table("transactions t").
		Select("t.*, b.name as business_name").
		Joins("LEFT JOIN businesses b ON t.business_id = b.id").
		Where("t.installment_group_id = ?", groupId).
		Order("t.installment_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainTransactions(rows)
}

func (r *TransactionRepository) GroupExists(ctx context.Context, groupId string) (bool, error) {
	var exists bool
	err := r.DB.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM transactions WHERE installment_group_id = ?)", groupId).
		Scan(&exists).Error
	return exists, err
}

func (r *TransactionRepository) ExistsSubscriptionChargeAfter(ctx context.Context, subscriptionId ulid.ULID, after time.Time) (bool, error) {
	var exists bool
	err := r.DB.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM transactions WHERE subscription_id = ? AND deal_date > ?)",
			subscriptionId.String(), after).
		Scan(&exists).Error
	return exists, err
}

func (r *TransactionRepository) MarkCompleted(ctx context.Context, hash string, chargedAmount float64, dealDate time.Time) error {
	return r.DB.WithContext(ctx).Table("transactions").
		Where("transaction_hash = ?", hash).
		Updates(map[string]interface{}{
			"status":         string(transaction.StatusCompleted),
			"charged_amount": chargedAmount,
			"deal_date":      dealDate,
			"updated_at":     time.Now(),
		}).Error
}

func (r *TransactionRepository) GetAll(ctx context.Context, filter *transaction.RangeFilter, pagination *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	query := r.rangeQuery(ctx, filter)
	return pkg.Paginate[transaction.Transaction, transactionDB](query, pagination, "t.deal_date DESC, t.id DESC", toDomainTransaction)
}

func (r *TransactionRepository) rangeQuery(ctx context.Context, filter *transaction.RangeFilter) *gorm.DB {
	query := r.DB.WithContext(ctx).Table("transactions t").
		Select("t.*, b.name as business_name").
		Joins("LEFT JOIN businesses b ON t.business_id = b.id").
		Where("t.deal_date >= ?", filter.DateFrom)

	if filter.DateTo != nil {
		query = query.Where("t.deal_date <= ?", *filter.DateTo)
	}
	if len(filter.CardIds) > 0 {
		query = query.Where("t.card_id IN ?", pkg.ULIDSetToStrings(filter.CardIds))
	}

	return query
}

func toDomainTransactions(rows []transactionDB) ([]*transaction.Transaction, error) {
	out := make([]*transaction.Transaction, 0, len(rows))
	for i := range rows {
		t, err := toDomainTransaction(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
