package bulkdelete_test

import (
	"context"
	"time"

	"Parcelo/internal/domain/bulkdelete"
	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/domain/transaction"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// fakeStore guarda transações e assinaturas em memória e responde às
// consultas do classificador sobre esse estado.
type fakeStore struct {
	transactions  []*transaction.Transaction
	subscriptions map[ulid.ULID]*subscription.Subscription

	getInRangeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{subscriptions: make(map[ulid.ULID]*subscription.Subscription)}
}

func (s *fakeStore) addOneTime(dealDate time.Time) *transaction.Transaction {
	row := &transaction.Transaction{
		Id:       pkg.GenerateULIDObject(),
		CardId:   pkg.GenerateULIDObject(),
		DealDate: dealDate,
		Type:     transaction.TypeOneTime,
		Status:   transaction.StatusCompleted,
	}
	s.transactions = append(s.transactions, row)
	return row
}

func (s *fakeStore) addInstallmentGroup(groupId string, dates ...time.Time) []*transaction.Transaction {
	total := len(dates)
	rows := make([]*transaction.Transaction, 0, total)
	for i, date := range dates {
		gid := groupId
		index := i + 1
		row := &transaction.Transaction{
			Id:                 pkg.GenerateULIDObject(),
			CardId:             pkg.GenerateULIDObject(),
			DealDate:           date,
			Type:               transaction.TypeInstallment,
			Status:             transaction.StatusProjected,
			InstallmentGroupId: &gid,
			InstallmentIndex:   &index,
			InstallmentTotal:   &total,
		}
		s.transactions = append(s.transactions, row)
		rows = append(rows, row)
	}
	return rows
}

func (s *fakeStore) addSubscription(name string, status subscription.Status) *subscription.Subscription {
	sub := &subscription.Subscription{
		Id:        pkg.GenerateULIDObject(),
		Name:      name,
		Frequency: subscription.FrequencyMonthly,
		Status:    status,
	}
	s.subscriptions[sub.Id] = sub
	return sub
}

func (s *fakeStore) addSubscriptionCharge(subscriptionId ulid.ULID, dealDate time.Time) *transaction.Transaction {
	subId := subscriptionId
	row := &transaction.Transaction{
		Id:             pkg.GenerateULIDObject(),
		CardId:         pkg.GenerateULIDObject(),
		DealDate:       dealDate,
		Type:           transaction.TypeSubscription,
		Status:         transaction.StatusCompleted,
		SubscriptionId: &subId,
	}
	s.transactions = append(s.transactions, row)
	return row
}

func (s *fakeStore) Create(_ context.Context, row *transaction.Transaction) error {
	s.transactions = append(s.transactions, row)
	return nil
}

func (s *fakeStore) CreateBatch(_ context.Context, rows []*transaction.Transaction) error {
	s.transactions = append(s.transactions, rows...)
	return nil
}

func (s *fakeStore) GetByHash(_ context.Context, hash string) (*transaction.Transaction, error) {
	for _, row := range s.transactions {
		if row.TransactionHash == hash {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStore) GetInRange(_ context.Context, filter *transaction.RangeFilter) ([]*transaction.Transaction, error) {
	if s.getInRangeErr != nil {
		return nil, s.getInRangeErr
	}
	out := make([]*transaction.Transaction, 0)
	for _, row := range s.transactions {
		if row.DealDate.Before(filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && row.DealDate.After(*filter.DateTo) {
			continue
		}
		if len(filter.CardIds) > 0 && !containsULID(filter.CardIds, row.CardId) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *fakeStore) GetByGroupId(_ context.Context, groupId string) ([]*transaction.Transaction, error) {
	out := make([]*transaction.Transaction, 0)
	for _, row := range s.transactions {
		if row.InstallmentGroupId != nil && *row.InstallmentGroupId == groupId {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeStore) GroupExists(ctx context.Context, groupId string) (bool, error) {
	rows, err := s.GetByGroupId(ctx, groupId)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (s *fakeStore) ExistsSubscriptionChargeAfter(_ context.Context, subscriptionId ulid.ULID, after time.Time) (bool, error) {
	for _, row := range s.transactions {
		if row.SubscriptionId != nil && *row.SubscriptionId == subscriptionId && row.DealDate.After(after) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) MarkCompleted(_ context.Context, hash string, chargedAmount float64, dealDate time.Time) error {
	for _, row := range s.transactions {
		if row.TransactionHash == hash {
			row.Status = transaction.StatusCompleted
			row.ChargedAmount = chargedAmount
			row.DealDate = dealDate
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeStore) GetAll(_ context.Context, _ *transaction.RangeFilter, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	return s.transactions, int64(len(s.transactions)), nil
}

func (s *fakeStore) CreateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.subscriptions[sub.Id] = sub
	return nil
}

// subscriptionRepo adapta o fakeStore à interface de assinaturas.
type subscriptionRepo struct {
	store *fakeStore
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	return r.store.CreateSubscription(ctx, sub)
}

func (r *subscriptionRepo) Update(_ context.Context, sub *subscription.Subscription) error {
	r.store.subscriptions[sub.Id] = sub
	return nil
}

func (r *subscriptionRepo) GetById(_ context.Context, subscriptionId ulid.ULID) (*subscription.Subscription, error) {
	sub, ok := r.store.subscriptions[subscriptionId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *subscriptionRepo) GetAll(_ context.Context, _ *pkg.PaginationParams) ([]*subscription.Subscription, int64, error) {
	out := make([]*subscription.Subscription, 0, len(r.store.subscriptions))
	for _, sub := range r.store.subscriptions {
		out = append(out, sub)
	}
	return out, int64(len(out)), nil
}

func (r *subscriptionRepo) GetActive(_ context.Context) ([]*subscription.Subscription, error) {
	out := make([]*subscription.Subscription, 0)
	for _, sub := range r.store.subscriptions {
		if sub.IsActive() {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *subscriptionRepo) Cancel(_ context.Context, subscriptionId ulid.ULID, endDate, cancelledAt time.Time) error {
	sub, ok := r.store.subscriptions[subscriptionId]
	if !ok || !sub.IsActive() {
		return nil
	}
	sub.Status = subscription.StatusCancelled
	sub.EndDate = &endDate
	sub.CancelledAt = &cancelledAt
	return nil
}

// fakeExecutor registra o conjunto aplicado sem tocar banco nenhum.
type fakeExecutor struct {
	applied *bulkdelete.ResolvedSet
	calls   int
	err     error
}

func (e *fakeExecutor) Apply(_ context.Context, resolved *bulkdelete.ResolvedSet) (*bulkdelete.ExecuteResult, error) {
	e.calls++
	e.applied = resolved
	if e.err != nil {
		return nil, e.err
	}
	deleted := int64(len(resolved.OneTimeIds) + len(resolved.InstallmentTxIds) + len(resolved.SubscriptionTxIds))
	return &bulkdelete.ExecuteResult{
		Success:                true,
		DeletedTransactions:    deleted,
		CancelledSubscriptions: int64(len(resolved.Cancellations)),
	}, nil
}

func containsULID(ids []ulid.ULID, id ulid.ULID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func strategyRequest(from, to time.Time, inst bulkdelete.InstallmentStrategy, sub bulkdelete.SubscriptionStrategy) *bulkdelete.Request {
	return &bulkdelete.Request{
		DateFrom:             from,
		DateTo:               &to,
		IncludeOneTime:       true,
		IncludeInstallments:  true,
		IncludeSubscriptions: true,
		InstallmentStrategy:  &inst,
		SubscriptionStrategy: &sub,
	}
}
