package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/domain/transaction"
	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type fakeSubscriptionRepository struct {
	createFn    func(ctx context.Context, sub *subscription.Subscription) error
	updateFn    func(ctx context.Context, sub *subscription.Subscription) error
	getByIdFn   func(ctx context.Context, id ulid.ULID) (*subscription.Subscription, error)
	getAllFn    func(ctx context.Context, pagination *pkg.PaginationParams) ([]*subscription.Subscription, int64, error)
	getActiveFn func(ctx context.Context) ([]*subscription.Subscription, error)
	cancelFn    func(ctx context.Context, id ulid.ULID, endDate, cancelledAt time.Time) error
}

func (f *fakeSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	if f.createFn != nil {
		return f.createFn(ctx, sub)
	}
	return nil
}

func (f *fakeSubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, sub)
	}
	return nil
}

func (f *fakeSubscriptionRepository) GetById(ctx context.Context, id ulid.ULID) (*subscription.Subscription, error) {
	if f.getByIdFn != nil {
		return f.getByIdFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionRepository) GetAll(ctx context.Context, pagination *pkg.PaginationParams) ([]*subscription.Subscription, int64, error) {
	if f.getAllFn != nil {
		return f.getAllFn(ctx, pagination)
	}
	return nil, 0, nil
}

func (f *fakeSubscriptionRepository) GetActive(ctx context.Context) ([]*subscription.Subscription, error) {
	if f.getActiveFn != nil {
		return f.getActiveFn(ctx)
	}
	return nil, nil
}

func (f *fakeSubscriptionRepository) Cancel(ctx context.Context, id ulid.ULID, endDate, cancelledAt time.Time) error {
	if f.cancelFn != nil {
		return f.cancelFn(ctx, id, endDate, cancelledAt)
	}
	return nil
}

type fakeChargeRepository struct {
	createFn func(ctx context.Context, row *transaction.Transaction) error
}

func (f *fakeChargeRepository) Create(ctx context.Context, row *transaction.Transaction) error {
	if f.createFn != nil {
		return f.createFn(ctx, row)
	}
	return nil
}

func (f *fakeChargeRepository) CreateBatch(_ context.Context, _ []*transaction.Transaction) error {
	return nil
}

func (f *fakeChargeRepository) GetByHash(_ context.Context, _ string) (*transaction.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChargeRepository) GetInRange(_ context.Context, _ *transaction.RangeFilter) ([]*transaction.Transaction, error) {
	return nil, nil
}

func (f *fakeChargeRepository) GetByGroupId(_ context.Context, _ string) ([]*transaction.Transaction, error) {
	return nil, nil
}

func (f *fakeChargeRepository) GroupExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (f *fakeChargeRepository) ExistsSubscriptionChargeAfter(_ context.Context, _ ulid.ULID, _ time.Time) (bool, error) {
	return false, nil
}

func (f *fakeChargeRepository) MarkCompleted(_ context.Context, _ string, _ float64, _ time.Time) error {
	return nil
}

func (f *fakeChargeRepository) GetAll(_ context.Context, _ *transaction.RangeFilter, _ *pkg.PaginationParams) ([]*transaction.Transaction, int64, error) {
	return nil, 0, nil
}

func validInput() *subscription.CreateSubscriptionInput {
	return &subscription.CreateSubscriptionInput{
		BusinessId:      pkg.GenerateULIDObject(),
		CardId:          pkg.GenerateULIDObject(),
		Name:            "Streaming",
		Amount:          39.90,
		Frequency:       subscription.FrequencyMonthly,
		FirstOccurrence: time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC),
	}
}

func TestCreateSubscription(t *testing.T) {
	var persisted *subscription.Subscription
	repo := &fakeSubscriptionRepository{
		createFn: func(_ context.Context, sub *subscription.Subscription) error {
			persisted = sub
			return nil
		},
	}
	svc := &subscription.Service{Repository: repo, TransactionRepo: &fakeChargeRepository{}}

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if persisted == nil {
		t.Fatal("assinatura não foi persistida")
	}
	if created.Status != subscription.StatusActive {
		t.Errorf("assinatura nova deveria nascer ativa, veio %s", created.Status)
	}
	if !created.StartDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartDate deveria ser truncada ao dia, veio %s", created.StartDate)
	}
	if pkg.IsEmptyULID(created.Id) {
		t.Error("assinatura sem identificador")
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	svc := &subscription.Service{Repository: &fakeSubscriptionRepository{}, TransactionRepo: &fakeChargeRepository{}}

	cases := []struct {
		name   string
		mutate func(*subscription.CreateSubscriptionInput)
	}{
		{"nome vazio", func(i *subscription.CreateSubscriptionInput) { i.Name = "" }},
		{"valor zero", func(i *subscription.CreateSubscriptionInput) { i.Amount = 0 }},
		{"valor negativo", func(i *subscription.CreateSubscriptionInput) { i.Amount = -10 }},
		{"frequência inválida", func(i *subscription.CreateSubscriptionInput) { i.Frequency = "WEEKLY" }},
		{"primeira ocorrência zerada", func(i *subscription.CreateSubscriptionInput) { i.FirstOccurrence = time.Time{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(input)
			_, err := svc.Create(context.Background(), input)
			if err == nil {
				t.Fatalf("esperava erro de validação para %s", tc.name)
			}
			appErr, ok := appErrors.AsAppError(err)
			if !ok || appErr.Code != "VALIDATION_ERROR" {
				t.Fatalf("erro inesperado: %v", err)
			}
		})
	}
}

func TestGetByIdNotFound(t *testing.T) {
	svc := &subscription.Service{Repository: &fakeSubscriptionRepository{}, TransactionRepo: &fakeChargeRepository{}}

	_, err := svc.GetById(context.Background(), pkg.GenerateULIDObject())
	if !errors.Is(err, appErrors.ErrSubscriptionNotFound) {
		t.Fatalf("esperava ErrSubscriptionNotFound, veio %v", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	endDate := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cancelledAt := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	sub := &subscription.Subscription{
		Id:          pkg.GenerateULIDObject(),
		Status:      subscription.StatusActive,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	cancelCalls := 0
	repo := &fakeSubscriptionRepository{
		getByIdFn: func(_ context.Context, _ ulid.ULID) (*subscription.Subscription, error) {
			return sub, nil
		},
		cancelFn: func(_ context.Context, _ ulid.ULID, end, _ time.Time) error {
			cancelCalls++
			sub.Status = subscription.StatusCancelled
			sub.EndDate = &end
			sub.CancelledAt = &cancelledAt
			return nil
		},
	}
	svc := &subscription.Service{Repository: repo, TransactionRepo: &fakeChargeRepository{}}

	if err := svc.Cancel(context.Background(), sub.Id, endDate); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if cancelCalls != 1 {
		t.Fatalf("esperava 1 cancelamento, veio %d", cancelCalls)
	}

	// Segundo cancelamento: não é erro e não regrava o estado terminal.
	laterEnd := endDate.AddDate(0, 3, 0)
	if err := svc.Cancel(context.Background(), sub.Id, laterEnd); err != nil {
		t.Fatalf("cancelar de novo não deveria ser erro: %v", err)
	}
	if cancelCalls != 1 {
		t.Error("assinatura já cancelada não deveria voltar ao repositório")
	}
	if !sub.EndDate.Equal(endDate) {
		t.Errorf("endDate original deveria ser preservada, veio %s", sub.EndDate)
	}
}

func TestCancelMissingSubscription(t *testing.T) {
	svc := &subscription.Service{Repository: &fakeSubscriptionRepository{}, TransactionRepo: &fakeChargeRepository{}}

	err := svc.Cancel(context.Background(), pkg.GenerateULIDObject(), time.Now())
	if !errors.Is(err, appErrors.ErrSubscriptionNotFound) {
		t.Fatalf("esperava ErrSubscriptionNotFound, veio %v", err)
	}
}

func TestProjectChargesMaterializesUntilHorizon(t *testing.T) {
	active := &subscription.Subscription{
		Id:         pkg.GenerateULIDObject(),
		BusinessId: pkg.GenerateULIDObject(),
		CardId:     pkg.GenerateULIDObject(),
		Amount:     49.90,
		Frequency:  subscription.FrequencyMonthly,
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     subscription.StatusActive,
	}
	repo := &fakeSubscriptionRepository{
		getActiveFn: func(_ context.Context) ([]*subscription.Subscription, error) {
			return []*subscription.Subscription{active}, nil
		},
	}

	var charges []*transaction.Transaction
	txRepo := &fakeChargeRepository{
		createFn: func(_ context.Context, row *transaction.Transaction) error {
			charges = append(charges, row)
			return nil
		},
	}
	svc := &subscription.Service{Repository: repo, TransactionRepo: txRepo}

	created, err := svc.ProjectCharges(context.Background(), time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	// Janeiro, fevereiro, março e abril (dia 10 <= 15).
	if created != 4 {
		t.Fatalf("esperava 4 cobranças projetadas, veio %d", created)
	}
	seen := make(map[string]bool)
	for _, charge := range charges {
		if charge.Type != transaction.TypeSubscription || charge.Status != transaction.StatusProjected {
			t.Errorf("cobrança projetada com tipo/status errado: %s/%s", charge.Type, charge.Status)
		}
		if charge.SubscriptionId == nil || *charge.SubscriptionId != active.Id {
			t.Error("cobrança sem vínculo com a assinatura")
		}
		if charge.InstallmentGroupId != nil {
			t.Error("cobrança de assinatura nunca carrega grupo de parcelas")
		}
		if seen[charge.TransactionHash] {
			t.Error("hashes de cobranças projetadas colidiram")
		}
		seen[charge.TransactionHash] = true
	}
}

func TestProjectChargesSkipsAlreadyMaterialized(t *testing.T) {
	active := &subscription.Subscription{
		Id:         pkg.GenerateULIDObject(),
		BusinessId: pkg.GenerateULIDObject(),
		CardId:     pkg.GenerateULIDObject(),
		Amount:     49.90,
		Frequency:  subscription.FrequencyMonthly,
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     subscription.StatusActive,
	}
	repo := &fakeSubscriptionRepository{
		getActiveFn: func(_ context.Context) ([]*subscription.Subscription, error) {
			return []*subscription.Subscription{active}, nil
		},
	}
	txRepo := &fakeChargeRepository{
		createFn: func(_ context.Context, _ *transaction.Transaction) error {
			// Simula a constraint de unicidade do hash já satisfeita.
			return errors.New(`duplicate key value violates unique constraint "idx_transactions_hash" (SQLSTATE 23505)`)
		},
	}
	svc := &subscription.Service{Repository: repo, TransactionRepo: txRepo}

	created, err := svc.ProjectCharges(context.Background(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("reprojetar não deveria ser erro: %v", err)
	}
	if created != 0 {
		t.Errorf("cobranças já materializadas não deveriam contar, veio %d", created)
	}
}
