package subscription

import (
	"context"
	"errors"
	"time"

	"Parcelo/internal/domain/transaction"
	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/logger"
	"Parcelo/internal/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

type Service struct {
	Repository      Repository
	TransactionRepo transaction.Repository
}

// CreateSubscriptionInput é a saída do detector de assinaturas (a
// heurística de detecção em si roda fora daqui).
type CreateSubscriptionInput struct {
	BusinessId      ulid.ULID `validate:"required"`
	CardId          ulid.ULID `validate:"required"`
	Name            string    `validate:"required,max=255"`
	Amount          float64   `validate:"required,gt=0"`
	Frequency       Frequency `validate:"required,oneof=MONTHLY ANNUAL"`
	FirstOccurrence time.Time `validate:"required"`
}

func (s *Service) Create(ctx context.Context, input *CreateSubscriptionInput) (*Subscription, error) {
	if err := validate.Struct(input); err != nil {
		return nil, appErrors.ParseValidationErrors(err)
	}

	now := time.Now()
	subscription := &Subscription{
		Id:         pkg.GenerateULIDObject(),
		BusinessId: input.BusinessId,
		CardId:     input.CardId,
		Name:       input.Name,
		Amount:     input.Amount,
		Frequency:  input.Frequency,
		StartDate:  pkg.TruncateToDay(input.FirstOccurrence),
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Repository.Create(ctx, subscription); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	return subscription, nil
}

func (s *Service) GetById(ctx context.Context, subscriptionId ulid.ULID) (*Subscription, error) {
	subscription, err := s.Repository.GetById(ctx, subscriptionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrSubscriptionNotFound
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return subscription, nil
}

func (s *Service) ListSubscriptions(ctx context.Context, pagination *pkg.PaginationParams) ([]*Subscription, int64, error) {
	subscriptions, total, err := s.Repository.GetAll(ctx, pagination)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return subscriptions, total, nil
}

// Cancel é terminal e idempotente: a assinatura transita para
// CANCELLED uma única vez; cancelar de novo não é erro e não mexe em
// endDate nem cancelledAt já gravados.
func (s *Service) Cancel(ctx context.Context, subscriptionId ulid.ULID, endDate time.Time) error {
	subscription, err := s.GetById(ctx, subscriptionId)
	if err != nil {
		return err
	}

	if !subscription.IsActive() {
		return nil
	}

	if err := s.Repository.Cancel(ctx, subscriptionId, pkg.TruncateToDay(endDate), time.Now()); err != nil {
		return appErrors.NewDatabaseError(err)
	}

	return nil
}

// ProjectCharges materializa as cobranças projetadas das assinaturas
// ativas até o horizonte dado. A constraint de unicidade do hash
// absorve projeções já materializadas, então o job pode rodar quantas
// vezes for preciso.
func (s *Service) ProjectCharges(ctx context.Context, until time.Time) (int, error) {
	active, err := s.Repository.GetActive(ctx)
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}

	until = pkg.TruncateToDay(until)
	created := 0

	for _, subscription := range active {
		date := pkg.TruncateToDay(subscription.StartDate)
		for !date.After(until) {
			ok, err := s.projectCharge(ctx, subscription, date)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
			date = subscription.NextChargeDate(date)
		}
	}

	logger.Info().
		Int("created", created).
		Time("until", until).
		Msg("Projeção de cobranças de assinaturas concluída")

	return created, nil
}

func (s *Service) projectCharge(ctx context.Context, subscription *Subscription, date time.Time) (bool, error) {
	subscriptionId := subscription.Id
	now := time.Now()

	row := &transaction.Transaction{
		Id:               pkg.GenerateULIDObject(),
		BusinessId:       subscription.BusinessId,
		CardId:           subscription.CardId,
		DealDate:         date,
		OriginalAmount:   subscription.Amount,
		OriginalCurrency: "BRL",
		ChargedAmount:    subscription.Amount,
		Type:             transaction.TypeSubscription,
		Status:           transaction.StatusProjected,
		SubscriptionId:   &subscriptionId,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	row.TransactionHash = transaction.ContentHash(
		subscription.BusinessId.String(),
		subscription.CardId.String(),
		date,
		subscription.Amount,
		transaction.TypeSubscription,
	)

	if err := s.TransactionRepo.Create(ctx, row); err != nil {
		if transaction.IsUniqueConstraintError(err) {
			return false, nil
		}
		return false, appErrors.NewDatabaseError(err)
	}

	return true, nil
}
