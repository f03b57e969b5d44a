package transaction

import (
	"context"
	"errors"
	"strings"
	"time"

	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/logger"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ImportRecord é uma linha já extraída do extrato. O parse do arquivo
// em si acontece fora daqui.
type ImportRecord struct {
	BusinessName     string
	RawBusinessName  string
	CardId           ulid.ULID
	DealDate         time.Time
	OriginalAmount   float64
	OriginalCurrency string
	ChargedAmount    float64
	Type             Types
	InstallmentIndex int
	InstallmentTotal int
	TotalPaymentSum  float64
	RegularPayment   float64
	Cadence          string
	SubscriptionId   *ulid.ULID
	ForceNew         bool
}

type ImportSummary struct {
	Created int
	Merged  int
	Skipped int
}

// PlanRegistrar é implementado pelo serviço de parcelamento. Recebe a
// linha de parcela e cuida do grupo inteiro (backfill, colisão, merge).
type PlanRegistrar interface {
	RegisterPayment(ctx context.Context, record *ImportRecord, businessId ulid.ULID) (merged bool, err error)
}

type Service struct {
	Repository         Repository
	BusinessRepository BusinessRepository
	Plans              PlanRegistrar
}

func (s *Service) Import(ctx context.Context, records []*ImportRecord) (*ImportSummary, error) {
	summary := &ImportSummary{}

	for _, record := range records {
		if err := s.validateRecord(record); err != nil {
			return nil, err
		}

		business, err := s.resolveBusiness(ctx, record.BusinessName, record.RawBusinessName)
		if err != nil {
			return nil, err
		}

		if record.Type == TypeInstallment {
			merged, err := s.Plans.RegisterPayment(ctx, record, business.Id)
			if err != nil {
				return nil, err
			}
			if merged {
				summary.Merged++
			} else {
				summary.Created++
			}
			continue
		}

		created, err := s.createSimple(ctx, record, business.Id)
		if err != nil {
			return nil, err
		}
		if created {
			summary.Created++
		} else {
			summary.Merged++
		}
	}

	return summary, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter *RangeFilter, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	transactions, total, err := s.Repository.GetAll(ctx, filter, pagination)
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return transactions, total, nil
}

func (s *Service) createSimple(ctx context.Context, record *ImportRecord, businessId ulid.ULID) (bool, error) {
	now := time.Now()
	tx := &Transaction{
		Id:               pkg.GenerateULIDObject(),
		BusinessId:       businessId,
		CardId:           record.CardId,
		DealDate:         pkg.TruncateToDay(record.DealDate),
		OriginalAmount:   record.OriginalAmount,
		OriginalCurrency: record.OriginalCurrency,
		ChargedAmount:    record.ChargedAmount,
		Type:             record.Type,
		Status:           StatusCompleted,
		SubscriptionId:   record.SubscriptionId,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	tx.TransactionHash = ContentHash(businessId.String(), record.CardId.String(), tx.DealDate, tx.ChargedAmount, tx.Type)

	if !tx.LinkageValid() {
		return false, appErrors.NewValidationError("subscriptionId", "linha não pode ser parcela e assinatura ao mesmo tempo")
	}

	if err := s.Repository.Create(ctx, tx); err != nil {
		if IsUniqueConstraintError(err) {
			logger.Debug().
				Str("hash", tx.TransactionHash).
				Msg("Transação já importada, reimportação absorvida")
			return false, nil
		}
		return false, appErrors.NewDatabaseError(err)
	}

	return true, nil
}

func (s *Service) resolveBusiness(ctx context.Context, name, rawName string) (*Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.NewValidationError("businessName", "é obrigatório")
	}

	business, err := s.BusinessRepository.GetByName(ctx, name)
	if err == nil {
		return business, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.NewDatabaseError(err)
	}

	now := time.Now()
	business = &Business{
		Id:        pkg.GenerateULIDObject(),
		Name:      name,
		RawName:   rawName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.BusinessRepository.Create(ctx, business); err != nil {
		if IsUniqueConstraintError(err) {
			return s.BusinessRepository.GetByName(ctx, name)
		}
		return nil, appErrors.NewDatabaseError(err)
	}

	return business, nil
}

func (s *Service) validateRecord(record *ImportRecord) error {
	if record == nil {
		return appErrors.NewValidationError("record", "é obrigatório")
	}
	if !record.Type.IsValid() {
		return appErrors.NewValidationError("type", "deve ser um dos valores: ONE_TIME INSTALLMENT SUBSCRIPTION")
	}
	if pkg.IsEmptyULID(record.CardId) {
		return appErrors.NewValidationError("cardId", "é obrigatório")
	}
	if record.DealDate.IsZero() {
		return appErrors.NewValidationError("dealDate", "é obrigatório")
	}
	if record.Type == TypeInstallment && record.SubscriptionId != nil {
		return appErrors.NewValidationError("subscriptionId", "linha não pode ser parcela e assinatura ao mesmo tempo")
	}
	if record.Type == TypeSubscription && record.SubscriptionId == nil {
		return appErrors.NewValidationError("subscriptionId", "é obrigatório")
	}
	return nil
}

func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "violates unique constraint")
}
