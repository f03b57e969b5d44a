package installment

import (
	"context"
	"time"

	"Parcelo/internal/domain/transaction"
	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/logger"
	"Parcelo/internal/pkg"

	"github.com/oklog/ulid/v2"
)

// maxGroupIdAttempts limita o loop de desambiguação de compras gêmeas.
const maxGroupIdAttempts = 5

type Service struct {
	Repository         transaction.Repository
	BusinessRepository transaction.BusinessRepository
}

var _ transaction.PlanRegistrar = (*Service)(nil)

type RegisterPlanInput struct {
	BusinessId            ulid.ULID
	BusinessKey           string
	CardId                ulid.ULID
	TotalPaymentSum       float64
	RegularPayment        float64
	InstallmentTotal      int
	ObservedIndex         int
	ObservedDate          time.Time
	ObservedChargedAmount float64
	OriginalCurrency      string
	Cadence               Cadence
	ForceNew              bool
}

type RegisterPlanResult struct {
	GroupId string
	Created bool
	Salted  bool
}

// RegisterPayment adapta uma linha de importação para RegisterPlan.
func (s *Service) RegisterPayment(ctx context.Context, record *transaction.ImportRecord, businessId ulid.ULID) (bool, error) {
	cadence := Cadence(record.Cadence)
	if record.Cadence == "" {
		cadence = CadenceMonthly
	}

	business, err := s.BusinessRepository.GetById(ctx, businessId)
	if err != nil {
		return false, appErrors.ErrBusinessNotFound.WithError(err)
	}

	totalSum := record.TotalPaymentSum
	if totalSum == 0 {
		totalSum = record.OriginalAmount
	}

	result, err := s.RegisterPlan(ctx, &RegisterPlanInput{
		BusinessId:            businessId,
		BusinessKey:           business.Name,
		CardId:                record.CardId,
		TotalPaymentSum:       totalSum,
		RegularPayment:        record.RegularPayment,
		InstallmentTotal:      record.InstallmentTotal,
		ObservedIndex:         record.InstallmentIndex,
		ObservedDate:          record.DealDate,
		ObservedChargedAmount: record.ChargedAmount,
		OriginalCurrency:      record.OriginalCurrency,
		Cadence:               cadence,
		ForceNew:              record.ForceNew,
	})
	if err != nil {
		return false, err
	}
	return !result.Created, nil
}

// RegisterPlan reconstrói o plano completo a partir do pagamento
// observado e o persiste. Grupo já existente significa reimportação
// (merge), a menos que o chamador afirme tratar-se de compra distinta,
// caso em que o identificador é re-hasheado com salt até
// maxGroupIdAttempts tentativas.
func (s *Service) RegisterPlan(ctx context.Context, input *RegisterPlanInput) (*RegisterPlanResult, error) {
	plan, err := Reconstruct(&Observation{
		BusinessKey:      input.BusinessKey,
		TotalPaymentSum:  input.TotalPaymentSum,
		RegularPayment:   input.RegularPayment,
		InstallmentTotal: input.InstallmentTotal,
		ObservedIndex:    input.ObservedIndex,
		ObservedDate:     input.ObservedDate,
		Cadence:          input.Cadence,
	})
	if err != nil {
		return nil, err
	}

	groupId := plan.GroupId
	for attempt := 0; attempt < maxGroupIdAttempts; attempt++ {
		exists, err := s.Repository.GroupExists(ctx, groupId)
		if err != nil {
			return nil, appErrors.NewDatabaseError(err)
		}

		if exists {
			if !input.ForceNew {
				if err := s.mergeIntoExisting(ctx, groupId, input); err != nil {
					return nil, err
				}
				return &RegisterPlanResult{GroupId: groupId, Created: false, Salted: groupId != plan.GroupId}, nil
			}
			logger.Info().
				Str("groupId", groupId).
				Int("attempt", attempt+1).
				Msg("Compra gêmea detectada, re-hasheando identificador do grupo com salt")
			groupId = RehashWithSalt(plan.GroupId)
			continue
		}

		rows := s.buildRows(plan, groupId, input)
		if err := s.Repository.CreateBatch(ctx, rows); err != nil {
			if transaction.IsUniqueConstraintError(err) {
				if input.ForceNew {
					groupId = RehashWithSalt(plan.GroupId)
					continue
				}
				if err := s.mergeIntoExisting(ctx, groupId, input); err != nil {
					return nil, err
				}
				return &RegisterPlanResult{GroupId: groupId, Created: false, Salted: groupId != plan.GroupId}, nil
			}
			return nil, appErrors.NewDatabaseError(err)
		}

		return &RegisterPlanResult{GroupId: groupId, Created: true, Salted: groupId != plan.GroupId}, nil
	}

	return nil, appErrors.ErrGroupIdExhausted
}

// mergeIntoExisting preenche a vaga projetada correspondente ao
// pagamento observado num grupo já conhecido.
func (s *Service) mergeIntoExisting(ctx context.Context, groupId string, input *RegisterPlanInput) error {
	rows, err := s.Repository.GetByGroupId(ctx, groupId)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if len(rows) == 0 {
		return appErrors.ErrGroupNotFound.WithDetails(map[string]interface{}{"groupId": groupId})
	}

	if !MatchesPlan(input.TotalPaymentSum, rows[0].OriginalAmount) {
		return appErrors.NewConflictError("grupo de parcelas").WithDetails(map[string]interface{}{
			"groupId":       groupId,
			"incomingTotal": input.TotalPaymentSum,
			"knownTotal":    rows[0].OriginalAmount,
		})
	}

	for _, row := range rows {
		if row.InstallmentIndex == nil || *row.InstallmentIndex != input.ObservedIndex {
			continue
		}
		if row.Status != transaction.StatusProjected {
			// Mesma parcela, mesmo grupo, já confirmada: reimportação.
			return nil
		}
		if err := s.Repository.MarkCompleted(ctx, row.TransactionHash, input.ObservedChargedAmount, pkg.TruncateToDay(input.ObservedDate)); err != nil {
			return appErrors.NewDatabaseError(err)
		}
		return nil
	}

	return appErrors.NewInvariantViolation(
		"grupo de parcelas sem a vaga esperada para o índice observado",
		map[string]interface{}{"groupId": groupId, "index": input.ObservedIndex},
	)
}

func (s *Service) buildRows(plan *Plan, groupId string, input *RegisterPlanInput) []*transaction.Transaction {
	now := time.Now()
	total := input.InstallmentTotal
	rows := make([]*transaction.Transaction, 0, len(plan.Payments))

	for _, payment := range plan.Payments {
		index := payment.Index
		status := transaction.StatusProjected
		chargedAmount := payment.Amount
		dealDate := payment.DueDate
		if payment.Observed {
			status = transaction.StatusCompleted
			chargedAmount = input.ObservedChargedAmount
			dealDate = pkg.TruncateToDay(input.ObservedDate)
		}

		gid := groupId
		rows = append(rows, &transaction.Transaction{
			Id:                 pkg.GenerateULIDObject(),
			BusinessId:         input.BusinessId,
			CardId:             input.CardId,
			DealDate:           dealDate,
			OriginalAmount:     input.TotalPaymentSum,
			OriginalCurrency:   input.OriginalCurrency,
			ChargedAmount:      chargedAmount,
			Type:               transaction.TypeInstallment,
			Status:             status,
			InstallmentGroupId: &gid,
			InstallmentIndex:   &index,
			InstallmentTotal:   &total,
			TransactionHash:    PaymentHash(groupId, index),
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	return rows
}
