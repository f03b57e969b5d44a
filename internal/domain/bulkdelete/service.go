package bulkdelete

import (
	"context"

	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/logger"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Service struct {
	Classifier *Classifier
	Executor   Executor
}

func NewService(classifier *Classifier, executor Executor) *Service {
	return &Service{
		Classifier: classifier,
		Executor:   executor,
	}
}

// Run trata a requisição inteira: sem estratégias informadas devolve o
// preview; com estratégias, reclassifica do zero e executa. Nenhum
// estado fica retido entre preview e execução.
func (s *Service) Run(ctx context.Context, request *Request) (*Outcome, error) {
	if err := s.validateRequest(request); err != nil {
		return nil, err
	}

	classification, err := s.Classifier.Classify(ctx, request)
	if err != nil {
		return nil, err
	}

	if !request.HasStrategies() {
		return &Outcome{
			RequiresConfirmation: true,
			Preview:              buildPreview(classification),
		}, nil
	}

	resolved, err := Resolve(classification, request)
	if err != nil {
		return nil, err
	}

	result, err := s.Executor.Apply(ctx, resolved)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Execução da deleção em massa falhou, transação revertida")
		return nil, err
	}

	logger.Info().
		Int64("deletedTransactions", result.DeletedTransactions).
		Int64("cancelledSubscriptions", result.CancelledSubscriptions).
		Msg("Deleção em massa executada")

	return &Outcome{Result: result}, nil
}

// Preview devolve só a classificação, sem nunca mutar o armazenamento.
func (s *Service) Preview(ctx context.Context, request *Request) (*Preview, error) {
	if err := s.validateRequest(request); err != nil {
		return nil, err
	}

	classification, err := s.Classifier.Classify(ctx, request)
	if err != nil {
		return nil, err
	}

	return buildPreview(classification), nil
}

func (s *Service) validateRequest(request *Request) error {
	if request == nil {
		return appErrors.NewValidationError("request", "é obrigatório")
	}
	if err := validate.Struct(request); err != nil {
		return appErrors.ParseValidationErrors(err)
	}
	if request.DateTo != nil && request.DateTo.Before(request.DateFrom) {
		return appErrors.NewValidationError("dateTo", "deve ser maior ou igual à data inicial")
	}
	if request.InstallmentStrategy != nil && !request.InstallmentStrategy.IsValid() {
		return appErrors.NewValidationError("installmentStrategy",
			"deve ser um dos valores: SKIP_ALL DELETE_MATCHING_ONLY DELETE_ALL_MATCHING_GROUPS")
	}
	if request.SubscriptionStrategy != nil && !request.SubscriptionStrategy.IsValid() {
		return appErrors.NewValidationError("subscriptionStrategy",
			"deve ser um dos valores: SKIP DELETE_IN_RANGE_AND_CANCEL")
	}
	return nil
}

func buildPreview(classification *Classification) *Preview {
	preview := &Preview{
		RequiresConfirmation: true,
		Summary: Summary{
			TotalInRange:           classification.TotalInRange(),
			OneTimeCount:           len(classification.OneTime),
			InstallmentGroupsCount: len(classification.Groups),
			SubscriptionsAffected:  len(classification.Subscriptions),
		},
		PartialInstallments:   make([]PartialInstallment, 0, len(classification.Groups)),
		AffectedSubscriptions: make([]AffectedSubscription, 0, len(classification.Subscriptions)),
	}

	for _, group := range classification.Groups {
		preview.Summary.InstallmentCount += group.InRangeCount()
		preview.PartialInstallments = append(preview.PartialInstallments, PartialInstallment{
			GroupId:      group.GroupId,
			BusinessName: group.BusinessName,
			InBatch:      group.InRangeCount(),
			Total:        group.TotalCount(),
			AllPayments:  group.AllPayments,
		})
	}

	for _, classified := range classification.Subscriptions {
		preview.Summary.SubscriptionCount += len(classified.InRange)
		preview.AffectedSubscriptions = append(preview.AffectedSubscriptions, AffectedSubscription{
			Id:                  classified.Subscription.Id,
			Name:                classified.Subscription.Name,
			BusinessName:        classified.BusinessName,
			TransactionsInRange: len(classified.InRange),
			EarliestDate:        classified.EarliestDate,
			LatestDate:          classified.LatestDate,
			ContinuesAfterRange: classified.ContinuesAfterRange,
			Frequency:           classified.Subscription.Frequency,
			Status:              classified.Subscription.Status,
		})
	}

	return preview
}
