package fx

import (
	"Parcelo/internal/domain/bulkdelete"
	"Parcelo/internal/domain/card"
	"Parcelo/internal/domain/installment"
	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/domain/transaction"
	"Parcelo/internal/infrastructure"

	"go.uber.org/fx"
)

// DomainModule fornece todos os services do domínio
var DomainModule = fx.Module("domain",
	fx.Provide(
		newCardService,
		newInstallmentService,
		newTransactionService,
		newSubscriptionService,
		newClassifier,
		newBulkDeleteService,
	),
)

func newCardService(repo *infrastructure.CardRepository) *card.Service {
	return &card.Service{Repository: repo}
}

func newInstallmentService(
	transactionRepo *infrastructure.TransactionRepository,
	businessRepo *infrastructure.BusinessRepository,
) *installment.Service {
	return &installment.Service{
		Repository:         transactionRepo,
		BusinessRepository: businessRepo,
	}
}

func newTransactionService(
	transactionRepo *infrastructure.TransactionRepository,
	businessRepo *infrastructure.BusinessRepository,
	installmentSvc *installment.Service,
) *transaction.Service {
	return &transaction.Service{
		Repository:         transactionRepo,
		BusinessRepository: businessRepo,
		Plans:              installmentSvc,
	}
}

func newSubscriptionService(
	repo *infrastructure.SubscriptionRepository,
	transactionRepo *infrastructure.TransactionRepository,
) *subscription.Service {
	return &subscription.Service{
		Repository:      repo,
		TransactionRepo: transactionRepo,
	}
}

func newClassifier(
	transactionRepo *infrastructure.TransactionRepository,
	subscriptionRepo *infrastructure.SubscriptionRepository,
) *bulkdelete.Classifier {
	return &bulkdelete.Classifier{
		Transactions:  transactionRepo,
		Subscriptions: subscriptionRepo,
	}
}

func newBulkDeleteService(
	classifier *bulkdelete.Classifier,
	executor *infrastructure.BulkDeleteRepository,
) *bulkdelete.Service {
	return bulkdelete.NewService(classifier, executor)
}
