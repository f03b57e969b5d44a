package fx

import (
	"Parcelo/config"
	"Parcelo/internal/infrastructure"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newTransactionRepository,
		newBusinessRepository,
		newSubscriptionRepository,
		newCardRepository,
		newBulkDeleteRepository,
	),
)

func newDatabase(cfg *config.Config) (*gorm.DB, error) {
	return infrastructure.NewDb(cfg)
}

func newTransactionRepository(db *gorm.DB) *infrastructure.TransactionRepository {
	return &infrastructure.TransactionRepository{DB: db}
}

func newBusinessRepository(db *gorm.DB) *infrastructure.BusinessRepository {
	return &infrastructure.BusinessRepository{DB: db}
}

func newSubscriptionRepository(db *gorm.DB) *infrastructure.SubscriptionRepository {
	return &infrastructure.SubscriptionRepository{DB: db}
}

func newCardRepository(db *gorm.DB) *infrastructure.CardRepository {
	return &infrastructure.CardRepository{DB: db}
}

func newBulkDeleteRepository(db *gorm.DB) *infrastructure.BulkDeleteRepository {
	return &infrastructure.BulkDeleteRepository{DB: db}
}
