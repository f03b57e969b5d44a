package infrastructure

import (
	"context"
	"time"

	"Parcelo/internal/domain/bulkdelete"
	"Parcelo/internal/domain/subscription"
	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/pkg"

	"gorm.io/gorm"
)

// BulkDeleteRepository é o motor de execução: aplica o conjunto
// resolvido numa única transação do banco. Qualquer falha reverte tudo
// e reporta contagens zeradas; deleção parcial nunca é observável.
type BulkDeleteRepository struct {
	DB *gorm.DB
}

var _ bulkdelete.Executor = (*BulkDeleteRepository)(nil)

func (r *BulkDeleteRepository) Apply(ctx context.Context, resolved *bulkdelete.ResolvedSet) (*bulkdelete.ExecuteResult, error) {
	result := &bulkdelete.ExecuteResult{}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(resolved.OneTimeIds)+len(resolved.InstallmentTxIds)+len(resolved.SubscriptionTxIds))
		ids = append(ids, pkg.ULIDSetToStrings(resolved.OneTimeIds)...)
		ids = append(ids, pkg.ULIDSetToStrings(resolved.InstallmentTxIds)...)
		ids = append(ids, pkg.ULIDSetToStrings(resolved.SubscriptionTxIds)...)

		if len(ids) > 0 {
			res := tx.Table("transactions").Where("id IN ?", ids).Delete(&transactionDB{})
			if res.Error != nil {
				return res.Error
			}
			result.DeletedTransactions += res.RowsAffected
		}

		// Grupos inteiros são deletados pelo identificador do grupo,
		// não pela lista de ids originalmente buscada, para alcançar
		// as linhas descobertas só na consulta completa do grupo.
		if len(resolved.InstallmentGroupIds) > 0 {
			res := tx.Table("transactions").
				Where("installment_group_id IN ?", resolved.InstallmentGroupIds).
				Delete(&transactionDB{})
			if res.Error != nil {
				return res.Error
			}
			result.DeletedTransactions += res.RowsAffected
		}

		now := time.Now()
		for _, cancellation := range resolved.Cancellations {
			res := tx.Table("subscriptions").
				Where("id = ? AND status = ?", cancellation.SubscriptionId.String(), string(subscription.StatusActive)).
				Updates(map[string]interface{}{
					"status":       string(subscription.StatusCancelled),
					"end_date":     cancellation.NewEndDate,
					"cancelled_at": now,
					"updated_at":   now,
				})
			if res.Error != nil {
				return res.Error
			}
			// RowsAffected zero significa cancelamento concorrente já
			// aplicado; estado terminal idêntico não é erro.
			result.CancelledSubscriptions += res.RowsAffected
		}

		return nil
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	result.Success = true
	return result, nil
}
