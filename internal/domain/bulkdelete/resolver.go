package bulkdelete

import (
	"fmt"

	appErrors "Parcelo/internal/errors"
)

// Resolve converte classificação e estratégias no conjunto exato de
// deleção e cancelamento, sem tocar o armazenamento. Estratégia
// desconhecida é erro, nunca um no-op.
func Resolve(classification *Classification, request *Request) (*ResolvedSet, error) {
	resolved := &ResolvedSet{}

	if request.IncludeOneTime {
		for _, row := range classification.OneTime {
			resolved.OneTimeIds = append(resolved.OneTimeIds, row.Id)
		}
	}

	if request.IncludeInstallments {
		if err := resolveInstallments(resolved, classification, request); err != nil {
			return nil, err
		}
	}

	if request.IncludeSubscriptions {
		if err := resolveSubscriptions(resolved, classification, request); err != nil {
			return nil, err
		}
	}

	return resolved, nil
}

func resolveInstallments(resolved *ResolvedSet, classification *Classification, request *Request) error {
	if request.InstallmentStrategy == nil {
		return appErrors.NewValidationError("installmentStrategy", "é obrigatório quando parcelas estão incluídas")
	}

	switch strategy := *request.InstallmentStrategy; strategy {
	case InstallmentSkipAll:
		// Nenhuma linha de nenhum grupo é deletada.

	case InstallmentDeleteMatchingOnly:
		// Só as parcelas do período.
		for _, group := range classification.Groups {
			for _, row := range group.InRange {
				resolved.InstallmentTxIds = append(resolved.InstallmentTxIds, row.Id)
			}
		}

	case InstallmentDeleteAllMatchingGroups:
		// Deleção chaveada pelo identificador do grupo, alcançando
		// também as linhas fora do período.
		for _, group := range classification.Groups {
			resolved.InstallmentGroupIds = append(resolved.InstallmentGroupIds, group.GroupId)
		}

	default:
		return appErrors.NewValidationError("installmentStrategy",
			fmt.Sprintf("estratégia de parcelas desconhecida: %s", strategy))
	}

	return nil
}

func resolveSubscriptions(resolved *ResolvedSet, classification *Classification, request *Request) error {
	if request.SubscriptionStrategy == nil {
		return appErrors.NewValidationError("subscriptionStrategy", "é obrigatório quando assinaturas estão incluídas")
	}

	switch strategy := *request.SubscriptionStrategy; strategy {
	case SubscriptionSkip:
		// Nada deletado, nada cancelado.

	case SubscriptionDeleteInRangeCancel:
		for _, classified := range classification.Subscriptions {
			for _, row := range classified.InRange {
				resolved.SubscriptionTxIds = append(resolved.SubscriptionTxIds, row.Id)
			}
			// endDate recebe a data da cobrança deletada mais antiga.
			resolved.Cancellations = append(resolved.Cancellations, Cancellation{
				SubscriptionId: classified.Subscription.Id,
				NewEndDate:     classified.EarliestDate,
			})
		}

	default:
		return appErrors.NewValidationError("subscriptionStrategy",
			fmt.Sprintf("estratégia de assinaturas desconhecida: %s", strategy))
	}

	return nil
}
