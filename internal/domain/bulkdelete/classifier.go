package bulkdelete

import (
	"context"
	"errors"
	"sort"

	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/domain/transaction"
	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/logger"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Classifier particiona as transações do período em avulsas, grupos de
// parcelas e assinaturas, e puxa o conjunto completo relacionado de
// cada grupo e assinatura tocados. Somente leitura.
type Classifier struct {
	Transactions  transaction.Repository
	Subscriptions subscription.Repository
}

func (c *Classifier) Classify(ctx context.Context, request *Request) (*Classification, error) {
	inRange, err := c.Transactions.GetInRange(ctx, request.RangeFilter())
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	classification := &Classification{}
	groupRows := make(map[string][]*transaction.Transaction)
	groupOrder := make([]string, 0)
	subscriptionRows := make(map[ulid.ULID][]*transaction.Transaction)
	subscriptionOrder := make([]ulid.ULID, 0)

	for _, row := range inRange {
		switch {
		case row.InstallmentGroupId != nil:
			groupId := *row.InstallmentGroupId
			if _, seen := groupRows[groupId]; !seen {
				groupOrder = append(groupOrder, groupId)
			}
			groupRows[groupId] = append(groupRows[groupId], row)
		case row.SubscriptionId != nil:
			subscriptionId := *row.SubscriptionId
			if _, seen := subscriptionRows[subscriptionId]; !seen {
				subscriptionOrder = append(subscriptionOrder, subscriptionId)
			}
			subscriptionRows[subscriptionId] = append(subscriptionRows[subscriptionId], row)
		default:
			classification.OneTime = append(classification.OneTime, row)
		}
	}

	for _, groupId := range groupOrder {
		group, err := c.classifyGroup(ctx, groupId, groupRows[groupId])
		if err != nil {
			return nil, err
		}
		classification.Groups = append(classification.Groups, group)
	}

	for _, subscriptionId := range subscriptionOrder {
		classified, err := c.classifySubscription(ctx, subscriptionId, subscriptionRows[subscriptionId], request)
		if err != nil {
			return nil, err
		}
		if classified == nil {
			continue
		}
		classification.Subscriptions = append(classification.Subscriptions, classified)
	}

	return classification, nil
}

// classifyGroup emite uma segunda consulta por todas as parcelas do
// grupo, independente de data, para distinguir grupo completo de
// parcial.
func (c *Classifier) classifyGroup(ctx context.Context, groupId string, inRange []*transaction.Transaction) (*GroupClassification, error) {
	allPayments, err := c.Transactions.GetByGroupId(ctx, groupId)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	group := &GroupClassification{
		GroupId:     groupId,
		InRange:     inRange,
		AllPayments: allPayments,
	}
	if len(inRange) > 0 {
		group.BusinessName = inRange[0].BusinessName
	}

	// O conjunto do período é subconjunto do grupo inteiro; violar
	// isso aborta a requisição.
	if group.InRangeCount() > group.TotalCount() {
		return nil, appErrors.NewInvariantViolation(
			"grupo de parcelas com mais linhas no período do que no total",
			map[string]interface{}{
				"groupId":      groupId,
				"inRangeCount": group.InRangeCount(),
				"totalCount":   group.TotalCount(),
			},
		)
	}

	return group, nil
}

func (c *Classifier) classifySubscription(ctx context.Context, subscriptionId ulid.ULID, inRange []*transaction.Transaction, request *Request) (*SubscriptionClassification, error) {
	sub, err := c.Subscriptions.GetById(ctx, subscriptionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Referência órfã não é fatal: registra e segue com o resto.
			logger.Warn().
				Str("subscriptionId", subscriptionId.String()).
				Msg("Transação referencia assinatura inexistente, ignorando a referência")
			return nil, nil
		}
		return nil, appErrors.NewDatabaseError(err)
	}

	sorted := make([]*transaction.Transaction, len(inRange))
	copy(sorted, inRange)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DealDate.Before(sorted[j].DealDate)
	})

	classified := &SubscriptionClassification{
		Subscription: sub,
		InRange:      sorted,
		EarliestDate: sorted[0].DealDate,
		LatestDate:   sorted[len(sorted)-1].DealDate,
	}
	if len(sorted) > 0 {
		classified.BusinessName = sorted[0].BusinessName
	}

	// Período sem limite superior não tem "depois".
	if request.DateTo != nil {
		continues, err := c.Transactions.ExistsSubscriptionChargeAfter(ctx, subscriptionId, *request.DateTo)
		if err != nil {
			return nil, appErrors.NewDatabaseError(err)
		}
		classified.ContinuesAfterRange = continues
	}

	return classified, nil
}
