package bulkdelete

import (
	"time"

	"Parcelo/internal/domain/subscription"
	"Parcelo/internal/domain/transaction"

	"github.com/oklog/ulid/v2"
)

type InstallmentStrategy string

const (
	InstallmentSkipAll                 InstallmentStrategy = "SKIP_ALL"
	InstallmentDeleteMatchingOnly      InstallmentStrategy = "DELETE_MATCHING_ONLY"
	InstallmentDeleteAllMatchingGroups InstallmentStrategy = "DELETE_ALL_MATCHING_GROUPS"
)

func (s InstallmentStrategy) IsValid() bool {
	switch s {
	case InstallmentSkipAll, InstallmentDeleteMatchingOnly, InstallmentDeleteAllMatchingGroups:
		return true
	}
	return false
}

type SubscriptionStrategy string

const (
	SubscriptionSkip                 SubscriptionStrategy = "SKIP"
	SubscriptionDeleteInRangeCancel  SubscriptionStrategy = "DELETE_IN_RANGE_AND_CANCEL"
)

func (s SubscriptionStrategy) IsValid() bool {
	switch s {
	case SubscriptionSkip, SubscriptionDeleteInRangeCancel:
		return true
	}
	return false
}

// Request é a forma consumida pelo núcleo, independente de transporte.
// Sem estratégias a chamada é tratada como preview.
type Request struct {
	DateFrom             time.Time `validate:"required"`
	DateTo               *time.Time
	CardIds              []ulid.ULID
	IncludeOneTime       bool
	IncludeInstallments  bool
	IncludeSubscriptions bool
	InstallmentStrategy  *InstallmentStrategy
	SubscriptionStrategy *SubscriptionStrategy
}

func (r *Request) HasStrategies() bool {
	return r.InstallmentStrategy != nil || r.SubscriptionStrategy != nil
}

func (r *Request) RangeFilter() *transaction.RangeFilter {
	return &transaction.RangeFilter{
		DateFrom: r.DateFrom,
		DateTo:   r.DateTo,
		CardIds:  r.CardIds,
	}
}

// Classification é a saída somente-leitura do classificador.
type Classification struct {
	OneTime       []*transaction.Transaction
	Groups        []*GroupClassification
	Subscriptions []*SubscriptionClassification
}

func (c *Classification) TotalInRange() int {
	total := len(c.OneTime)
	for _, group := range c.Groups {
		total += len(group.InRange)
	}
	for _, sub := range c.Subscriptions {
		total += len(sub.InRange)
	}
	return total
}

type GroupClassification struct {
	GroupId      string
	BusinessName string
	InRange      []*transaction.Transaction
	AllPayments  []*transaction.Transaction
}

func (g *GroupClassification) InRangeCount() int {
	return len(g.InRange)
}

func (g *GroupClassification) TotalCount() int {
	return len(g.AllPayments)
}

// Partial indica que só parte das parcelas do grupo cai no período
// pedido.
func (g *GroupClassification) Partial() bool {
	return g.InRangeCount() < g.TotalCount()
}

type SubscriptionClassification struct {
	Subscription        *subscription.Subscription
	BusinessName        string
	InRange             []*transaction.Transaction
	EarliestDate        time.Time
	LatestDate          time.Time
	ContinuesAfterRange bool
}

type Preview struct {
	RequiresConfirmation  bool                   `json:"requiresConfirmation"`
	Summary               Summary                `json:"summary"`
	PartialInstallments   []PartialInstallment   `json:"partialInstallments"`
	AffectedSubscriptions []AffectedSubscription `json:"affectedSubscriptions"`
}

type Summary struct {
	TotalInRange           int `json:"totalInRange"`
	OneTimeCount           int `json:"oneTimeCount"`
	InstallmentCount       int `json:"installmentCount"`
	InstallmentGroupsCount int `json:"installmentGroupsCount"`
	SubscriptionCount      int `json:"subscriptionCount"`
	SubscriptionsAffected  int `json:"subscriptionsAffected"`
}

type PartialInstallment struct {
	GroupId      string                     `json:"groupId"`
	BusinessName string                     `json:"businessName"`
	InBatch      int                        `json:"inBatch"`
	Total        int                        `json:"total"`
	AllPayments  []*transaction.Transaction `json:"allPayments"`
}

type AffectedSubscription struct {
	Id                  ulid.ULID              `json:"id"`
	Name                string                 `json:"name"`
	BusinessName        string                 `json:"businessName"`
	TransactionsInRange int                    `json:"transactionsInRange"`
	EarliestDate        time.Time              `json:"earliestDate"`
	LatestDate          time.Time              `json:"latestDate"`
	ContinuesAfterRange bool                   `json:"continuesAfterRange"`
	Frequency           subscription.Frequency `json:"frequency"`
	Status              subscription.Status    `json:"status"`
}

// ResolvedSet é o conjunto exato de linhas a deletar e assinaturas a
// cancelar, calculado sem tocar o armazenamento.
type ResolvedSet struct {
	OneTimeIds          []ulid.ULID
	InstallmentTxIds    []ulid.ULID
	InstallmentGroupIds []string
	SubscriptionTxIds   []ulid.ULID
	Cancellations       []Cancellation
}

type Cancellation struct {
	SubscriptionId ulid.ULID
	NewEndDate     time.Time
}

func (r *ResolvedSet) IsEmpty() bool {
	return len(r.OneTimeIds) == 0 &&
		len(r.InstallmentTxIds) == 0 &&
		len(r.InstallmentGroupIds) == 0 &&
		len(r.SubscriptionTxIds) == 0 &&
		len(r.Cancellations) == 0
}

type ExecuteResult struct {
	Success                bool  `json:"success"`
	DeletedTransactions    int64 `json:"deletedTransactions"`
	CancelledSubscriptions int64 `json:"cancelledSubscriptions"`
}

// Outcome é preview ou resultado de execução, nunca os dois.
type Outcome struct {
	RequiresConfirmation bool           `json:"requiresConfirmation"`
	Preview              *Preview       `json:"preview,omitempty"`
	Result               *ExecuteResult `json:"result,omitempty"`
}
