package transaction

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Transaction struct {
	Id                 ulid.ULID  `gorm:"type:varchar(26);primaryKey" json:"id"`
	BusinessId         ulid.ULID  `gorm:"type:varchar(26);index:idx_transactions_business_id;not null" json:"businessId"`
	CardId             ulid.ULID  `gorm:"type:varchar(26);index:idx_transactions_card_date,priority:1;not null" json:"cardId"`
	DealDate           time.Time  `gorm:"type:date;not null;index:idx_transactions_deal_date;index:idx_transactions_card_date,priority:2" json:"dealDate"`
	OriginalAmount     float64    `gorm:"type:decimal(15,2);not null" json:"originalAmount"`
	OriginalCurrency   string     `gorm:"type:varchar(3);not null" json:"originalCurrency"`
	ChargedAmount      float64    `gorm:"type:decimal(15,2);not null" json:"chargedAmount"`
	Type               Types      `gorm:"type:varchar(15);not null;index:idx_transactions_type" json:"type"`
	Status             Status     `gorm:"type:varchar(10);not null" json:"status"`
	InstallmentGroupId *string    `gorm:"type:varchar(64);index:idx_transactions_group_id" json:"installmentGroupId"`
	InstallmentIndex   *int       `json:"installmentIndex"`
	InstallmentTotal   *int       `json:"installmentTotal"`
	SubscriptionId     *ulid.ULID `gorm:"type:varchar(26);index:idx_transactions_subscription_id" json:"subscriptionId"`
	TransactionHash    string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_transactions_hash" json:"transactionHash"`
	BusinessName       string     `gorm:"-" json:"businessName,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// LinkageValid garante que uma linha nunca é parcela e cobrança de
// assinatura ao mesmo tempo.
func (t *Transaction) LinkageValid() bool {
	return t.InstallmentGroupId == nil || t.SubscriptionId == nil
}

func (t *Transaction) IsOneTime() bool {
	return t.InstallmentGroupId == nil && t.SubscriptionId == nil
}

type Business struct {
	Id        ulid.ULID `gorm:"type:varchar(26);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_businesses_name" json:"name"`
	RawName   string    `gorm:"type:varchar(255)" json:"rawName"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Business) TableName() string {
	return "businesses"
}

type Types string

const (
	TypeOneTime      Types = "ONE_TIME"
	TypeInstallment  Types = "INSTALLMENT"
	TypeSubscription Types = "SUBSCRIPTION"
)

func (t Types) IsValid() bool {
	switch t {
	case TypeOneTime, TypeInstallment, TypeSubscription:
		return true
	}
	return false
}

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusProjected Status = "PROJECTED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusCompleted, StatusProjected, StatusCancelled:
		return true
	}
	return false
}
