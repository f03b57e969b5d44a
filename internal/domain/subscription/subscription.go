package subscription

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Subscription struct {
	Id          ulid.ULID  `gorm:"type:varchar(26);primaryKey" json:"id"`
	BusinessId  ulid.ULID  `gorm:"type:varchar(26);index:idx_subscriptions_business_id;not null" json:"businessId"`
	CardId      ulid.ULID  `gorm:"type:varchar(26);index:idx_subscriptions_card_id;not null" json:"cardId"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Amount      float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Frequency   Frequency  `gorm:"type:varchar(10);not null" json:"frequency"`
	StartDate   time.Time  `gorm:"type:date;not null" json:"startDate"`
	EndDate     *time.Time `gorm:"type:date" json:"endDate"`
	Status      Status     `gorm:"type:varchar(10);not null;index:idx_subscriptions_status" json:"status"`
	CancelledAt *time.Time `json:"cancelledAt"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// NextChargeDate projeta a próxima cobrança a partir da última
// conhecida, seguindo a frequência da assinatura.
func (s *Subscription) NextChargeDate(after time.Time) time.Time {
	if s.Frequency == FrequencyAnnual {
		return after.AddDate(1, 0, 0)
	}
	return after.AddDate(0, 1, 0)
}

type Frequency string

const (
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyAnnual  Frequency = "ANNUAL"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyMonthly, FrequencyAnnual:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled:
		return true
	}
	return false
}
