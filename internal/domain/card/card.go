package card

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Card struct {
	Id             ulid.ULID `gorm:"type:varchar(26);primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	Issuer         string    `gorm:"type:varchar(50)" json:"issuer"`
	LastFourDigits string    `gorm:"type:varchar(4)" json:"lastFourDigits"`
	IsActive       bool      `gorm:"not null;default:true;index:idx_cards_active" json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;not null" json:"updatedAt"`
}

func (Card) TableName() string {
	return "cards"
}
