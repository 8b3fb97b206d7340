package model

import (
	"database/sql"
	"time"
)

// Single use code handed to the buyer. Only the hash is stored
type DeliveryCode struct {
	ListingID  string    `gorm:"primaryKey"`
	CodeHash   string    `gorm:"not null"`
	IssuedAt   time.Time `gorm:"not null"`
	ConsumedAt sql.NullTime
}

func (DeliveryCode) TableName() string {
	return TableDeliveryCode
}

func (self *DeliveryCode) IsConsumed() bool {
	return self.ConsumedAt.Valid
}
