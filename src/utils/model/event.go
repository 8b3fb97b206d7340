package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Outbox row, written in the same transaction as the change it describes
type Event struct {
	ID          int64          `gorm:"primaryKey; autoIncrement" json:"id"`
	ListingID   string         `gorm:"not null; index" json:"listing_id"`
	Type        EventType      `gorm:"not null; type:text" json:"type"`
	Payload     datatypes.JSON `json:"payload"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	PublishedAt sql.NullTime   `gorm:"index" json:"-"`
}

func (Event) TableName() string {
	return TableEvent
}

func (self *Event) MarshalBinary() (data []byte, err error) {
	return json.Marshal(self)
}
