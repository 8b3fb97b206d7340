package model

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Pincodes an agent serves. Stored as text[] in postgres
type Pincodes []string

func (Pincodes) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (self Pincodes) Value() (driver.Value, error) {
	if self == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(self).Value()
}

func (self *Pincodes) Scan(src interface{}) error {
	return (*pq.StringArray)(self).Scan(src)
}

func (self Pincodes) Contains(pincode string) bool {
	for _, p := range self {
		if p == pincode {
			return true
		}
	}
	return false
}

type Agent struct {
	ID                  string   `gorm:"primaryKey"`
	AgentCode           string   `gorm:"not null; uniqueIndex"`
	Name                string
	ServiceablePincodes Pincodes `gorm:"comment:Empty means the whole home city is served"`
	HomeCity            string

	// Listings assigned to the agent with status in ActiveTaskStatuses
	OpenTaskCount int `gorm:"not null; default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Agent) TableName() string {
	return TableAgent
}
