package model

import "time"

// Binding between a listing and an agent, never updated
type Assignment struct {
	ID         string    `gorm:"primaryKey"`
	ListingID  string    `gorm:"not null; uniqueIndex"`
	AgentID    string    `gorm:"not null; index"`
	AssignedBy string
	AssignedAt time.Time `gorm:"not null"`
}

func (Assignment) TableName() string {
	return TableAssignment
}
