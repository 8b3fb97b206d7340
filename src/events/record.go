// Package events implements the transactional outbox.
//
// Every state change records an Event in the transaction that makes the change.
// The Relay publishes unpublished events to Redis in id order.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stores an event in the given transaction
func Record(tx *gorm.DB, listingID string, eventType model.EventType, payload interface{}) (err error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event payload: %w", eventType, err)
	}

	event := &model.Event{
		ListingID: listingID,
		Type:      eventType,
		Payload:   datatypes.JSON(buf),
		CreatedAt: time.Now().UTC(),
	}
	err = tx.Create(event).Error
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", eventType, err)
	}
	return
}

// Events of a listing, oldest first
func ForListing(db *gorm.DB, listingID string) (out []*model.Event, err error) {
	err = db.Where("listing_id = ?", listingID).
		Order("id ASC").
		Find(&out).
		Error
	return
}
