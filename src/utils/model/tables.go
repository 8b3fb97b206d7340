package model

const (
	TableListing      = "listings"
	TableBid          = "bids"
	TableAgent        = "agents"
	TableAssignment   = "assignments"
	TableDeliveryCode = "delivery_codes"
	TableEvent        = "events"
)

// All tables managed by the service, in creation order
func All() []interface{} {
	return []interface{}{
		&Listing{},
		&Bid{},
		&Agent{},
		&Assignment{},
		&DeliveryCode{},
		&Event{},
	}
}
