package model

type EventType string

const (
	EventListingSubmitted  EventType = "listing.submitted"
	EventListingApproved   EventType = "listing.approved"
	EventListingRejected   EventType = "listing.rejected"
	EventListingCancelled  EventType = "listing.cancelled"
	EventBidPlaced         EventType = "bid.placed"
	EventBidAccepted       EventType = "bid.accepted"
	EventAgentAssigned     EventType = "agent.assigned"
	EventMilestoneReported EventType = "milestone.reported"
	EventCodeIssued        EventType = "delivery.code_issued"
	EventDeliveryCompleted EventType = "delivery.completed"
)
