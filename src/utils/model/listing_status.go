package model

import (
	"database/sql/driver"
	"fmt"
)

type ListingStatus string

const (
	ListingStatusPendingApproval ListingStatus = "pending_approval"
	ListingStatusReceivingBids   ListingStatus = "receiving_bids"
	ListingStatusBidAccepted     ListingStatus = "bid_accepted"
	ListingStatusAgentAssigned   ListingStatus = "agent_assigned"
	ListingStatusVerification    ListingStatus = "verification"
	ListingStatusReadyForPickup  ListingStatus = "ready_for_pickup"
	ListingStatusCompleted       ListingStatus = "completed"
	ListingStatusRejected        ListingStatus = "rejected"
	ListingStatusCancelled       ListingStatus = "cancelled"
)

// Statuses in which the listing counts as an open task of its agent
var ActiveTaskStatuses = []ListingStatus{
	ListingStatusAgentAssigned,
	ListingStatusVerification,
	ListingStatusReadyForPickup,
}

// Position on the main path, -1 for side branches
func (self ListingStatus) Stage() int {
	switch self {
	case ListingStatusPendingApproval:
		return 0
	case ListingStatusReceivingBids:
		return 1
	case ListingStatusBidAccepted:
		return 2
	case ListingStatusAgentAssigned:
		return 3
	case ListingStatusVerification:
		return 4
	case ListingStatusReadyForPickup:
		return 5
	case ListingStatusCompleted:
		return 6
	}
	return -1
}

func (self ListingStatus) IsValid() bool {
	return self.Stage() >= 0 || self == ListingStatusRejected || self == ListingStatusCancelled
}

func (self ListingStatus) IsTerminal() bool {
	return self == ListingStatusCompleted || self == ListingStatusRejected || self == ListingStatusCancelled
}

func (self ListingStatus) IsActiveTask() bool {
	for _, s := range ActiveTaskStatuses {
		if s == self {
			return true
		}
	}
	return false
}

// Agent is bound to the listing
func (self ListingStatus) HasAgent() bool {
	return self.Stage() >= ListingStatusAgentAssigned.Stage()
}

func (self ListingStatus) String() string {
	return string(self)
}

func (self *ListingStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*self = ListingStatus(v)
	case []byte:
		*self = ListingStatus(v)
	default:
		return fmt.Errorf("unsupported listing status type %T", value)
	}
	return nil
}

func (self ListingStatus) Value() (driver.Value, error) {
	return string(self), nil
}
