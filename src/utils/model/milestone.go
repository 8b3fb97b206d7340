package model

// Progress marker reported by the agent
type Milestone string

const (
	MilestoneVerification   Milestone = "verification"
	MilestoneReadyForPickup Milestone = "ready_for_pickup"
)

// Status the listing moves to once the milestone is reported
func (self Milestone) Status() (ListingStatus, bool) {
	switch self {
	case MilestoneVerification:
		return ListingStatusVerification, true
	case MilestoneReadyForPickup:
		return ListingStatusReadyForPickup, true
	}
	return "", false
}
