package listing

import (
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"gorm.io/gorm"
)

// Allowed transitions. Every non-terminal status may also move to cancelled
var transitions = map[model.ListingStatus][]model.ListingStatus{
	model.ListingStatusPendingApproval: {model.ListingStatusReceivingBids, model.ListingStatusRejected},
	model.ListingStatusReceivingBids:   {model.ListingStatusBidAccepted},
	model.ListingStatusBidAccepted:     {model.ListingStatusAgentAssigned},
	model.ListingStatusAgentAssigned:   {model.ListingStatusVerification},
	model.ListingStatusVerification:    {model.ListingStatusReadyForPickup},
	model.ListingStatusReadyForPickup:  {model.ListingStatusCompleted},
}

func CanTransition(from, to model.ListingStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == model.ListingStatusCancelled {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Fails with PreconditionFailed unless the listing is in the expected status
func Expect(listing *model.Listing, expected model.ListingStatus) error {
	if listing.Status != expected {
		return errs.PreconditionFailed(errs.GuardStatus, "listing %s is %s, expected %s", listing.ID, listing.Status, expected)
	}
	return nil
}

// Moves the locked listing to the given status, together with the other column updates
func Transition(tx *gorm.DB, listing *model.Listing, to model.ListingStatus, updates map[string]interface{}) error {
	if !CanTransition(listing.Status, to) {
		guard := errs.GuardStatus
		if listing.Status.IsTerminal() {
			guard = errs.GuardTerminal
		}
		return errs.PreconditionFailed(guard, "listing %s can't move from %s to %s", listing.ID, listing.Status, to)
	}

	if updates == nil {
		updates = make(map[string]interface{})
	}
	updates["status"] = to
	return store.UpdateListing(tx, listing, updates)
}
