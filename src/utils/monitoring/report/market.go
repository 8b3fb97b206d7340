package report

import (
	"go.uber.org/atomic"
)

type MarketErrors struct {
	DbError          atomic.Uint64 `json:"db_error"`
	TxConflict       atomic.Uint64 `json:"tx_conflict"`
	InvalidCode      atomic.Uint64 `json:"invalid_code"`
	DispatchFailure  atomic.Uint64 `json:"dispatch_failure"`
	ConfirmThrottled atomic.Uint64 `json:"confirm_throttled"`
}

type MarketState struct {
	ListingsSubmitted   atomic.Uint64 `json:"listings_submitted"`
	ListingsApproved    atomic.Uint64 `json:"listings_approved"`
	ListingsRejected    atomic.Uint64 `json:"listings_rejected"`
	ListingsCancelled   atomic.Uint64 `json:"listings_cancelled"`
	BidsPlaced          atomic.Uint64 `json:"bids_placed"`
	BidsRefused         atomic.Uint64 `json:"bids_refused"`
	BidsAccepted        atomic.Uint64 `json:"bids_accepted"`
	InstantWins         atomic.Uint64 `json:"instant_wins"`
	AgentsAssigned      atomic.Uint64 `json:"agents_assigned"`
	MilestonesReported  atomic.Uint64 `json:"milestones_reported"`
	CodesIssued         atomic.Uint64 `json:"codes_issued"`
	CodesDispatched     atomic.Uint64 `json:"codes_dispatched"`
	DeliveriesCompleted atomic.Uint64 `json:"deliveries_completed"`

	AverageBidsPerMinute atomic.Float64 `json:"average_bids_per_minute"`
}

type MarketReport struct {
	State  MarketState  `json:"state"`
	Errors MarketErrors `json:"errors"`
}
