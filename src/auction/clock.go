// Package auction computes the bidding window of a listing.
//
// Whether the window is open is always derived from approved_at and the current
// time, it is never stored.
package auction

import (
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
)

const DefaultWindow = 24 * time.Hour

type Clock struct {
	window time.Duration
	now    func() time.Time
}

func NewClock(window time.Duration) (self *Clock) {
	self = new(Clock)
	self.window = window
	if self.window <= 0 {
		self.window = DefaultWindow
	}
	self.now = time.Now
	return
}

// Overrides the time source, used in tests
func (self *Clock) WithNow(now func() time.Time) *Clock {
	self.now = now
	return self
}

func (self *Clock) Window() time.Duration {
	return self.window
}

func (self *Clock) Now() time.Time {
	return self.now().UTC()
}

// Time left until the window closes, never negative
func Remaining(approvedAt, now time.Time, window time.Duration) time.Duration {
	left := approvedAt.Add(window).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (self *Clock) Remaining(approvedAt time.Time) time.Duration {
	return Remaining(approvedAt, self.Now(), self.window)
}

func (self *Clock) ClosesAt(approvedAt time.Time) time.Time {
	return approvedAt.Add(self.window)
}

// Listing accepts bids right now
func (self *Clock) IsOpen(listing *model.Listing) bool {
	if listing.Status != model.ListingStatusReceivingBids || !listing.ApprovedAt.Valid {
		return false
	}
	return self.Remaining(listing.ApprovedAt.Time) > 0
}

// Read-time view of the auction
type View struct {
	IsOpen    bool          `json:"is_open"`
	Remaining time.Duration `json:"remaining"`
	ClosesAt  *time.Time    `json:"closes_at,omitempty"`
}

func (self *Clock) View(listing *model.Listing) (out View) {
	if !listing.ApprovedAt.Valid {
		return
	}
	closesAt := self.ClosesAt(listing.ApprovedAt.Time)
	out.ClosesAt = &closesAt
	out.IsOpen = self.IsOpen(listing)
	if out.IsOpen {
		out.Remaining = self.Remaining(listing.ApprovedAt.Time)
	}
	return
}
