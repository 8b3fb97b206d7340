package admin

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Approves or rejects submitted listings. Each listing gets exactly one decision
type Gate struct {
	tx      *store.Transactor
	monitor monitoring.Monitor
	log     *logrus.Entry
	now     func() time.Time
}

func NewGate(tx *store.Transactor) (self *Gate) {
	self = new(Gate)
	self.monitor = monitoring.NewNoop()
	self.tx = tx
	self.log = l.NewSublogger("admin-gate")
	self.now = time.Now
	return
}

func (self *Gate) WithMonitor(monitor monitoring.Monitor) *Gate {
	self.monitor = monitor
	return self
}

func (self *Gate) WithNow(now func() time.Time) *Gate {
	self.now = now
	return self
}

// Re-applying a decision fails with AlreadyDecided, other statuses with PreconditionFailed
func checkUndecided(l *model.Listing) error {
	if l.Status == model.ListingStatusRejected || l.ApprovedAt.Valid {
		return errs.New(errs.KindAlreadyDecided, "listing %s was already decided", l.ID)
	}
	return listing.Expect(l, model.ListingStatusPendingApproval)
}

// Opens the auction. The window starts now
func (self *Gate) Approve(ctx context.Context, listingID, adminID string) (out *model.Listing, err error) {
	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out, err = store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		err = checkUndecided(out)
		if err != nil {
			return
		}

		approvedAt := self.now().UTC()
		err = listing.Transition(tx, out, model.ListingStatusReceivingBids, map[string]interface{}{
			"approved_at": sql.NullTime{Time: approvedAt, Valid: true},
			"decided_by":  sql.NullString{String: adminID, Valid: adminID != ""},
		})
		if err != nil {
			return
		}

		return events.Record(tx, out.ID, model.EventListingApproved, map[string]interface{}{
			"admin_id":    adminID,
			"approved_at": approvedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	self.monitor.GetReport().Market.State.ListingsApproved.Inc()
	self.log.WithField("listing_id", out.ID).Info("Listing approved")
	return
}

func (self *Gate) Reject(ctx context.Context, listingID, adminID, reason string) (out *model.Listing, err error) {
	reason = strings.TrimSpace(reason)

	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out, err = store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		err = checkUndecided(out)
		if err != nil {
			return
		}

		if reason == "" {
			return errs.PreconditionFailed(errs.GuardRejectReason, "rejecting listing %s requires a reason", out.ID)
		}

		err = listing.Transition(tx, out, model.ListingStatusRejected, map[string]interface{}{
			"rejection_reason": sql.NullString{String: reason, Valid: true},
			"decided_by":       sql.NullString{String: adminID, Valid: adminID != ""},
		})
		if err != nil {
			return
		}

		return events.Record(tx, out.ID, model.EventListingRejected, map[string]interface{}{
			"admin_id": adminID,
			"reason":   reason,
		})
	})
	if err != nil {
		return nil, err
	}

	self.monitor.GetReport().Market.State.ListingsRejected.Inc()
	self.log.WithField("listing_id", out.ID).Info("Listing rejected")
	return
}

// Admin decision as received from the outside
func (self *Gate) Decide(ctx context.Context, listingID, adminID string, approved bool, reason string) (*model.Listing, error) {
	if approved {
		return self.Approve(ctx, listingID, adminID)
	}
	return self.Reject(ctx, listingID, adminID, reason)
}
