package fulfillment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IssuedCode struct {
	ListingID string    `json:"listing_id"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Drives a listing from pickup to the delivery handshake
type Coordinator struct {
	tx         *store.Transactor
	monitor    monitoring.Monitor
	dispatcher *Dispatcher
	log        *logrus.Entry
	hashCost   int
}

func NewCoordinator(tx *store.Transactor) (self *Coordinator) {
	self = new(Coordinator)
	self.monitor = monitoring.NewNoop()
	self.tx = tx
	self.hashCost = bcrypt.DefaultCost
	self.log = l.NewSublogger("fulfillment")
	return
}

func (self *Coordinator) WithHashCost(v int) *Coordinator {
	if v >= bcrypt.MinCost && v <= bcrypt.MaxCost {
		self.hashCost = v
	}
	return self
}

func (self *Coordinator) WithMonitor(monitor monitoring.Monitor) *Coordinator {
	self.monitor = monitor
	return self
}

// Issued codes are also sent out through the dispatcher
func (self *Coordinator) WithDispatcher(dispatcher *Dispatcher) *Coordinator {
	self.dispatcher = dispatcher
	return self
}

// Agent reports progress. Milestones go forward one step at a time
func (self *Coordinator) ReportMilestone(ctx context.Context, listingID, agentID string, milestone model.Milestone) (out *model.Listing, err error) {
	target, ok := milestone.Status()
	if !ok {
		return nil, errs.InvalidArgument("unknown milestone %q", milestone)
	}

	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out, err = store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		if out.Status.IsTerminal() {
			return errs.PreconditionFailed(errs.GuardTerminal, "listing %s is already %s", out.ID, out.Status)
		}
		if !out.Status.HasAgent() {
			return errs.PreconditionFailed(errs.GuardStatus, "listing %s has no agent yet", out.ID)
		}
		if out.AgentID.String != agentID {
			return errs.PreconditionFailed(errs.GuardAgent, "agent %s isn't assigned to listing %s", agentID, out.ID)
		}
		if out.Status.Stage()+1 != target.Stage() {
			return errs.PreconditionFailed(errs.GuardMilestoneOrder, "listing %s is %s, can't report %s", out.ID, out.Status, milestone)
		}

		previous := out.Status
		err = listing.Transition(tx, out, target, nil)
		if err != nil {
			return
		}

		return events.Record(tx, out.ID, model.EventMilestoneReported, map[string]interface{}{
			"agent_id":        agentID,
			"milestone":       milestone,
			"previous_status": previous,
		})
	})
	if err != nil {
		return nil, err
	}

	self.monitor.GetReport().Market.State.MilestonesReported.Inc()
	self.log.WithField("listing_id", out.ID).WithField("milestone", milestone).Info("Milestone reported")
	return
}

// Generates the delivery code. Issuing again replaces a code that wasn't used
func (self *Coordinator) IssueCode(ctx context.Context, listingID string) (out *IssuedCode, err error) {
	var buyerID string

	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		current, err := store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		err = listing.Expect(current, model.ListingStatusReadyForPickup)
		if err != nil {
			return
		}

		code, err := NewCode()
		if err != nil {
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(code), self.hashCost)
		if err != nil {
			return
		}

		deliveryCode := &model.DeliveryCode{
			ListingID: current.ID,
			CodeHash:  string(hash),
			IssuedAt:  time.Now().UTC(),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code_hash", "issued_at", "consumed_at"}),
		}).Create(deliveryCode).Error
		if err != nil {
			return
		}

		err = events.Record(tx, current.ID, model.EventCodeIssued, map[string]interface{}{
			"issued_at": deliveryCode.IssuedAt,
		})
		if err != nil {
			return
		}

		buyerID = current.WinningVendorID.String
		out = &IssuedCode{ListingID: current.ID, Code: code, IssuedAt: deliveryCode.IssuedAt}
		return
	})
	if err != nil {
		return nil, err
	}

	self.monitor.GetReport().Market.State.CodesIssued.Inc()
	self.log.WithField("listing_id", out.ListingID).Info("Delivery code issued")

	if self.dispatcher != nil {
		err = self.dispatcher.Dispatch(ctx, &CodeMessage{
			ListingID: out.ListingID,
			BuyerID:   buyerID,
			Code:      out.Code,
			IssuedAt:  out.IssuedAt,
		})
		if err != nil {
			// Code is valid, it may be issued again
			self.log.WithError(err).WithField("listing_id", out.ListingID).Warn("Failed to queue delivery code")
			self.monitor.GetReport().Market.Errors.DispatchFailure.Inc()
			err = nil
		}
	}
	return
}

// Delivery handshake. The first correct code completes the listing, every later attempt fails
func (self *Coordinator) ConfirmDelivery(ctx context.Context, listingID, code string) (out *model.Listing, err error) {
	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out, err = store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		var deliveryCode *model.DeliveryCode
		found := new(model.DeliveryCode)
		err = tx.Where("listing_id = ?", out.ID).First(found).Error
		switch {
		case err == nil:
			deliveryCode = found
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = nil
		default:
			return
		}

		if deliveryCode != nil && deliveryCode.IsConsumed() {
			return errs.New(errs.KindCodeAlreadyConsumed, "delivery code of listing %s was already used", out.ID)
		}

		err = listing.Expect(out, model.ListingStatusReadyForPickup)
		if err != nil {
			return
		}

		if deliveryCode == nil {
			return errs.PreconditionFailed(errs.GuardCodeNotIssued, "no delivery code was issued for listing %s", out.ID)
		}

		if !IsWellFormed(code) || bcrypt.CompareHashAndPassword([]byte(deliveryCode.CodeHash), []byte(code)) != nil {
			return errs.New(errs.KindInvalidCode, "wrong delivery code for listing %s", out.ID)
		}

		now := time.Now().UTC()
		result := tx.Model(&model.DeliveryCode{}).
			Where("listing_id = ?", out.ID).
			Where("consumed_at IS NULL").
			Update("consumed_at", sql.NullTime{Time: now, Valid: true})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrConflict
		}

		err = store.ReleaseOpenTask(tx, out.AgentID.String)
		if err != nil {
			return
		}

		err = listing.Transition(tx, out, model.ListingStatusCompleted, map[string]interface{}{
			"completed_at": sql.NullTime{Time: now, Valid: true},
		})
		if err != nil {
			return
		}

		return events.Record(tx, out.ID, model.EventDeliveryCompleted, map[string]interface{}{
			"agent_id":     out.AgentID.String,
			"completed_at": now,
		})
	})
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCode) {
			self.monitor.GetReport().Market.Errors.InvalidCode.Inc()
		}
		return nil, err
	}

	self.monitor.GetReport().Market.State.DeliveriesCompleted.Inc()
	self.log.WithField("listing_id", out.ID).Info("Delivery completed")
	return
}
