package bid

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/auction"
	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultMinIncrement = 100

type Placement struct {
	ListingID  string
	VendorID   string
	Amount     int64
	InstantWin bool
}

type Result struct {
	Bid *model.Bid

	// Listing right after the bid was stored
	Listing *model.Listing

	// Bid was stored
	Accepted bool

	// Bid is the current leader or the winner
	IsLeader bool

	// Bid closed the auction
	InstantWin bool
}

// Append only bids with a single leader per listing
type Ledger struct {
	tx           *store.Transactor
	clock        *auction.Clock
	monitor      monitoring.Monitor
	log          *logrus.Entry
	minIncrement int64
}

func NewLedger(tx *store.Transactor) (self *Ledger) {
	self = new(Ledger)
	self.monitor = monitoring.NewNoop()
	self.tx = tx
	self.clock = auction.NewClock(auction.DefaultWindow)
	self.minIncrement = DefaultMinIncrement
	self.log = l.NewSublogger("bid-ledger")
	return
}

func (self *Ledger) WithClock(clock *auction.Clock) *Ledger {
	self.clock = clock
	return self
}

func (self *Ledger) WithMinIncrement(v int64) *Ledger {
	self.minIncrement = v
	return self
}

func (self *Ledger) WithMonitor(monitor monitoring.Monitor) *Ledger {
	self.monitor = monitor
	return self
}

func (self *Ledger) PlaceBid(ctx context.Context, in Placement) (out *Result, err error) {
	if strings.TrimSpace(in.VendorID) == "" {
		return nil, errs.InvalidArgument("vendor_id is required")
	}
	if in.Amount <= 0 {
		return nil, errs.InvalidArgument("amount must be positive, got %d", in.Amount)
	}

	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		// Fresh result on every attempt
		out = &Result{}

		current, err := store.LockListing(tx, in.ListingID)
		if err != nil {
			return
		}

		err = listing.Expect(current, model.ListingStatusReceivingBids)
		if err != nil {
			return
		}

		if !self.clock.IsOpen(current) {
			return errs.New(errs.KindAuctionClosed, "auction of listing %s closed at %s", current.ID, self.clock.ClosesAt(current.ApprovedAt.Time).Format(time.RFC3339))
		}

		if current.OwnerID == in.VendorID {
			return errs.PreconditionFailed(errs.GuardSelfBid, "owner can't bid on listing %s", current.ID)
		}

		instant := in.InstantWin && QualifiesForInstantWin(current, in.Amount)
		if in.InstantWin && !instant {
			return errs.New(errs.KindBidTooLow, "instant win on listing %s needs at least %d and more than %d, got %d", current.ID, current.AskingPrice, current.HighestBidAmount, in.Amount)
		}
		if !instant {
			minimum := MinimumBid(current, self.minIncrement)
			if in.Amount < minimum {
				return errs.New(errs.KindBidTooLow, "bid on listing %s needs at least %d, got %d", current.ID, minimum, in.Amount)
			}
		}

		// Previous leader
		if current.LeadingBidID.Valid {
			err = tx.Model(&model.Bid{}).
				Where("id = ?", current.LeadingBidID.String).
				Where("status = ?", model.BidStatusActive).
				Update("status", model.BidStatusOutbid).
				Error
			if err != nil {
				return
			}
		}

		now := time.Now().UTC()
		bid := &model.Bid{
			ID:           uuid.NewString(),
			ListingID:    current.ID,
			VendorID:     in.VendorID,
			Amount:       in.Amount,
			IsInstantWin: instant,
			Status:       model.BidStatusActive,
			PlacedAt:     now,
			UpdatedAt:    now,
		}
		if instant {
			bid.Status = model.BidStatusAccepted
		}
		err = tx.Create(bid).Error
		if err != nil {
			return
		}

		updates := map[string]interface{}{
			"highest_bid_amount": bid.Amount,
			"bid_count":          current.BidCount + 1,
			"leading_bid_id":     sql.NullString{String: bid.ID, Valid: true},
		}

		if instant {
			updates["winning_bid_id"] = sql.NullString{String: bid.ID, Valid: true}
			updates["winning_vendor_id"] = sql.NullString{String: bid.VendorID, Valid: true}
			updates["accepted_at"] = sql.NullTime{Time: now, Valid: true}
			err = listing.Transition(tx, current, model.ListingStatusBidAccepted, updates)
		} else {
			err = store.UpdateListing(tx, current, updates)
		}
		if err != nil {
			return
		}

		err = events.Record(tx, current.ID, model.EventBidPlaced, map[string]interface{}{
			"bid_id":      bid.ID,
			"vendor_id":   bid.VendorID,
			"amount":      bid.Amount,
			"instant_win": instant,
		})
		if err != nil {
			return
		}

		if instant {
			err = events.Record(tx, current.ID, model.EventBidAccepted, map[string]interface{}{
				"bid_id":      bid.ID,
				"vendor_id":   bid.VendorID,
				"amount":      bid.Amount,
				"instant_win": true,
			})
			if err != nil {
				return
			}
		}

		out.Bid = bid
		out.Listing = current
		out.Accepted = true
		out.IsLeader = current.LeadingBidID.String == bid.ID
		out.InstantWin = instant
		return
	})
	if err != nil {
		if errors.Is(err, errs.ErrBidTooLow) || errors.Is(err, errs.ErrAuctionClosed) {
			self.monitor.GetReport().Market.State.BidsRefused.Inc()
		}
		return nil, err
	}

	self.monitor.GetReport().Market.State.BidsPlaced.Inc()
	if out.InstantWin {
		self.monitor.GetReport().Market.State.InstantWins.Inc()
		self.monitor.GetReport().Market.State.BidsAccepted.Inc()
	}

	self.log.WithField("listing_id", in.ListingID).
		WithField("bid_id", out.Bid.ID).
		WithField("amount", out.Bid.Amount).
		WithField("instant_win", out.InstantWin).
		Debug("Bid placed")
	return
}

// Seller takes the leading bid. Allowed after the window elapsed as well
func (self *Ledger) AcceptBid(ctx context.Context, listingID, ownerID, bidID string) (out *model.Listing, err error) {
	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out, err = store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		err = listing.Expect(out, model.ListingStatusReceivingBids)
		if err != nil {
			return
		}

		if out.OwnerID != ownerID {
			return errs.PreconditionFailed(errs.GuardOwner, "only the owner may accept bids on listing %s", out.ID)
		}

		bid := new(model.Bid)
		err = tx.Where("id = ?", bidID).Where("listing_id = ?", out.ID).First(bid).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("bid %s not found on listing %s", bidID, out.ID)
		}
		if err != nil {
			return
		}

		if bid.Status != model.BidStatusActive || out.LeadingBidID.String != bid.ID {
			return errs.PreconditionFailed(errs.GuardLeadingBid, "bid %s isn't the leading bid of listing %s", bid.ID, out.ID)
		}

		result := tx.Model(&model.Bid{}).
			Where("id = ?", bid.ID).
			Where("status = ?", model.BidStatusActive).
			Update("status", model.BidStatusAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrConflict
		}

		err = listing.Transition(tx, out, model.ListingStatusBidAccepted, map[string]interface{}{
			"winning_bid_id":    sql.NullString{String: bid.ID, Valid: true},
			"winning_vendor_id": sql.NullString{String: bid.VendorID, Valid: true},
			"accepted_at":       sql.NullTime{Time: time.Now().UTC(), Valid: true},
		})
		if err != nil {
			return
		}

		return events.Record(tx, out.ID, model.EventBidAccepted, map[string]interface{}{
			"bid_id":      bid.ID,
			"vendor_id":   bid.VendorID,
			"amount":      bid.Amount,
			"instant_win": false,
		})
	})
	if err != nil {
		return nil, err
	}

	self.monitor.GetReport().Market.State.BidsAccepted.Inc()
	self.log.WithField("listing_id", out.ID).WithField("bid_id", bidID).Info("Bid accepted")
	return
}

// Bids of a listing, newest first
func (self *Ledger) ListBids(ctx context.Context, listingID string) (out []*model.Bid, err error) {
	db := self.tx.DB().WithContext(ctx)

	_, err = store.GetListing(db, listingID)
	if err != nil {
		return
	}

	err = db.Where("listing_id = ?", listingID).
		Order("placed_at DESC").
		Order("amount DESC").
		Find(&out).
		Error
	return
}

// Current leading bid, or the winner once a bid was accepted
func (self *Ledger) Leader(ctx context.Context, listingID string) (out *model.Bid, err error) {
	db := self.tx.DB().WithContext(ctx)

	current, err := store.GetListing(db, listingID)
	if err != nil {
		return
	}

	if !current.LeadingBidID.Valid {
		return nil, errs.NotFound("listing %s has no bids", listingID)
	}

	out = new(model.Bid)
	err = db.Where("id = ?", current.LeadingBidID.String).First(out).Error
	return
}
