package listing

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/auction"
	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Submission struct {
	OwnerID       string
	Device        json.RawMessage
	AskingPrice   int64
	PickupPincode string
	PickupCity    string
}

// Listing with its read-time auction state
type Details struct {
	Listing *model.Listing
	Auction auction.View
}

type Filter struct {
	Status  model.ListingStatus
	OwnerID string
	AgentID string
	Limit   int
	Offset  int
}

// Listing intake, queries and cancellation
type Service struct {
	tx      *store.Transactor
	clock   *auction.Clock
	monitor monitoring.Monitor
	log     *logrus.Entry
}

func NewService(tx *store.Transactor) (self *Service) {
	self = new(Service)
	self.monitor = monitoring.NewNoop()
	self.tx = tx
	self.clock = auction.NewClock(auction.DefaultWindow)
	self.log = l.NewSublogger("listing")
	return
}

func (self *Service) WithClock(clock *auction.Clock) *Service {
	self.clock = clock
	return self
}

func (self *Service) WithMonitor(monitor monitoring.Monitor) *Service {
	self.monitor = monitor
	return self
}

func (self Submission) validate() error {
	if strings.TrimSpace(self.OwnerID) == "" {
		return errs.InvalidArgument("owner_id is required")
	}
	if self.AskingPrice <= 0 {
		return errs.InvalidArgument("asking_price must be positive, got %d", self.AskingPrice)
	}
	if !IsPincode(self.PickupPincode) {
		return errs.InvalidArgument("pickup_pincode %q is not a 6 digit pincode", self.PickupPincode)
	}
	if strings.TrimSpace(self.PickupCity) == "" {
		return errs.InvalidArgument("pickup_city is required")
	}
	if len(self.Device) > 0 {
		trimmed := bytes.TrimSpace(self.Device)
		if !json.Valid(trimmed) || len(trimmed) == 0 || trimmed[0] != '{' {
			return errs.InvalidArgument("device must be a JSON object")
		}
	}
	return nil
}

func IsPincode(v string) bool {
	if len(v) != 6 {
		return false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Creates a listing waiting for the admin's decision
func (self *Service) Submit(ctx context.Context, in Submission) (out *model.Listing, err error) {
	err = in.validate()
	if err != nil {
		return
	}

	device := datatypes.JSON("{}")
	if len(in.Device) > 0 {
		device = datatypes.JSON(bytes.TrimSpace(in.Device))
	}

	now := time.Now().UTC()
	out = &model.Listing{
		ID:            uuid.NewString(),
		OwnerID:       in.OwnerID,
		Device:        device,
		AskingPrice:   in.AskingPrice,
		Status:        model.ListingStatusPendingApproval,
		Version:       1,
		PickupPincode: in.PickupPincode,
		PickupCity:    strings.TrimSpace(in.PickupCity),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		err = tx.Create(out).Error
		if err != nil {
			return
		}
		return events.Record(tx, out.ID, model.EventListingSubmitted, map[string]interface{}{
			"owner_id":     out.OwnerID,
			"asking_price": out.AskingPrice,
		})
	})
	if err != nil {
		self.monitor.GetReport().Market.Errors.DbError.Inc()
		return nil, err
	}

	self.monitor.GetReport().Market.State.ListingsSubmitted.Inc()
	self.log.WithField("listing_id", out.ID).Info("Listing submitted")
	return
}

func (self *Service) Get(ctx context.Context, listingID string) (out *Details, err error) {
	listing, err := store.GetListing(self.tx.DB().WithContext(ctx), listingID)
	if err != nil {
		return
	}
	return &Details{Listing: listing, Auction: self.clock.View(listing)}, nil
}

// Listings matching the filter, newest first
func (self *Service) List(ctx context.Context, filter Filter) (out []*Details, err error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, errs.InvalidArgument("unknown status %q", filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := self.tx.DB().WithContext(ctx).
		Model(&model.Listing{}).
		Order("created_at DESC").
		Order("id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}

	var listings []*model.Listing
	err = query.Find(&listings).Error
	if err != nil {
		return
	}

	out = make([]*Details, len(listings))
	for i, listing := range listings {
		out[i] = &Details{Listing: listing, Auction: self.clock.View(listing)}
	}
	return
}

// Withdraws a listing that didn't finish yet. Only the owner or an admin may do it
func (self *Service) Cancel(ctx context.Context, listingID, actorID string, isAdmin bool, reason string) (out *model.Listing, err error) {
	err = self.tx.Run(ctx, func(tx *gorm.DB) (err error) {
		out, err = store.LockListing(tx, listingID)
		if err != nil {
			return
		}

		if out.Status.IsTerminal() {
			return errs.PreconditionFailed(errs.GuardTerminal, "listing %s is already %s", out.ID, out.Status)
		}
		if !isAdmin && out.OwnerID != actorID {
			return errs.PreconditionFailed(errs.GuardOwner, "only the owner or an admin may cancel listing %s", out.ID)
		}

		// Agent no longer works on it
		if out.Status.IsActiveTask() && out.AgentID.Valid {
			err = store.ReleaseOpenTask(tx, out.AgentID.String)
			if err != nil {
				return
			}
		}

		err = tx.Model(&model.Bid{}).
			Where("listing_id = ?", out.ID).
			Where("status = ?", model.BidStatusActive).
			Update("status", model.BidStatusRejected).
			Error
		if err != nil {
			return
		}

		err = tx.Where("listing_id = ?", out.ID).
			Where("consumed_at IS NULL").
			Delete(&model.DeliveryCode{}).
			Error
		if err != nil {
			return
		}

		previous := out.Status
		err = Transition(tx, out, model.ListingStatusCancelled, map[string]interface{}{
			"cancel_reason":  sql.NullString{String: reason, Valid: reason != ""},
			"cancelled_at":   sql.NullTime{Time: time.Now().UTC(), Valid: true},
			"agent_id":       sql.NullString{},
			"leading_bid_id": sql.NullString{},
		})
		if err != nil {
			return
		}

		return events.Record(tx, out.ID, model.EventListingCancelled, map[string]interface{}{
			"previous_status": previous,
			"actor_id":        actorID,
			"is_admin":        isAdmin,
			"reason":          reason,
		})
	})
	if err != nil {
		return nil, err
	}

	self.monitor.GetReport().Market.State.ListingsCancelled.Inc()
	self.log.WithField("listing_id", out.ID).Info("Listing cancelled")
	return
}
