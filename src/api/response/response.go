package response

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/auction"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
)

type Error struct {
	Kind    string `json:"kind"`
	Guard   string `json:"guard,omitempty"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Error Error `json:"error"`
}

type Listing struct {
	ID               string              `json:"listing_id"`
	OwnerID          string              `json:"owner_id"`
	Device           json.RawMessage     `json:"device,omitempty"`
	AskingPrice      int64               `json:"asking_price"`
	Status           model.ListingStatus `json:"status"`
	Version          int64               `json:"version"`
	ApprovedAt       *time.Time          `json:"approved_at,omitempty"`
	HighestBidAmount int64               `json:"highest_bid_amount"`
	BidCount         int64               `json:"bid_count"`
	LeadingBidID     string              `json:"leading_bid_id,omitempty"`
	WinningBidID     string              `json:"winning_bid_id,omitempty"`
	WinningVendorID  string              `json:"winning_vendor_id,omitempty"`
	AgentID          string              `json:"agent_id,omitempty"`
	PickupPincode    string              `json:"pickup_pincode"`
	PickupCity       string              `json:"pickup_city"`
	RejectionReason  string              `json:"rejection_reason,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Auction          *auction.View       `json:"auction,omitempty"`
}

type Listings struct {
	Listings []*Listing `json:"listings"`
}

type Bid struct {
	ID           string          `json:"bid_id"`
	ListingID    string          `json:"listing_id"`
	VendorID     string          `json:"vendor_id"`
	Amount       int64           `json:"amount"`
	IsInstantWin bool            `json:"instant_win"`
	Status       model.BidStatus `json:"status"`
	PlacedAt     time.Time       `json:"placed_at"`
}

type Bids struct {
	Bids []*Bid `json:"bids"`
}

type BidResult struct {
	Accepted   bool     `json:"accepted"`
	IsLeader   bool     `json:"is_leader"`
	InstantWin bool     `json:"instant_win"`
	Bid        *Bid     `json:"bid"`
	Listing    *Listing `json:"listing"`
}

type EligibleAgent struct {
	AgentID       string `json:"agent_id"`
	AgentCode     string `json:"agent_code"`
	OpenTaskCount int    `json:"open_task_count"`
}

type EligibleAgents struct {
	Agents []*EligibleAgent `json:"agents"`
}

type Assignment struct {
	Assigned   bool      `json:"assigned"`
	AgentID    string    `json:"agent_id"`
	AssignedBy string    `json:"assigned_by,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
	Listing    *Listing  `json:"listing"`
}

type Delivery struct {
	Completed bool     `json:"completed"`
	Listing   *Listing `json:"listing"`
}

func nullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func ListingToResponse(listing *model.Listing) *Listing {
	return &Listing{
		ID:               listing.ID,
		OwnerID:          listing.OwnerID,
		Device:           json.RawMessage(listing.Device),
		AskingPrice:      listing.AskingPrice,
		Status:           listing.Status,
		Version:          listing.Version,
		ApprovedAt:       nullTime(listing.ApprovedAt),
		HighestBidAmount: listing.HighestBidAmount,
		BidCount:         listing.BidCount,
		LeadingBidID:     nullString(listing.LeadingBidID),
		WinningBidID:     nullString(listing.WinningBidID),
		WinningVendorID:  nullString(listing.WinningVendorID),
		AgentID:          nullString(listing.AgentID),
		PickupPincode:    listing.PickupPincode,
		PickupCity:       listing.PickupCity,
		RejectionReason:  nullString(listing.RejectionReason),
		CancelReason:     nullString(listing.CancelReason),
		CompletedAt:      nullTime(listing.CompletedAt),
		CreatedAt:        listing.CreatedAt,
		UpdatedAt:        listing.UpdatedAt,
	}
}

func DetailsToResponse(details *listing.Details) *Listing {
	out := ListingToResponse(details.Listing)
	view := details.Auction
	out.Auction = &view
	return out
}

func DetailsListToResponse(details []*listing.Details) *Listings {
	out := make([]*Listing, len(details))
	for i, d := range details {
		out[i] = DetailsToResponse(d)
	}
	return &Listings{Listings: out}
}

func BidToResponse(bid *model.Bid) *Bid {
	if bid == nil {
		return nil
	}
	return &Bid{
		ID:           bid.ID,
		ListingID:    bid.ListingID,
		VendorID:     bid.VendorID,
		Amount:       bid.Amount,
		IsInstantWin: bid.IsInstantWin,
		Status:       bid.Status,
		PlacedAt:     bid.PlacedAt,
	}
}

func BidsToResponse(bids []*model.Bid) *Bids {
	out := make([]*Bid, len(bids))
	for i, bid := range bids {
		out[i] = BidToResponse(bid)
	}
	return &Bids{Bids: out}
}

func AgentsToResponse(agents []*model.Agent) *EligibleAgents {
	out := make([]*EligibleAgent, len(agents))
	for i, agent := range agents {
		out[i] = &EligibleAgent{
			AgentID:       agent.ID,
			AgentCode:     agent.AgentCode,
			OpenTaskCount: agent.OpenTaskCount,
		}
	}
	return &EligibleAgents{Agents: out}
}
