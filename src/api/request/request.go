package request

import "encoding/json"

type SubmitListing struct {
	OwnerID       string          `json:"owner_id" binding:"required"`
	Device        json.RawMessage `json:"device" binding:"required"`
	AskingPrice   int64           `json:"asking_price" binding:"required"`
	PickupPincode string          `json:"pickup_pincode" binding:"required"`
	PickupCity    string          `json:"pickup_city" binding:"required"`
}

type ListListings struct {
	Status  string `form:"status"`
	OwnerID string `form:"owner_id"`
	AgentID string `form:"agent_id"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

type Decision struct {
	AdminID  string `json:"admin_id" binding:"required"`
	Approved *bool  `json:"approved" binding:"required"`
	Reason   string `json:"reason"`
}

type Cancel struct {
	ActorID string `json:"actor_id" binding:"required"`
	IsAdmin bool   `json:"is_admin"`
	Reason  string `json:"reason"`
}

type PlaceBid struct {
	VendorID   string `json:"vendor_id" binding:"required"`
	Amount     int64  `json:"amount" binding:"required"`
	InstantWin bool   `json:"instant_win"`
}

type AcceptBid struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

type Assign struct {
	AgentID    string `json:"agent_id" binding:"required"`
	AssignedBy string `json:"assigned_by"`
}

type AutoAssign struct {
	AssignedBy string `json:"assigned_by"`
}

type Milestone struct {
	AgentID   string `json:"agent_id" binding:"required"`
	Milestone string `json:"milestone" binding:"required"`
}

type ConfirmDelivery struct {
	Code string `json:"code" binding:"required"`
}
