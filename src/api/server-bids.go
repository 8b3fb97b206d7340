package api

import (
	"net/http"

	"github.com/dirtsid3r/sellikoweb-sub001/src/api/request"
	"github.com/dirtsid3r/sellikoweb-sub001/src/api/response"
	"github.com/dirtsid3r/sellikoweb-sub001/src/bid"
	. "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"

	"github.com/gin-gonic/gin"
)

func (self *Server) onPlaceBid(c *gin.Context) {
	var in = new(request.PlaceBid)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.ledger.PlaceBid(c.Request.Context(), bid.Placement{
		ListingID:  c.Param("id"),
		VendorID:   in.VendorID,
		Amount:     in.Amount,
		InstantWin: in.InstantWin,
	})
	if err != nil {
		self.respondError(c, err, "Bid refused")
		return
	}

	LOG(c).WithField("listing_id", out.Bid.ListingID).
		WithField("amount", out.Bid.Amount).
		WithField("instant_win", out.InstantWin).
		Debug("Bid placed")

	c.JSON(http.StatusCreated, &response.BidResult{
		Accepted:   out.Accepted,
		IsLeader:   out.IsLeader,
		InstantWin: out.InstantWin,
		Bid:        response.BidToResponse(out.Bid),
		Listing:    response.ListingToResponse(out.Listing),
	})
}

func (self *Server) onListBids(c *gin.Context) {
	out, err := self.ledger.ListBids(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.respondError(c, err, "Failed to list bids")
		return
	}

	c.JSON(http.StatusOK, response.BidsToResponse(out))
}

func (self *Server) onAcceptBid(c *gin.Context) {
	var in = new(request.AcceptBid)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.ledger.AcceptBid(c.Request.Context(), c.Param("id"), in.OwnerID, c.Param("bid_id"))
	if err != nil {
		self.respondError(c, err, "Failed to accept bid")
		return
	}

	c.JSON(http.StatusOK, response.ListingToResponse(out))
}
