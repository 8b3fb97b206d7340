package api

import (
	"net/http"

	"github.com/dirtsid3r/sellikoweb-sub001/src/api/request"
	"github.com/dirtsid3r/sellikoweb-sub001/src/api/response"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	. "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"github.com/gin-gonic/gin"
)

func (self *Server) onSubmitListing(c *gin.Context) {
	var in = new(request.SubmitListing)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.listings.Submit(c.Request.Context(), listing.Submission{
		OwnerID:       in.OwnerID,
		Device:        in.Device,
		AskingPrice:   in.AskingPrice,
		PickupPincode: in.PickupPincode,
		PickupCity:    in.PickupCity,
	})
	if err != nil {
		self.respondError(c, err, "Failed to submit listing")
		return
	}

	LOG(c).WithField("listing_id", out.ID).Debug("Listing submitted")
	c.JSON(http.StatusCreated, response.ListingToResponse(out))
}

func (self *Server) onListListings(c *gin.Context) {
	var in = new(request.ListListings)
	err := c.ShouldBindQuery(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.listings.List(c.Request.Context(), listing.Filter{
		Status:  model.ListingStatus(in.Status),
		OwnerID: in.OwnerID,
		AgentID: in.AgentID,
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		self.respondError(c, err, "Failed to list listings")
		return
	}

	c.JSON(http.StatusOK, response.DetailsListToResponse(out))
}

func (self *Server) onGetListing(c *gin.Context) {
	out, err := self.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.respondError(c, err, "Failed to get listing")
		return
	}

	c.JSON(http.StatusOK, response.DetailsToResponse(out))
}

func (self *Server) onDecision(c *gin.Context) {
	var in = new(request.Decision)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.gate.Decide(c.Request.Context(), c.Param("id"), in.AdminID, *in.Approved, in.Reason)
	if err != nil {
		self.respondError(c, err, "Failed to decide on listing")
		return
	}

	c.JSON(http.StatusOK, response.ListingToResponse(out))
}

func (self *Server) onCancel(c *gin.Context) {
	var in = new(request.Cancel)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.listings.Cancel(c.Request.Context(), c.Param("id"), in.ActorID, in.IsAdmin, in.Reason)
	if err != nil {
		self.respondError(c, err, "Failed to cancel listing")
		return
	}

	c.JSON(http.StatusOK, response.ListingToResponse(out))
}
