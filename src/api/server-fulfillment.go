package api

import (
	"net/http"

	"github.com/dirtsid3r/sellikoweb-sub001/src/api/request"
	"github.com/dirtsid3r/sellikoweb-sub001/src/api/response"
	. "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"github.com/gin-gonic/gin"
)

func (self *Server) onEligibleAgents(c *gin.Context) {
	out, err := self.matcher.FindEligibleAgents(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.respondError(c, err, "Failed to find eligible agents")
		return
	}

	c.JSON(http.StatusOK, response.AgentsToResponse(out))
}

func (self *Server) onAssign(c *gin.Context) {
	var in = new(request.Assign)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.matcher.Assign(c.Request.Context(), c.Param("id"), in.AgentID, in.AssignedBy)
	if err != nil {
		self.respondError(c, err, "Failed to assign agent")
		return
	}

	c.JSON(http.StatusOK, assignmentToResponse(out.Assignment, out.Listing))
}

func (self *Server) onAutoAssign(c *gin.Context) {
	var in = new(request.AutoAssign)
	// Body is optional
	if c.Request.ContentLength > 0 {
		err := c.ShouldBindJSON(in)
		if err != nil {
			self.respondBadRequest(c, err)
			return
		}
	}

	out, err := self.matcher.AutoAssign(c.Request.Context(), c.Param("id"), in.AssignedBy)
	if err != nil {
		self.respondError(c, err, "Failed to auto assign agent")
		return
	}

	c.JSON(http.StatusOK, assignmentToResponse(out.Assignment, out.Listing))
}

func assignmentToResponse(assignment *model.Assignment, listing *model.Listing) *response.Assignment {
	return &response.Assignment{
		Assigned:   true,
		AgentID:    assignment.AgentID,
		AssignedBy: assignment.AssignedBy,
		AssignedAt: assignment.AssignedAt,
		Listing:    response.ListingToResponse(listing),
	}
}

func (self *Server) onMilestone(c *gin.Context) {
	var in = new(request.Milestone)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.coordinator.ReportMilestone(c.Request.Context(), c.Param("id"), in.AgentID, model.Milestone(in.Milestone))
	if err != nil {
		self.respondError(c, err, "Failed to report milestone")
		return
	}

	c.JSON(http.StatusOK, response.ListingToResponse(out))
}

func (self *Server) onIssueCode(c *gin.Context) {
	out, err := self.coordinator.IssueCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.respondError(c, err, "Failed to issue delivery code")
		return
	}

	c.JSON(http.StatusCreated, out)
}

func (self *Server) onConfirmDelivery(c *gin.Context) {
	listingID := c.Param("id")
	if !self.limiter.Allow(listingID) {
		self.monitor.GetReport().Market.Errors.ConfirmThrottled.Inc()
		LOGE(c, nil, http.StatusTooManyRequests).WithField("listing_id", listingID).Warn("Too many delivery confirmations")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorBody{
			Error: response.Error{
				Kind:    "TOO_MANY_REQUESTS",
				Message: "too many delivery confirmations, try again later",
			},
		})
		return
	}

	var in = new(request.ConfirmDelivery)
	err := c.ShouldBindJSON(in)
	if err != nil {
		self.respondBadRequest(c, err)
		return
	}

	out, err := self.coordinator.ConfirmDelivery(c.Request.Context(), listingID, in.Code)
	if err != nil {
		self.respondError(c, err, "Delivery not confirmed")
		return
	}

	c.JSON(http.StatusOK, &response.Delivery{
		Completed: out.Status == model.ListingStatusCompleted,
		Listing:   response.ListingToResponse(out),
	})
}
