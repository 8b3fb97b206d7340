package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dirtsid3r/sellikoweb-sub001/src/api/response"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	. "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"

	"github.com/gin-gonic/gin"
)

func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidArgument:
		return http.StatusBadRequest
	case errs.KindBidTooLow, errs.KindInvalidCode:
		return http.StatusUnprocessableEntity
	case errs.KindCodeAlreadyConsumed:
		return http.StatusGone
	case errs.KindInternal:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

func (self *Server) respondError(c *gin.Context, err error, msg string) {
	status := statusOf(err)

	body := response.ErrorBody{
		Error: response.Error{
			Kind:    string(errs.KindOf(err)),
			Guard:   errs.GuardOf(err),
			Message: err.Error(),
		},
	}

	if errs.IsDomain(err) {
		LOGE(c, err, status).Info(msg)
	} else {
		// Don't leak internals
		body.Error.Message = http.StatusText(status)
		LOGE(c, err, status).Error(msg)
		self.monitor.GetReport().Market.Errors.DbError.Inc()
	}

	c.AbortWithStatusJSON(status, body)
}

func (self *Server) respondBadRequest(c *gin.Context, err error) {
	self.respondError(c, errs.InvalidArgument("%s", err.Error()), "Failed to parse request")
}
