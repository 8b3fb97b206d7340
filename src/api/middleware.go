package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/teivah/onecontext"
)

// Request context is cancelled when the client goes away, the timeout passes or the server stops
func (self *Server) withTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancelMerged := onecontext.Merge(self.Ctx, c.Request.Context())
		defer cancelMerged()

		ctx, cancel := context.WithTimeout(ctx, self.Config.Api.RequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
