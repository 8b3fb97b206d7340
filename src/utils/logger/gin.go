package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIdHeader = "X-Request-Id"
	requestLogKey   = "selliko.log"
)

// Gin middleware attaching a request scoped logger, with a request id, to the context
func RequestLogger(tag string) gin.HandlerFunc {
	base := NewSublogger(tag)
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if id == "" {
			id = xid.New().String()
		}
		c.Header(RequestIdHeader, id)

		entry := base.WithField("request_id", id)
		c.Set(requestLogKey, entry)

		start := time.Now()
		c.Next()

		entry.WithField("method", c.Request.Method).
			WithField("path", c.FullPath()).
			WithField("status", c.Writer.Status()).
			WithField("duration", time.Since(start)).
			Debug("Request handled")
	}
}

// Request scoped logger
func LOG(c *gin.Context) *logrus.Entry {
	v, ok := c.Get(requestLogKey)
	if ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return NewSublogger("request")
}

// Request scoped logger with the error and the returned status attached
func LOGE(c *gin.Context, err error, status int) *logrus.Entry {
	entry := LOG(c).WithField("status", status)
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}
