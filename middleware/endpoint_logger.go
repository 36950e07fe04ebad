package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/util"
	"github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request once the handler chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()

		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = util.Log().Error()
		case status >= 400:
			evt = util.Log().Warn()
		default:
			evt = util.Log().Info()
		}

		evt = evt.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())
		if ident, ok := GetIdentity(c); ok {
			evt = evt.Uint("user_id", ident.ID).Str("role", ident.Role)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Msg("request")
	}
}
