package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/http/response"
)

// AttachRequestContext bounds every request's context by timeout. Routes in
// overrides (keyed by gin route pattern) get their own bound. A handler that
// runs out of time without writing a response gets a 504.
func AttachRequestContext(timeout time.Duration, overrides map[string]time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := timeout
		if d, ok := overrides[c.FullPath()]; ok {
			limit = d
		}
		if limit <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			response.RespondAPIError(c, ctx.Err())
		}
	}
}
