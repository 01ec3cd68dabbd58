package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/platform/apierr"
)

const internalMessage = "internal server error"

// RespondAPIError writes err using the status and code it carries. Errors
// without one become a 500 whose message is not exposed.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
			RespondError(c, status, ae.Code, errors.New(http.StatusText(status)))
			return
		}
		RespondError(c, status, ae.Code, ae)
		return
	}
	_ = c.Error(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		RespondError(c, http.StatusGatewayTimeout, "timeout", errors.New("request timed out"))
	case errors.Is(err, context.Canceled):
		RespondError(c, 499, "canceled", errors.New("request canceled"))
	default:
		RespondError(c, http.StatusInternalServerError, "internal", errors.New(internalMessage))
	}
}

// RespondBadRequest reports a malformed request body or parameter.
func RespondBadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
