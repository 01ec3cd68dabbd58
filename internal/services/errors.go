package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/ctxutil"
)

var errUnauthorized = errors.New("unauthorized")

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", errUnauthorized)
	}
	return id, nil
}

// storeErr classifies a persistence failure for the transport layer.
// Errors that already carry an API status pass through.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	mapped := aggregates.MapError(op, err)
	switch aggregates.CodeOf(mapped) {
	case aggregates.CodeValidation:
		return apierr.Validation("validation_failed", mapped)
	case aggregates.CodeNotFound:
		return apierr.NotFound("not_found", mapped)
	case aggregates.CodeConflict:
		return apierr.Conflict("conflict", mapped)
	case aggregates.CodePreconditionFailed:
		return apierr.New(http.StatusPreconditionFailed, "precondition_failed", mapped)
	case aggregates.CodeRetryable:
		return apierr.New(http.StatusServiceUnavailable, "retryable", mapped)
	default:
		return apierr.Internal("internal", mapped)
	}
}
