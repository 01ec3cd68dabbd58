package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/caddie-backend/internal/platform/apierr"
	"github.com/yungbote/caddie-backend/internal/platform/ctxutil"
)

func respond(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, err)

	var env ErrorEnvelope
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &env); decodeErr != nil {
		t.Fatalf("decode envelope: %v", decodeErr)
	}
	return rec.Code, env
}

func TestRespondAPIErrorUsesCarriedStatus(t *testing.T) {
	status, env := respond(t, apierr.NotFound("round_not_found", errors.New("round 1 not found")))
	if status != http.StatusNotFound {
		t.Fatalf("status: want=%d got=%d", http.StatusNotFound, status)
	}
	if env.Error.Code != "round_not_found" || env.Error.Message != "round 1 not found" {
		t.Fatalf("envelope: got=%+v", env)
	}
}

func TestRespondAPIErrorHidesServerErrorDetail(t *testing.T) {
	status, env := respond(t, apierr.Internal("internal", errors.New("pq: connection refused")))
	if status != http.StatusInternalServerError {
		t.Fatalf("status: got=%d", status)
	}
	if env.Error.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("message leaked: %q", env.Error.Message)
	}

	status, env = respond(t, errors.New("boom"))
	if status != http.StatusInternalServerError || env.Error.Message != internalMessage {
		t.Fatalf("plain error: status=%d env=%+v", status, env)
	}
}

func TestRespondAPIErrorDeadline(t *testing.T) {
	status, env := respond(t, context.DeadlineExceeded)
	if status != http.StatusGatewayTimeout || env.Error.Code != "timeout" {
		t.Fatalf("deadline: status=%d env=%+v", status, env)
	}
}

func TestRespondAPIErrorEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/api/rounds/1", nil)
	c.Request = req.WithContext(ctxutil.WithTraceData(req.Context(), &ctxutil.TraceData{RequestID: "req-42"}))

	RespondAPIError(c, apierr.NotFound("round_not_found", errors.New("round 1 not found")))

	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Error.RequestID != "req-42" {
		t.Fatalf("request_id: got=%q", env.Error.RequestID)
	}
}
