package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/caddie-backend/internal/platform/ctxutil"
	"github.com/yungbote/caddie-backend/internal/platform/logger"
)

func TestAuthTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "secret", "caddie-web")
	userID, sessionID := uuid.New(), uuid.New()

	tok, err := svc.SignAccessToken(userID, sessionID, time.Minute)
	require.NoError(t, err)

	ctx, err := svc.SetContextFromToken(context.Background(), tok)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, userID, rd.UserID)
	assert.Equal(t, sessionID, rd.SessionID)
	assert.Equal(t, tok, rd.TokenString)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "secret", "caddie-web")
	other := NewAuthService(logger.Nop(), "other-secret", "caddie-web")
	foreignIssuer := NewAuthService(logger.Nop(), "secret", "someone-else")

	expired, err := svc.SignAccessToken(uuid.New(), uuid.Nil, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.SignAccessToken(uuid.New(), uuid.Nil, time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.SignAccessToken(uuid.New(), uuid.Nil, time.Minute)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
	} {
		_, err := svc.SetContextFromToken(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
