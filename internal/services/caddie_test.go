package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/shot"
	"github.com/yungbote/caddie-backend/internal/modules/caddie"
	"github.com/yungbote/caddie-backend/internal/modules/shotmemory"
	"github.com/yungbote/caddie-backend/internal/platform/ctxutil"
)

type fakeRecommender struct {
	gotUser *types.User
	rec     *caddie.Recommendation
	err     error
}

func (f *fakeRecommender) Recommend(_ context.Context, u *types.User, s shot.Situation) (*caddie.Recommendation, error) {
	f.gotUser = u
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

type fakeShotMemory struct {
	gotFeedback shotmemory.FeedbackInput
	result      shotmemory.FeedbackResult
	err         error
	gotLimit    int
	recent      []*shot.Record
}

func (f *fakeShotMemory) ApplyFeedback(_ context.Context, in shotmemory.FeedbackInput) (shotmemory.FeedbackResult, error) {
	f.gotFeedback = in
	return f.result, f.err
}

func (f *fakeShotMemory) Recent(_ context.Context, _ uuid.UUID, limit int) ([]*shot.Record, error) {
	f.gotLimit = limit
	return f.recent, nil
}

func TestCaddieRecommendLoadsGolfer(t *testing.T) {
	f := newFixture(t)
	rec := &caddie.Recommendation{ShotID: uuid.New(), Recommendation: "7 iron, full swing"}
	reco := &fakeRecommender{rec: rec}
	svc := NewCaddieService(f.log, f.users, reco, &fakeShotMemory{})

	got, err := svc.Recommend(f.ctx, shot.Situation{DistanceToFlag: 140})
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	require.NotNil(t, reco.gotUser)
	assert.Equal(t, f.user.ID, reco.gotUser.ID)
}

func TestCaddieRecommendMapsErrors(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid situation", fmt.Errorf("%w: distance_to_flag must be positive", caddie.ErrInvalidSituation), http.StatusBadRequest, "invalid_situation"},
		{"agent failure", fmt.Errorf("%w: llm timeout", caddie.ErrAgentFailed), http.StatusBadGateway, "recommendation_failed"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "recommendation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCaddieService(f.log, f.users, &fakeRecommender{err: tc.err}, &fakeShotMemory{})
			_, err := svc.Recommend(f.ctx, shot.Situation{DistanceToFlag: 140})
			requireAPIStatus(t, err, tc.status, tc.code)
		})
	}
}

func TestCaddieRecommendRequiresProfile(t *testing.T) {
	f := newFixture(t)
	svc := NewCaddieService(f.log, f.users, &fakeRecommender{}, &fakeShotMemory{})
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: uuid.New()})

	_, err := svc.Recommend(ctx, shot.Situation{DistanceToFlag: 140})
	requireAPIStatus(t, err, http.StatusNotFound, "user_not_found")
}

func TestCaddieFeedbackPassesCallerAndMapsErrors(t *testing.T) {
	f := newFixture(t)
	shotID := uuid.New()
	mem := &fakeShotMemory{result: shotmemory.FeedbackResult{ShotID: shotID, Deleted: true}}
	svc := NewCaddieService(f.log, f.users, &fakeRecommender{}, mem)

	club := "8 iron"
	got, err := svc.Feedback(f.ctx, FeedbackRequest{Timestamp: "2024-05-01T10:00:00.000000Z", ClubUsed: &club})
	require.NoError(t, err)
	assert.Equal(t, shotID, got.ShotID)
	assert.True(t, got.Deleted)
	assert.Equal(t, f.user.ID, mem.gotFeedback.UserID)
	assert.Equal(t, &club, mem.gotFeedback.ClubUsed)

	mem.err = fmt.Errorf("%w: timestamp x", shotmemory.ErrNotFound)
	_, err = svc.Feedback(f.ctx, FeedbackRequest{Timestamp: "x"})
	requireAPIStatus(t, err, http.StatusNotFound, "shot_not_found")

	mem.err = fmt.Errorf("%w: bad timestamp", shotmemory.ErrInvalidFeedback)
	_, err = svc.Feedback(f.ctx, FeedbackRequest{Timestamp: "x"})
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_feedback")

	mem.err = errors.New("vector store unavailable")
	_, err = svc.Feedback(f.ctx, FeedbackRequest{Timestamp: "x"})
	requireAPIStatus(t, err, http.StatusBadGateway, "feedback_failed")
}

func TestCaddieListShotsClampsLimit(t *testing.T) {
	f := newFixture(t)
	mem := &fakeShotMemory{}
	svc := NewCaddieService(f.log, f.users, &fakeRecommender{}, mem)

	_, err := svc.ListShots(f.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, mem.gotLimit)
	_, err = svc.ListShots(f.ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, mem.gotLimit)
}
