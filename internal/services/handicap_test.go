package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/caddie-backend/internal/data/repos/testutil"
	"github.com/yungbote/caddie-backend/internal/modules/handicap"
)

func TestHandicapCalculateUsesProgressiveTable(t *testing.T) {
	f := newFixture(t)
	svc := NewHandicapService(f.log, f.tx, f.users, f.updater)

	got, err := svc.Calculate(f.ctx, []float64{22.0, 24.5, 20.1})
	require.NoError(t, err)
	assert.Equal(t, 19.3, got.Index)
	assert.Equal(t, 1, got.NumUsed)
	assert.Equal(t, []float64{20.1}, got.BestUsed)

	_, err = svc.Calculate(f.ctx, []float64{10, 12})
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_handicap_input")
}

func TestHandicapDifferential(t *testing.T) {
	f := newFixture(t)
	svc := NewHandicapService(f.log, f.tx, f.users, f.updater)

	d, err := svc.Differential(f.ctx, DifferentialInput{Score: 90, CourseRating: 72.0, SlopeRating: 130, TotalHoles: 18, TotalPar: 72})
	require.NoError(t, err)
	assert.Equal(t, 15.6, d)

	_, err = svc.Differential(f.ctx, DifferentialInput{Score: 90, CourseRating: 72.0, SlopeRating: 0, TotalHoles: 18, TotalPar: 72})
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_handicap_input")
}

func TestHandicapRecompute(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	for i, d := range []float64{22.0, 24.5, 20.1} {
		testutil.SeedCompletedRound(t, context.Background(), f.db, f.user.ID, d, now.Add(-time.Duration(i+1)*time.Hour))
	}
	svc := NewHandicapService(f.log, f.tx, f.users, f.updater)

	got, err := svc.Recompute(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, handicap.OutcomeUpdated, got.Outcome)
	assert.Equal(t, 19.3, got.Index)
	assert.Equal(t, 54.0, got.Previous)

	again, err := svc.Recompute(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 19.3, again.Index)
	assert.Equal(t, 19.3, again.Previous)
}
