package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	txtest "github.com/yungbote/caddie-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/caddie-backend/internal/data/repos/testutil"
	"github.com/yungbote/caddie-backend/internal/modules/handicap"
)

func nineHoleConfig() StartRoundInput {
	in := StartRoundInput{CourseName: "Pitch and Putt", TotalHoles: 9}
	for i := 1; i <= 9; i++ {
		in.Holes = append(in.Holes, HoleConfig{HoleNumber: i, Par: 4, Yards: 350})
	}
	return in
}

func playAll(t *testing.T, svc RoundService, ctx context.Context, roundID uuid.UUID, holes, strokes int) {
	t.Helper()
	for h := 1; h <= holes; h++ {
		_, err := svc.UpdateHole(ctx, roundID, h, HoleUpdate{Strokes: strokes})
		require.NoError(t, err, "hole %d", h)
	}
}

func TestRoundStartFromTeeSnapshotsRatingAndHoles(t *testing.T) {
	f := newFixture(t)
	course := testutil.SeedCourse(t, context.Background(), f.db, "Pebble Creek", 18)
	teeID := course.Tees[0].ID
	svc := f.roundService()

	started, err := svc.Start(f.ctx, StartRoundInput{CourseID: &course.ID, TeeID: &teeID})
	require.NoError(t, err)

	got, err := svc.Get(f.ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pebble Creek", got.CourseName)
	assert.Equal(t, "White", got.TeeName)
	assert.Equal(t, 18, got.TotalHoles)
	assert.Equal(t, 72, got.TotalPar)
	require.NotNil(t, got.CourseRating)
	require.NotNil(t, got.SlopeRating)
	assert.Equal(t, 72.0, *got.CourseRating)
	assert.Equal(t, 113.0, *got.SlopeRating)
	assert.Len(t, got.HoleScores, 18)
	for _, h := range got.HoleScores {
		assert.Zero(t, h.Strokes)
	}

	active, err := svc.Active(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, started.ID, active.ID)
}

func TestRoundStartRejectsSecondActiveRound(t *testing.T) {
	f := newFixture(t)
	svc := f.roundService()

	_, err := svc.Start(f.ctx, nineHoleConfig())
	require.NoError(t, err)

	_, err = svc.Start(f.ctx, nineHoleConfig())
	requireAPIStatus(t, err, http.StatusConflict, "active_round_exists")
}

func TestRoundStartValidatesExplicitHoles(t *testing.T) {
	f := newFixture(t)
	svc := f.roundService()

	short := nineHoleConfig()
	short.Holes = short.Holes[:8]
	_, err := svc.Start(f.ctx, short)
	requireAPIStatus(t, err, http.StatusBadRequest, "hole_count_mismatch")

	dup := nineHoleConfig()
	dup.Holes[8].HoleNumber = 1
	_, err = svc.Start(f.ctx, dup)
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_hole_numbers")

	odd := nineHoleConfig()
	odd.TotalHoles = 12
	_, err = svc.Start(f.ctx, odd)
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_total_holes")

	rating := 35.5
	half := nineHoleConfig()
	half.CourseRating = &rating
	_, err = svc.Start(f.ctx, half)
	requireAPIStatus(t, err, http.StatusBadRequest, "incomplete_rating")

	missing := uuid.New()
	_, err = svc.Start(f.ctx, StartRoundInput{TeeID: &missing})
	requireAPIStatus(t, err, http.StatusNotFound, "tee_not_found")
}

func TestRoundStartRequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.roundService().Start(context.Background(), nineHoleConfig())
	requireAPIStatus(t, err, http.StatusUnauthorized, "")
}

func TestRoundUpdateHoleRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	svc := f.roundService()
	started, err := svc.Start(f.ctx, nineHoleConfig())
	require.NoError(t, err)

	par := 5
	got, err := svc.UpdateHole(f.ctx, started.ID, 1, HoleUpdate{Strokes: 4, Par: &par})
	require.NoError(t, err)
	got, err = svc.UpdateHole(f.ctx, started.ID, 2, HoleUpdate{Strokes: 6})
	require.NoError(t, err)

	assert.Equal(t, 10, got.TotalShots)
	assert.Equal(t, 37, got.TotalPar)
	assert.Equal(t, 1, got.ScoreToPar())
	for _, h := range got.HoleScores {
		switch h.HoleNumber {
		case 1:
			assert.Equal(t, -1, h.ScoreToPar)
			assert.NotNil(t, h.CompletedAt)
		case 2:
			assert.Equal(t, 2, h.ScoreToPar)
		}
	}

	_, err = svc.UpdateHole(f.ctx, started.ID, 10, HoleUpdate{Strokes: 4})
	requireAPIStatus(t, err, http.StatusNotFound, "hole_not_found")
	_, err = svc.UpdateHole(f.ctx, started.ID, 3, HoleUpdate{Strokes: 0})
	requireAPIStatus(t, err, http.StatusBadRequest, "invalid_strokes")
	_, err = svc.UpdateHole(f.ctx, uuid.New(), 1, HoleUpdate{Strokes: 4})
	requireAPIStatus(t, err, http.StatusNotFound, "round_not_found")
}

func TestRoundCompleteComputesDifferentialAndUpdatesHandicap(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	testutil.SeedCompletedRound(t, context.Background(), f.db, f.user.ID, 22.0, now.Add(-72*time.Hour))
	testutil.SeedCompletedRound(t, context.Background(), f.db, f.user.ID, 24.5, now.Add(-48*time.Hour))
	course := testutil.SeedCourse(t, context.Background(), f.db, "Pebble Creek", 18)
	teeID := course.Tees[0].ID
	svc := f.roundService()

	started, err := svc.Start(f.ctx, StartRoundInput{TeeID: &teeID})
	require.NoError(t, err)
	playAll(t, svc, f.ctx, started.ID, 18, 5)

	done, err := svc.Complete(f.ctx, started.ID, "  windy back nine ")
	require.NoError(t, err)
	require.True(t, done.Round.IsCompleted)
	require.NotNil(t, done.Round.EndTime)
	require.NotNil(t, done.Round.ScoreDifferential)
	assert.Equal(t, 18.0, *done.Round.ScoreDifferential)
	assert.Equal(t, 90, done.Round.TotalShots)
	assert.Equal(t, "windy back nine", done.Round.Notes)

	assert.Equal(t, handicap.OutcomeUpdated, done.Handicap.Outcome)
	assert.Equal(t, 17.3, done.Handicap.Index)
	assert.Equal(t, 54.0, done.Handicap.Previous)
	assert.Equal(t, 3, done.Handicap.RoundsInWindow)
	assert.Equal(t, []string{started.ID.String()}, done.Handicap.CountedRounds)

	stored, err := f.users.GetByID(dbcFor(f), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 17.3, stored.HandicapIndex)

	_, err = svc.Complete(f.ctx, started.ID, "")
	requireAPIStatus(t, err, http.StatusConflict, "round_completed")
	_, err = svc.UpdateHole(f.ctx, started.ID, 1, HoleUpdate{Strokes: 3})
	requireAPIStatus(t, err, http.StatusConflict, "round_completed")

	_, err = svc.Active(f.ctx)
	requireAPIStatus(t, err, http.StatusNotFound, "no_active_round")
}

func TestRoundCompleteRollsBackHandicapWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	testutil.SeedCompletedRound(t, context.Background(), f.db, f.user.ID, 22.0, now.Add(-72*time.Hour))
	testutil.SeedCompletedRound(t, context.Background(), f.db, f.user.ID, 24.5, now.Add(-48*time.Hour))
	course := testutil.SeedCourse(t, context.Background(), f.db, "Pebble Creek", 18)
	teeID := course.Tees[0].ID

	started, err := f.roundService().Start(f.ctx, StartRoundInput{TeeID: &teeID})
	require.NoError(t, err)
	playAll(t, f.roundService(), f.ctx, started.ID, 18, 5)

	commitErr := errors.New("commit lost")
	runner := &txtest.InjectedTxRunner{Inner: f.tx, FailCommit: commitErr}
	svc := NewRoundService(f.log, runner, f.users, f.courses, f.rounds, f.holes, f.updater)

	_, err = svc.Complete(f.ctx, started.ID, "")
	require.ErrorIs(t, err, commitErr)
	assert.Equal(t, 1, runner.Rollbacks)

	active, err := f.roundService().Active(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, started.ID, active.ID)
	assert.False(t, active.IsCompleted)

	stored, err := f.users.GetByID(dbcFor(f), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 54.0, stored.HandicapIndex)
}

func TestRoundCompleteWithoutRatingHasNoDifferential(t *testing.T) {
	f := newFixture(t)
	svc := f.roundService()
	started, err := svc.Start(f.ctx, nineHoleConfig())
	require.NoError(t, err)
	playAll(t, svc, f.ctx, started.ID, 9, 4)

	done, err := svc.Complete(f.ctx, started.ID, "")
	require.NoError(t, err)
	assert.Nil(t, done.Round.ScoreDifferential)
	assert.Equal(t, handicap.OutcomeGated, done.Handicap.Outcome)
	assert.Equal(t, 54.0, done.Handicap.Index)
}

func TestRoundCompleteWithUnplayedHoleHasNoDifferential(t *testing.T) {
	f := newFixture(t)
	svc := f.roundService()
	in := nineHoleConfig()
	rating, slope := 35.0, 120.0
	in.CourseRating, in.SlopeRating = &rating, &slope
	started, err := svc.Start(f.ctx, in)
	require.NoError(t, err)
	playAll(t, svc, f.ctx, started.ID, 8, 4)

	done, err := svc.Complete(f.ctx, started.ID, "")
	require.NoError(t, err)
	assert.Nil(t, done.Round.ScoreDifferential)
	assert.Equal(t, 32, done.Round.TotalShots)
}

func TestRoundHistoryAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := f.roundService()
	started, err := svc.Start(f.ctx, nineHoleConfig())
	require.NoError(t, err)
	playAll(t, svc, f.ctx, started.ID, 9, 5)
	_, err = svc.Complete(f.ctx, started.ID, "")
	require.NoError(t, err)

	page, err := svc.History(f.ctx, 500, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 50, page.Limit)
	assert.Equal(t, 0, page.Offset)
	require.Len(t, page.Rounds, 1)
	assert.Equal(t, started.ID, page.Rounds[0].ID)

	require.NoError(t, svc.Delete(f.ctx, started.ID))
	_, err = svc.Get(f.ctx, started.ID)
	requireAPIStatus(t, err, http.StatusNotFound, "round_not_found")
	requireAPIStatus(t, svc.Delete(f.ctx, started.ID), http.StatusNotFound, "round_not_found")

	holes, err := f.holes.ListByRound(dbcFor(f), started.ID)
	require.NoError(t, err)
	assert.Empty(t, holes)
}
