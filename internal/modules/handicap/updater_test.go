package handicap

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/caddie-backend/internal/data/repos"
	"github.com/yungbote/caddie-backend/internal/data/repos/testutil"
	"github.com/yungbote/caddie-backend/internal/domain"
	"github.com/yungbote/caddie-backend/internal/domain/user"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
)

var baseTime = time.Date(2024, 4, 1, 18, 0, 0, 0, time.UTC)

func scoredRounds(diffs ...float64) []ScoredRound {
	out := make([]ScoredRound, 0, len(diffs))
	for i, d := range diffs {
		out = append(out, ScoredRound{
			RoundID:      uuid.New(),
			Differential: d,
			EndTime:      baseTime.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func newGolfer() user.HandicapProfile {
	return user.HandicapProfile{HandicapIndex: user.NewGolferHandicap, InitialHandicap: user.NewGolferHandicap}
}

func experienced(index float64) user.HandicapProfile {
	return user.HandicapProfile{HandicapIndex: index, InitialHandicap: index}
}

func TestComputeNewGolferFirstIndex(t *testing.T) {
	rounds := scoredRounds(22.0, 24.5, 20.1)
	res := Compute(newGolfer(), rounds, baseTime)

	require.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, 19.3, res.Profile.HandicapIndex)
	assert.Equal(t, 1, res.NumUsed)
	assert.Equal(t, []uuid.UUID{rounds[2].RoundID}, res.Counted)
	assert.False(t, res.SoftCapped)
	require.NotNil(t, res.Profile.LastHandicapUpdate)
}

func TestComputeNewGolferGatedBelowThreeRounds(t *testing.T) {
	profile := newGolfer()
	res := Compute(profile, scoredRounds(22.0, 24.5), baseTime)

	assert.Equal(t, OutcomeGated, res.Outcome)
	assert.Equal(t, profile, res.Profile)
	assert.Empty(t, res.Counted)
}

func TestComputeGolferLeavesNewGolferTableOnceIndexDrops(t *testing.T) {
	first := Compute(newGolfer(), scoredRounds(22.0, 24.5, 20.1), baseTime)
	require.Equal(t, 19.3, first.Profile.HandicapIndex)

	// A started-at-54 golfer with a real index waits for twelve rounds.
	profile := user.HandicapProfile{HandicapIndex: 19.3, InitialHandicap: user.NewGolferHandicap}
	res := Compute(profile, scoredRounds(22.0, 24.5, 20.1, 10.0), baseTime)
	assert.Equal(t, OutcomeGated, res.Outcome)
	assert.Equal(t, 19.3, res.Profile.HandicapIndex)

	res = Compute(first.Profile, scoredRounds(22.0, 24.5, 20.1, 18.0), baseTime)
	assert.Equal(t, OutcomeGated, res.Outcome)
	assert.Equal(t, first.Profile, res.Profile)
}

func TestComputeNewGolferRecomputeOverSameRoundsIsIdempotent(t *testing.T) {
	rounds := scoredRounds(22.0, 24.5, 20.1)
	first := Compute(newGolfer(), rounds, baseTime)
	second := Compute(first.Profile, rounds, baseTime.Add(time.Hour))

	require.Equal(t, OutcomeUpdated, second.Outcome)
	assert.Equal(t, 19.3, second.Profile.HandicapIndex)
	assert.Equal(t, first.Counted, second.Counted)
}

func TestComputeSoftCapRoundsToOneDecimal(t *testing.T) {
	next, soft, hard := applyCaps(10.0, 13.3)
	assert.Equal(t, 13.2, next)
	assert.True(t, soft)
	assert.False(t, hard)
}

func TestComputeExperiencedGatedBelowTwelveRounds(t *testing.T) {
	res := Compute(experienced(10.0), scoredRounds(5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15), baseTime)
	assert.Equal(t, OutcomeGated, res.Outcome)
	assert.Equal(t, 10.0, res.Profile.HandicapIndex)
}

func TestComputeExperiencedSoftCap(t *testing.T) {
	// 14 rounds, best four average 15.0: raw 14.4, increase 4.4, soft cap
	// gives 10 + 3 + 1.4/2.
	rounds := scoredRounds(14, 15, 15, 16, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29)
	res := Compute(experienced(10.0), rounds, baseTime)

	require.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, 4, res.NumUsed)
	assert.Equal(t, 14.4, res.Raw)
	assert.Equal(t, 13.7, res.Profile.HandicapIndex)
	assert.True(t, res.SoftCapped)
	assert.False(t, res.HardCapped)
}

func TestComputeExperiencedHardCap(t *testing.T) {
	rounds := scoredRounds(20, 21, 21, 22, 30, 30, 30, 30, 30, 30, 30, 30)
	res := Compute(experienced(10.0), rounds, baseTime)

	// raw = 21 * 0.96 = 20.2; increase 10.2 is held to exactly +5.0
	assert.Equal(t, 20.2, res.Raw)
	assert.Equal(t, 15.0, res.Profile.HandicapIndex)
	assert.True(t, res.HardCapped)
}

func TestComputeDecreaseIsNotCapped(t *testing.T) {
	rounds := scoredRounds(2, 3, 3, 4, 20, 20, 20, 20, 20, 20, 20, 20)
	res := Compute(experienced(18.0), rounds, baseTime)

	assert.Equal(t, 2.9, res.Profile.HandicapIndex)
	assert.False(t, res.SoftCapped)
	assert.False(t, res.HardCapped)
}

func TestComputeIsIdempotentForUnchangedRoundSet(t *testing.T) {
	rounds := scoredRounds(14, 15, 15, 16, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29)
	first := Compute(experienced(10.0), rounds, baseTime)
	require.Equal(t, 13.7, first.Profile.HandicapIndex)

	reordered := append([]ScoredRound(nil), rounds...)
	reordered[0], reordered[13] = reordered[13], reordered[0]
	second := Compute(first.Profile, reordered, baseTime.Add(time.Hour))

	assert.Equal(t, first.Profile.HandicapIndex, second.Profile.HandicapIndex)
	assert.Equal(t, first.Profile.RoundSetKey, second.Profile.RoundSetKey)
	assert.Equal(t, *first.Profile.HandicapBaseline, *second.Profile.HandicapBaseline)
	assert.ElementsMatch(t, first.Counted, second.Counted)
}

func TestComputeNewRoundSetCapsAgainstCurrentIndex(t *testing.T) {
	rounds := scoredRounds(14, 15, 15, 16, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29)
	first := Compute(experienced(10.0), rounds, baseTime)

	more := append(append([]ScoredRound(nil), rounds...), scoredRounds(40)...)
	second := Compute(first.Profile, more, baseTime)

	// 15 rounds use five: (14+15+15+16+20)/5 = 16.0, raw 15.4, +1.7 on 13.7
	assert.Equal(t, 13.7, second.Reference)
	assert.Equal(t, 15.4, second.Profile.HandicapIndex)
}

func TestComputeClampsToMaximumIndex(t *testing.T) {
	res := Compute(newGolfer(), scoredRounds(60, 61, 62), baseTime)
	assert.Equal(t, user.NewGolferHandicap, res.Profile.HandicapIndex)
}

func TestComputeTiesPreferNewerRounds(t *testing.T) {
	rounds := scoredRounds(12.0, 12.0, 15.0)
	res := Compute(newGolfer(), rounds, baseTime)
	assert.Equal(t, []uuid.UUID{rounds[1].RoundID}, res.Counted)
}

func TestRoundSetKeyIgnoresOrder(t *testing.T) {
	rounds := scoredRounds(1, 2, 3)
	reversed := []ScoredRound{rounds[2], rounds[1], rounds[0]}
	assert.Equal(t, RoundSetKey(rounds), RoundSetKey(reversed))

	changed := append([]ScoredRound(nil), rounds...)
	changed[0].Differential = 1.5
	assert.NotEqual(t, RoundSetKey(rounds), RoundSetKey(changed))
}

func TestUpdaterPersistsProfileAndInclusion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	u := testutil.SeedUser(t, ctx, db, "updater@example.com")
	for i, d := range []float64{22.0, 24.5, 20.1} {
		testutil.SeedCompletedRound(t, ctx, db, u.ID, d, baseTime.Add(time.Duration(i)*time.Hour))
	}

	users := repos.NewUserRepo(db, log)
	rounds := repos.NewRoundRepo(db, log)
	updater := NewUpdater(users, rounds, log)
	dbc := dbctx.Context{Ctx: ctx}

	for pass := 0; pass < 2; pass++ {
		res, err := updater.Update(dbc, u.ID)
		require.NoError(t, err)
		require.Equal(t, OutcomeUpdated, res.Outcome)

		stored, err := users.GetByID(dbc, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 19.3, stored.HandicapIndex, "pass %d", pass)
		assert.Equal(t, user.NewGolferHandicap, stored.InitialHandicap)

		var included []domain.Round
		require.NoError(t, db.Where("user_id = ? AND included_in_handicap = ?", u.ID, true).Find(&included).Error)
		require.Len(t, included, 1)
		require.NotNil(t, included[0].ScoreDifferential)
		assert.Equal(t, 20.1, *included[0].ScoreDifferential)
	}
}

func TestUpdaterGatedLeavesProfileUntouched(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	u := testutil.SeedUser(t, ctx, db, "gated@example.com")
	testutil.SeedCompletedRound(t, ctx, db, u.ID, 22.0, baseTime)

	users := repos.NewUserRepo(db, log)
	updater := NewUpdater(users, repos.NewRoundRepo(db, log), log)

	res, err := updater.Update(dbctx.Context{Ctx: ctx}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGated, res.Outcome)

	stored, err := users.GetByID(dbctx.Context{Ctx: ctx}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.NewGolferHandicap, stored.HandicapIndex)
	assert.Nil(t, stored.LastHandicapUpdate)
}
