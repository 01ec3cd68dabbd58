package shotmemory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/caddie-backend/internal/domain/shot"
)

func TestConditionsTextOmitsAdvice(t *testing.T) {
	s := shot.Situation{
		DistanceToFlag: 150,
		WindSpeed:      3,
		WindDirection:  shot.WindHeadwind,
		Lie:            shot.Lie{Fairway: true, Uphill: true},
	}
	assert.Equal(t, "Distance to flag: 150 meters. Wind: 3 m/s headwind. Lie: fairway, uphill. Ground: normal.", ConditionsText(s))

	calm := shot.Situation{DistanceToFlag: 92.5, WindDirection: shot.WindTailwind, Lie: shot.Lie{HeavyRough: true}, Ground: shot.Ground{WetGround: true}}
	assert.Equal(t, "Distance to flag: 92.5 meters. Wind: calm. Lie: heavy rough. Ground: wet.", ConditionsText(calm))
}

func TestFullTextAppendsRecommendationAndFeedback(t *testing.T) {
	s := shot.Situation{DistanceToFlag: 150, Lie: shot.Lie{Fairway: true}}
	liked := false
	got := FullText(s, " Hit a smooth 7 iron. ", shot.Feedback{Liked: &liked, ClubUsed: "6 iron", Outcome: "short right"})

	assert.Contains(t, got, ConditionsText(s)+"\nRecommendation: Hit a smooth 7 iron.")
	assert.Contains(t, got, "\nFeedback: the golfer disliked this recommendation.")
	assert.Contains(t, got, "\nClub used: 6 iron")
	assert.Contains(t, got, "\nShot result: short right")

	plain := FullText(s, "Hit a 7 iron.", shot.Feedback{})
	assert.NotContains(t, plain, "Feedback:")
	assert.NotContains(t, plain, "Club used:")
}

func TestMetadataOmitsUnsetFeedback(t *testing.T) {
	rec := &shot.Record{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		TimestampKey: "2024-06-01T10:30:00.000000Z",
		Situation: shot.Situation{
			DistanceToFlag: 140,
			WindSpeed:      0,
			WindDirection:  shot.WindHeadwind,
			Lie:            shot.Lie{Bunker: true, BallAboveFeet: true, Downhill: true},
		},
	}
	meta := Metadata(rec)
	assert.Equal(t, rec.UserID.String(), meta[MetaUserID])
	assert.Equal(t, shot.WindNone, meta[MetaWindDirection])
	assert.Equal(t, shot.SurfaceBunker, meta[MetaSurface])
	assert.Equal(t, "downhill,ball_above_feet", meta[MetaSlopes])
	assert.NotContains(t, meta, MetaLiked)
	assert.NotContains(t, meta, MetaClubUsed)

	withT := withText(meta, "hello")
	require.Equal(t, "hello", withT[MetaText])
	assert.NotContains(t, meta, MetaText)
}
