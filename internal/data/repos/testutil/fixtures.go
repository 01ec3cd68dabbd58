package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/caddie-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "Golfer",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse creates a course with one tee of n holes, all par 4 at 400 yards.
func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, holes int) *types.Course {
	tb.Helper()
	tee := types.CourseTee{
		TeeName:         "White",
		CourseRatingMen: 72.0,
		SlopeRatingMen:  113,
		ParTotal:        4 * holes,
		TotalYards:      400 * holes,
		NumberOfHoles:   holes,
	}
	for i := 1; i <= holes; i++ {
		tee.Holes = append(tee.Holes, types.CourseHole{HoleNumber: i, Par: 4, Yards: 400, Handicap: i})
	}
	c := &types.Course{Name: name, City: "Springfield", Tees: []types.CourseTee{tee}}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

// SeedCompletedRound stores a finished 18-hole round with a differential.
func SeedCompletedRound(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, diff float64, end time.Time) *types.Round {
	tb.Helper()
	d := diff
	r := &types.Round{
		UserID:            userID,
		CourseName:        "Seeded",
		TotalHoles:        18,
		StartTime:         end.Add(-4 * time.Hour),
		EndTime:           &end,
		TotalShots:        90,
		TotalPar:          72,
		ScoreDifferential: &d,
		IsCompleted:       true,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed round: %v", err)
	}
	return r
}
