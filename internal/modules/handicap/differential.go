package handicap

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks arguments no differential or index can be computed from.
var ErrInvalidInput = errors.New("invalid handicap input")

// StandardSlope is the slope of a course of standard difficulty.
const StandardSlope = 113.0

// Round1 rounds half away from zero to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// ScoreDifferential converts an adjusted gross score into a differential:
// (113 / slope) * (score - rating), to one decimal.
//
// Nine-hole rounds are normalized to eighteen by doubling the score and the
// rating. Some scorecards publish an eighteen-hole rating for a nine-hole
// tee; a rating above 1.5x par is taken to be one and halved first. The
// heuristic is unvalidated against real scorecards.
func ScoreDifferential(adjustedScore int, courseRating, slopeRating float64, totalHoles, totalPar int) (float64, error) {
	if slopeRating <= 0 || math.IsNaN(slopeRating) {
		return 0, fmt.Errorf("%w: slope rating must be positive, got %v", ErrInvalidInput, slopeRating)
	}
	if courseRating <= 0 || math.IsNaN(courseRating) {
		return 0, fmt.Errorf("%w: course rating must be positive, got %v", ErrInvalidInput, courseRating)
	}
	if adjustedScore <= 0 {
		return 0, fmt.Errorf("%w: adjusted score must be positive, got %d", ErrInvalidInput, adjustedScore)
	}

	score := float64(adjustedScore)
	rating := courseRating
	switch totalHoles {
	case 18:
	case 9:
		if IsEighteenHoleRating(courseRating, totalPar) {
			rating /= 2
		}
		score *= 2
		rating *= 2
	default:
		return 0, fmt.Errorf("%w: total holes must be 9 or 18, got %d", ErrInvalidInput, totalHoles)
	}
	return Round1((StandardSlope / slopeRating) * (score - rating)), nil
}

// IsEighteenHoleRating reports whether a nine-hole tee's rating looks like it
// was published for eighteen holes.
func IsEighteenHoleRating(courseRating float64, ninePar int) bool {
	return courseRating > float64(ninePar)*1.5
}
