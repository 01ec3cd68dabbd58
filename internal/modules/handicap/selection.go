package handicap

import (
	"fmt"
	"sort"
)

// Multiplier is applied to the mean of the counted differentials.
const Multiplier = 0.96

// MinRoundsNewGolfer and MinRoundsExperienced gate the first recompute.
const (
	MinRoundsNewGolfer   = 3
	MinRoundsExperienced = 12
)

// NumToUse maps how many differentials exist to how many count.
func NumToUse(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= 6:
		return 1
	case n <= 8:
		return 2
	case n <= 11:
		return 3
	case n <= 14:
		return 4
	case n <= 16:
		return 5
	case n <= 18:
		return 6
	case n == 19:
		return 7
	default:
		return 8
	}
}

// numToUseExperienced starts at a flat 4 once the golfer reaches the gate.
func numToUseExperienced(n int) int {
	if n < MinRoundsExperienced {
		return 0
	}
	return NumToUse(n)
}

// SelectBestDifferentials returns the count lowest differentials, ascending.
func SelectBestDifferentials(differentials []float64, count int) []float64 {
	sorted := append([]float64(nil), differentials...)
	sort.Float64s(sorted)
	if count < 0 {
		count = 0
	}
	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// CalculateIndex is the stateless calculator: progressive table, mean of the
// best differentials times 0.96. It needs at least three differentials.
func CalculateIndex(differentials []float64) (float64, error) {
	if len(differentials) < MinRoundsNewGolfer {
		return 0, fmt.Errorf("%w: need at least %d differentials, got %d", ErrInvalidInput, MinRoundsNewGolfer, len(differentials))
	}
	best := SelectBestDifferentials(differentials, NumToUse(len(differentials)))
	return Round1(mean(best) * Multiplier), nil
}
