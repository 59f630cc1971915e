// Package ledgerdomain holds the pure scoring and rating formulas.
package ledgerdomain

import "math"

// FallbackPoints is the decaying award used when no scoring rule matches:
// max(floor, 50 - decrement*(attempts-3)).
func FallbackPoints(attempts, floor, decrement int) int {
	return max(floor, 50-decrement*(attempts-3))
}

// ExpectedScore is the Elo win expectancy of a player against an opponent.
func ExpectedScore(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

// NextRating applies one Elo step. result is 1 for a win and 0 for a loss.
func NextRating(rating, opponent, result, k float64) float64 {
	return rating + k*(result-ExpectedScore(rating, opponent))
}

// MatchResult scores a finished game against the historical baseline:
// strictly fewer attempts than the baseline is a win.
func MatchResult(attempts int, baseline float64) float64 {
	if float64(attempts) < baseline {
		return 1
	}
	return 0
}

// Mean returns the arithmetic mean and false for an empty slice.
func Mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}
