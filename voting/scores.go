package voting

import (
	"fmt"
	"math"
)

// Scores holds one voter's rating for each of the five dimensions.
type Scores struct {
	StagePresence int `json:"stagePresence"`
	Performance   int `json:"performance"`
	Popularity    int `json:"popularity"`
	Teamwork      int `json:"teamwork"`
	Creativity    int `json:"creativity"`
}

// Weights is a per-dimension weight configuration for composite scoring.
type Weights map[Dimension]float64

// EqualWeights gives every dimension the same weight. The composite of an
// equally weighted vote is the plain sum of its five scores.
func EqualWeights() Weights {
	w := make(Weights, len(Dimensions))
	for _, d := range Dimensions {
		w[d] = 1.0 / float64(len(Dimensions))
	}
	return w
}

// weightSumTolerance bounds how far a weight configuration may drift from 1.0.
const weightSumTolerance = 0.01

// Validate checks that the weight set covers exactly the five dimensions and
// sums to 1.0 within tolerance.
func (w Weights) Validate() error {
	if len(w) != len(Dimensions) {
		return fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidWeights, len(Dimensions), len(w))
	}
	sum := 0.0
	for _, d := range Dimensions {
		v, ok := w[d]
		if !ok {
			return fmt.Errorf("%w: missing weight for %s", ErrInvalidWeights, d)
		}
		if v < 0 {
			return fmt.Errorf("%w: negative weight for %s", ErrInvalidWeights, d)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.4f", ErrInvalidWeights, sum)
	}
	return nil
}

// ByDimension returns the score for a single dimension.
func (s Scores) ByDimension(d Dimension) int {
	switch d {
	case DimensionStagePresence:
		return s.StagePresence
	case DimensionPerformance:
		return s.Performance
	case DimensionPopularity:
		return s.Popularity
	case DimensionTeamwork:
		return s.Teamwork
	case DimensionCreativity:
		return s.Creativity
	}
	return 0
}

// Validate checks every dimension score is an integer in [1,5].
func (s Scores) Validate() error {
	for _, d := range Dimensions {
		v := s.ByDimension(d)
		if v < MinScore || v > MaxScore {
			return fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, d, v)
		}
	}
	return nil
}

// Sum is the unweighted total across all five dimensions.
func (s Scores) Sum() int {
	total := 0
	for _, d := range Dimensions {
		total += s.ByDimension(d)
	}
	return total
}

// Composite derives the vote's composite score. With nil weights the five
// dimensions count equally and the result is the plain sum; a configured
// weight set scales each dimension before summing, normalized so that equal
// weights reproduce the sum exactly.
func (s Scores) Composite(w Weights) float64 {
	if w == nil {
		return float64(s.Sum())
	}
	total := 0.0
	for _, d := range Dimensions {
		total += w[d] * float64(s.ByDimension(d)) * float64(len(Dimensions))
	}
	return total
}

// FiveStarCount counts dimensions rated with the maximum score.
func (s Scores) FiveStarCount() int {
	n := 0
	for _, d := range Dimensions {
		if s.ByDimension(d) == MaxScore {
			n++
		}
	}
	return n
}
