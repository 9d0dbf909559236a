// Package rating holds the pure rules for star ratings.
package rating

import "github.com/inkwell/internal/apperr"

const (
	MinValue = 1
	MaxValue = 5
)

// Summary is the aggregate written onto a post.
type Summary struct {
	Average float64 `json:"rating"`
	Count   uint    `json:"total_ratings"`
}

// Validate rejects values outside 1..5.
func Validate(value int) error {
	if value < MinValue || value > MaxValue {
		return apperr.Validation("value", "must be between 1 and 5")
	}
	return nil
}

// Aggregate computes the arithmetic mean over every value; empty input yields a zero summary.
func Aggregate(values []int) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return Summary{
		Average: float64(sum) / float64(len(values)),
		Count:   uint(len(values)),
	}
}
