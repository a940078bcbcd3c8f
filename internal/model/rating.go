package model

import "github.com/shopspring/decimal"

const (
	MinRating = 1
	MaxRating = 5
)

// TotalRating returns sum/count rounded half to even. No ratings yields 0.
func TotalRating(sum, count int64) int {
	if count == 0 {
		return 0
	}
	mean := decimal.NewFromInt(sum).Div(decimal.NewFromInt(count))
	return int(mean.RoundBank(0).IntPart())
}
