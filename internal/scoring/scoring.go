// Package scoring produces the composite quality score of an analysis run.
// The collaborator's self-reported confidence is blended with dataset-quality
// heuristics so a tiny or heavily flagged dataset cannot claim certainty.
package scoring

import (
	"finlight/cashflow-analyzer/internal/models"
)

// Weights holds the relative weight of each scoring factor. The five weights
// are expected to sum to 1.0 (enforced by config validation).
type Weights struct {
	AI     float64 // collaborator-reported confidence
	Volume float64 // transaction-count adequacy
	Flags  float64 // flagged-transaction penalty
	Months float64 // month-count adequacy
	Income float64 // income-transaction consistency
}

// DefaultWeights mirror the configuration defaults.
var DefaultWeights = Weights{AI: 0.40, Volume: 0.20, Flags: 0.20, Months: 0.10, Income: 0.10}

// Scorer computes the final clamped confidence score.
type Scorer struct {
	Weights Weights
	Floor   float64
	Ceiling float64
}

// NewScorer creates a Scorer with the given weights and clamp bounds.
func NewScorer(weights Weights, floor, ceiling float64) *Scorer {
	return &Scorer{Weights: weights, Floor: floor, Ceiling: ceiling}
}

// adequateTransactionCount is the unique-transaction count at which the
// volume factor saturates.
const adequateTransactionCount = 100

// adequateMonthCount is the complete-month count at which the month factor
// saturates.
const adequateMonthCount = 3

// Score combines the collaborator confidence with dataset heuristics. Every
// factor is normalized to [0,1] before weighting and the weighted sum is
// clamped to [Floor, Ceiling].
func (s *Scorer) Score(aiConfidence float64, unique, flagged []models.Transaction, monthCount int) float64 {
	uniqueCount := len(unique)

	volume := minFloat(float64(uniqueCount)/adequateTransactionCount, 1.0)

	flagPenalty := 1.0
	if uniqueCount > 0 {
		ratio := float64(len(flagged)) / float64(uniqueCount)
		flagPenalty = 1.0 - minFloat(ratio*0.5, 0.3)
	}

	months := minFloat(float64(monthCount)/adequateMonthCount, 1.0)

	// A dataset with fewer income transactions than months suggests the
	// statements miss regular pay periods.
	incomeConsistency := 0.7
	if countIncome(unique) >= monthCount {
		incomeConsistency = 1.0
	}

	score := s.Weights.AI*clamp01(aiConfidence) +
		s.Weights.Volume*volume +
		s.Weights.Flags*flagPenalty +
		s.Weights.Months*months +
		s.Weights.Income*incomeConsistency

	if score < s.Floor {
		return s.Floor
	}
	if score > s.Ceiling {
		return s.Ceiling
	}
	return score
}

func countIncome(transactions []models.Transaction) int {
	count := 0
	for i := range transactions {
		if transactions[i].IsIncome() {
			count++
		}
	}
	return count
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
