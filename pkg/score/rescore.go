package score

import (
	"fmt"
	"math"

	"verifact/pkg/common"
)

// Reclassification directions for moving a fact between an Analysis's
// matching and conflicting lists.
const (
	ReclassifyToMatching    = "to_matching"
	ReclassifyToConflicting = "to_conflicting"
)

// ReclassifyFact manually moves one fact of an Analysis between its matching
// and conflicting lists, converting its shape to the target variant, and
// rescores the Analysis. The index refers to the source list.
func ReclassifyFact(a *common.Analysis, direction string, index int) error {
	switch direction {
	case ReclassifyToMatching:
		if index < 0 || index >= len(a.ConflictingFacts) {
			return fmt.Errorf("conflicting fact index %d out of range", index)
		}
		c := a.ConflictingFacts[index]
		a.ConflictingFacts = append(a.ConflictingFacts[:index], a.ConflictingFacts[index+1:]...)
		a.MatchingFacts = append(a.MatchingFacts, common.MatchingFact{
			OriginalFact:   c.Original,
			ComparisonFact: c.Comparison,
			MatchStrength:  "moderate",
			Category:       c.Category,
		})
	case ReclassifyToConflicting:
		if index < 0 || index >= len(a.MatchingFacts) {
			return fmt.Errorf("matching fact index %d out of range", index)
		}
		m := a.MatchingFacts[index]
		a.MatchingFacts = append(a.MatchingFacts[:index], a.MatchingFacts[index+1:]...)
		a.ConflictingFacts = append(a.ConflictingFacts, common.ConflictingFact{
			Original:         m.OriginalFact,
			Comparison:       m.ComparisonFact,
			ConflictType:     "manual_reclassification",
			ConflictSeverity: "medium",
			Category:         m.Category,
		})
	default:
		return fmt.Errorf("unknown reclassification direction %q", direction)
	}

	a.AccuracyScore = RescoreAnalysis(a.MatchingFacts, a.ConflictingFacts)
	return nil
}

// RescoreAnalysis computes the accuracy score used after manual
// reclassification. Matches and conflicts contribute weighted points by
// strength and severity; the balance is normalized by the total fact count.
func RescoreAnalysis(
	matching []common.MatchingFact,
	conflicting []common.ConflictingFact,
) float64 {
	totalFacts := len(matching) + len(conflicting)
	if totalFacts == 0 {
		return 50.0
	}

	positive := 0.0
	for _, m := range matching {
		switch m.MatchStrength {
		case "strong":
			positive += 10
		default:
			positive += 7
		}
	}

	negative := 0.0
	for _, c := range conflicting {
		switch c.ConflictSeverity {
		case "high":
			negative += 15
		case "low":
			negative += 5
		default:
			negative += 10
		}
	}

	score := math.Max(0, positive-negative) / (float64(totalFacts) * 10) * 100
	return clampScore(score)
}
