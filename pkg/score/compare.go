package score

import (
	"context"
	"fmt"

	"verifact/internal/util"
	"verifact/pkg/ai"
	"verifact/pkg/common"
	"verifact/pkg/logger"
)

// MinRelevanceScore is the relevance gate below which a comparison source is
// discarded as off-topic and no Analysis is created.
const MinRelevanceScore = 0.4

// comparisonResult is the JSON shape returned by the comparison model.
type comparisonResult struct {
	Matching           []common.MatchingFact    `json:"matching"`
	Conflicting        []common.ConflictingFact `json:"conflicting"`
	UniqueToOriginal   []common.UniqueFact      `json:"unique_to_original"`
	UniqueToComparison []common.UniqueFact      `json:"unique_to_comparison"`
	RelevanceScore     float64                  `json:"relevance_score"`
	AnalysisNotes      string                   `json:"analysis_notes"`
}

// Comparator compares the original article's facts against one comparison
// source's facts and turns the result into a scored Analysis.
type Comparator struct {
	client ai.VerifyAIClient
}

// NewComparator creates a Comparator backed by the given AI client.
func NewComparator(client ai.VerifyAIClient) *Comparator {
	return &Comparator{client: client}
}

// Compare runs the fact comparison and builds an Analysis. It returns
// (nil, nil) when the comparison source is off-topic (relevance below
// MinRelevanceScore); the caller skips such sources silently.
func (c *Comparator) Compare(
	ctx context.Context,
	originalFacts common.FactSet,
	comparisonFacts common.FactSet,
	sourceType string,
	sourceDomain string,
) (*common.Analysis, error) {
	prompt := fmt.Sprintf(
		ai.CompareFactsPrompt,
		util.ConvertStructToJson(originalFacts),
		util.ConvertStructToJson(comparisonFacts),
	)

	var result comparisonResult
	err := c.client.GenerateCompletionWithFormat(
		ctx,
		"fact_comparison",
		"Classification of fact pairs as matching, conflicting or unique",
		prompt,
		&result,
	)
	if err != nil {
		return nil, fmt.Errorf("fact comparison failed: %w", err)
	}

	if result.RelevanceScore < MinRelevanceScore {
		logger.Debug(
			"[Score] source discarded as off-topic",
			"domain", sourceDomain,
			"relevance", result.RelevanceScore,
		)
		return nil, nil
	}

	analysis := &common.Analysis{
		AccuracyScore:    AccuracyScore(result.Matching, result.Conflicting),
		MatchingFacts:    result.Matching,
		ConflictingFacts: result.Conflicting,
		Details: common.AnalysisDetails{
			UniqueToOriginal:   result.UniqueToOriginal,
			UniqueToComparison: result.UniqueToComparison,
			AnalysisNotes:      result.AnalysisNotes,
			RelevanceScore:     result.RelevanceScore,
			SourceType:         sourceType,
			SourceDomain:       sourceDomain,
		},
	}

	return analysis, nil
}

// AccuracyScore computes the per-source accuracy score from classified fact
// lists. With no classified facts at all the score is a neutral 50; otherwise
// the agreement percentage is weighted by the confidence of the matches.
func AccuracyScore(
	matching []common.MatchingFact,
	conflicting []common.ConflictingFact,
) float64 {
	total := len(matching) + len(conflicting)
	if total == 0 {
		return 50.0
	}

	agreementPct := float64(len(matching)) / float64(total) * 100

	if len(matching) > 0 {
		sum := 0.0
		for _, m := range matching {
			sum += matchConfidenceWeight(m.Confidence)
		}
		agreementPct *= sum / float64(len(matching))
	}

	return clampScore(agreementPct)
}

func matchConfidenceWeight(label string) float64 {
	switch label {
	case "high":
		return 1.0
	case "low":
		return 0.5
	default:
		return 0.7
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
