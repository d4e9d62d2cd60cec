package score

import (
	"fmt"
	"math"
	"strings"
	"time"

	"verifact/pkg/common"
)

// Confidence tiers for the aggregate report, evaluated in order. The low
// tier has zero thresholds so it always matches last.
type confidenceTier struct {
	level        string
	minSources   int
	minAgreement float64
}

var confidenceTiers = []confidenceTier{
	{"high", 5, 0.8},
	{"medium", 3, 0.6},
	{"low", 0, 0.0},
}

// Canned report content for articles where no corroborating source survived
// filtering and comparison.
const (
	noEvidenceSummary         = "Unable to verify: No corroborating sources were found."
	noEvidenceRecommendations = "The article could not be fact-checked due to lack of available sources. Exercise extreme caution with this information."
)

// GenerateReport aggregates per-source Analyses into an overall Report for
// the given original article. An empty analysis list yields the canned
// no-evidence report.
func GenerateReport(originalArticleID int64, analyses []common.Analysis) common.Report {
	now := time.Now()

	if len(analyses) == 0 {
		return common.Report{
			OriginalArticleID: originalArticleID,
			OverallScore:      0.0,
			ConfidenceLevel:   "low",
			SourcesChecked:    0,
			Summary:           noEvidenceSummary,
			Recommendations:   noEvidenceRecommendations,
			Detailed: common.DetailedResults{
				ScoreBreakdown:     map[string]common.ScoreStats{},
				SourceDistribution: map[string]int{},
			},
			CreatedAt:   now,
			LastUpdated: now,
		}
	}

	overall := overallScore(analyses)
	matching, conflicting := factTotals(analyses)

	return common.Report{
		OriginalArticleID: originalArticleID,
		OverallScore:      overall,
		ConfidenceLevel:   confidenceLevel(analyses),
		SourcesChecked:    len(analyses),
		Summary:           buildSummary(overall, len(analyses), matching, conflicting),
		Recommendations:   buildRecommendations(overall, confidenceLevel(analyses), analyses),
		Detailed:          detailedResults(analyses, matching, conflicting),
		CreatedAt:         now,
		LastUpdated:       now,
	}
}

// overallScore is the source-type-weighted mean of the per-source accuracy
// scores, rounded to two decimals.
func overallScore(analyses []common.Analysis) float64 {
	weightedSum := 0.0
	weightTotal := 0.0
	for _, a := range analyses {
		w := common.SourceTypeWeight(a.Details.SourceType)
		weightedSum += a.AccuracyScore * w
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0.0
	}
	return math.Round(weightedSum/weightTotal*100) / 100
}

func confidenceLevel(analyses []common.Analysis) string {
	scoreSum := 0.0
	for _, a := range analyses {
		scoreSum += a.AccuracyScore
	}
	agreementRatio := scoreSum / float64(len(analyses)) / 100

	for _, tier := range confidenceTiers {
		if len(analyses) >= tier.minSources && agreementRatio >= tier.minAgreement {
			return tier.level
		}
	}
	return "low"
}

func factTotals(analyses []common.Analysis) (int, int) {
	matching, conflicting := 0, 0
	for _, a := range analyses {
		matching += len(a.MatchingFacts)
		conflicting += len(a.ConflictingFacts)
	}
	return matching, conflicting
}

func verdict(score float64) string {
	switch {
	case score >= 80:
		return "highly accurate"
	case score >= 60:
		return "moderately accurate"
	case score >= 40:
		return "of questionable accuracy"
	default:
		return "of low accuracy"
	}
}

func buildSummary(score float64, sources int, matching int, conflicting int) string {
	return fmt.Sprintf(
		"Based on analysis of %d sources, this article appears to be %s with an overall accuracy score of %.1f%%. Found %d matching facts and %d conflicting facts across all sources.",
		sources, verdict(score), score, matching, conflicting,
	)
}

func buildRecommendations(score float64, confidence string, analyses []common.Analysis) string {
	recommendations := []string{}

	switch {
	case score >= 80 && confidence == "high":
		recommendations = append(recommendations,
			"This article appears to be highly reliable and is corroborated by multiple sources.")
	case score >= 60:
		recommendations = append(recommendations,
			"This article has moderate support from other sources. Verify key claims independently before sharing.")
	default:
		recommendations = append(recommendations,
			"Exercise caution with this article. Several claims could not be verified or conflict with other sources.")
	}

	hasOfficial := false
	distinctTypes := map[string]struct{}{}
	for _, a := range analyses {
		if a.Details.SourceType == common.SourceOfficial {
			hasOfficial = true
		}
		distinctTypes[a.Details.SourceType] = struct{}{}
	}

	if !hasOfficial {
		recommendations = append(recommendations,
			"No official sources were found; consider consulting government or institutional publications.")
	}
	if len(distinctTypes) < 2 {
		recommendations = append(recommendations,
			"Verification relied on a narrow range of source types; diversify sources for stronger confidence.")
	}

	return strings.Join(recommendations, " ")
}

func detailedResults(analyses []common.Analysis, matching int, conflicting int) common.DetailedResults {
	breakdown := map[string]common.ScoreStats{}
	distribution := map[string]int{}

	for _, a := range analyses {
		st := a.Details.SourceType
		if st == "" {
			st = "unknown"
		}
		distribution[st]++

		stats := breakdown[st]
		stats.Count++
		stats.Scores = append(stats.Scores, a.AccuracyScore)
		breakdown[st] = stats
	}

	for st, stats := range breakdown {
		sum := 0.0
		for _, s := range stats.Scores {
			sum += s
		}
		stats.AverageScore = math.Round(sum/float64(stats.Count)*100) / 100
		breakdown[st] = stats
	}

	ratio := 0.0
	if matching+conflicting > 0 {
		ratio = math.Round(float64(matching)/float64(matching+conflicting)*100) / 100
	}

	return common.DetailedResults{
		ScoreBreakdown:     breakdown,
		SourceDistribution: distribution,
		FactVerification: common.FactVerification{
			TotalMatchingFacts:    matching,
			TotalConflictingFacts: conflicting,
			VerificationRatio:     ratio,
		},
	}
}
