package score

import (
	"strings"
	"testing"

	"verifact/pkg/common"
)

func analysisWith(score float64, sourceType string) common.Analysis {
	return common.Analysis{
		AccuracyScore: score,
		MatchingFacts: []common.MatchingFact{{OriginalFact: "m"}},
		Details:       common.AnalysisDetails{SourceType: sourceType},
	}
}

func TestGenerateReportNoEvidence(t *testing.T) {
	report := GenerateReport(1, nil)

	if report.OverallScore != 0.0 {
		t.Errorf("OverallScore = %v, want 0.0", report.OverallScore)
	}
	if report.ConfidenceLevel != "low" {
		t.Errorf("ConfidenceLevel = %q, want low", report.ConfidenceLevel)
	}
	if report.SourcesChecked != 0 {
		t.Errorf("SourcesChecked = %d, want 0", report.SourcesChecked)
	}
	if report.Summary != noEvidenceSummary {
		t.Errorf("Summary = %q", report.Summary)
	}
}

func TestGenerateReportWeightedScore(t *testing.T) {
	analyses := []common.Analysis{
		analysisWith(90, common.SourceOfficial), // weight 1.0
		analysisWith(60, common.SourceSocial),   // weight 0.3
	}

	report := GenerateReport(1, analyses)

	// (90*1.0 + 60*0.3) / 1.3 = 83.08
	if report.OverallScore != 83.08 {
		t.Errorf("OverallScore = %v, want 83.08", report.OverallScore)
	}
	if report.SourcesChecked != 2 {
		t.Errorf("SourcesChecked = %d, want 2", report.SourcesChecked)
	}
}

func TestGenerateReportUnknownSourceTypeWeight(t *testing.T) {
	analyses := []common.Analysis{
		analysisWith(80, "podcast"),
		analysisWith(40, "podcast"),
	}

	report := GenerateReport(1, analyses)
	if report.OverallScore != 60.0 {
		t.Errorf("OverallScore = %v, want 60.0", report.OverallScore)
	}
}

func TestConfidenceLevelTiers(t *testing.T) {
	highScoring := func(n int) []common.Analysis {
		out := make([]common.Analysis, 0, n)
		for range n {
			out = append(out, analysisWith(90, common.SourceNewsMajor))
		}
		return out
	}

	tests := []struct {
		name     string
		analyses []common.Analysis
		want     string
	}{
		{name: "five agreeing sources", analyses: highScoring(5), want: "high"},
		{name: "three agreeing sources", analyses: highScoring(3), want: "medium"},
		{name: "two agreeing sources", analyses: highScoring(2), want: "low"},
		{
			name: "five disagreeing sources",
			analyses: []common.Analysis{
				analysisWith(30, ""), analysisWith(30, ""), analysisWith(30, ""),
				analysisWith(30, ""), analysisWith(30, ""),
			},
			want: "low",
		},
		{
			name: "five moderately agreeing sources",
			analyses: []common.Analysis{
				analysisWith(70, ""), analysisWith(70, ""), analysisWith(70, ""),
				analysisWith(70, ""), analysisWith(70, ""),
			},
			want: "medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidenceLevel(tt.analyses); got != tt.want {
				t.Errorf("confidenceLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryVerdictBuckets(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{85, "highly accurate"},
		{80, "highly accurate"},
		{65, "moderately accurate"},
		{45, "questionable accuracy"},
		{20, "low accuracy"},
	}

	for _, tt := range tests {
		summary := buildSummary(tt.score, 3, 10, 2)
		if !strings.Contains(summary, tt.want) {
			t.Errorf("buildSummary(score=%v) = %q, want verdict %q", tt.score, summary, tt.want)
		}
	}

	summary := buildSummary(75, 4, 12, 3)
	for _, fragment := range []string{"4 sources", "75.0%", "12 matching", "3 conflicting"} {
		if !strings.Contains(summary, fragment) {
			t.Errorf("summary %q missing %q", summary, fragment)
		}
	}
}

func TestRecommendationsGating(t *testing.T) {
	official := analysisWith(90, common.SourceOfficial)
	news := analysisWith(90, common.SourceNewsMajor)

	t.Run("high score and confidence", func(t *testing.T) {
		recs := buildRecommendations(90, "high", []common.Analysis{official, news})
		if !strings.Contains(recs, "highly reliable") {
			t.Errorf("recommendations %q missing reliability statement", recs)
		}
		if strings.Contains(recs, "official sources were found") {
			t.Errorf("official-source note must be absent when an official source exists: %q", recs)
		}
	})

	t.Run("no official source", func(t *testing.T) {
		recs := buildRecommendations(90, "high", []common.Analysis{news, analysisWith(90, common.SourceBlog)})
		if !strings.Contains(recs, "official sources") {
			t.Errorf("recommendations %q missing official-source note", recs)
		}
	})

	t.Run("single source type", func(t *testing.T) {
		recs := buildRecommendations(70, "medium", []common.Analysis{news, news})
		if !strings.Contains(recs, "diversify") {
			t.Errorf("recommendations %q missing diversity note", recs)
		}
	})

	t.Run("low score", func(t *testing.T) {
		recs := buildRecommendations(30, "low", []common.Analysis{news})
		if !strings.Contains(recs, "caution") {
			t.Errorf("recommendations %q missing caution statement", recs)
		}
	})
}

func TestDetailedResults(t *testing.T) {
	analyses := []common.Analysis{
		{
			AccuracyScore:    80,
			MatchingFacts:    []common.MatchingFact{{}, {}},
			ConflictingFacts: []common.ConflictingFact{{}},
			Details:          common.AnalysisDetails{SourceType: common.SourceNewsMajor},
		},
		{
			AccuracyScore: 60,
			MatchingFacts: []common.MatchingFact{{}},
			Details:       common.AnalysisDetails{SourceType: common.SourceNewsMajor},
		},
	}

	report := GenerateReport(1, analyses)

	stats, ok := report.Detailed.ScoreBreakdown[common.SourceNewsMajor]
	if !ok {
		t.Fatal("missing news_major breakdown")
	}
	if stats.Count != 2 || stats.AverageScore != 70.0 {
		t.Errorf("breakdown = %+v, want count 2 average 70", stats)
	}
	if report.Detailed.SourceDistribution[common.SourceNewsMajor] != 2 {
		t.Errorf("distribution = %v", report.Detailed.SourceDistribution)
	}
	fv := report.Detailed.FactVerification
	if fv.TotalMatchingFacts != 3 || fv.TotalConflictingFacts != 1 || fv.VerificationRatio != 0.75 {
		t.Errorf("fact verification = %+v", fv)
	}
}
