package score

import (
	"testing"

	"verifact/pkg/common"
)

func TestResolveFactClassificationNumeric(t *testing.T) {
	tests := []struct {
		name         string
		matchText    string
		conflictText string
		want         bool
	}{
		{
			name:         "within tolerance",
			matchText:    "Fire killed 45 people",
			conflictText: "Fire killed 60 people",
			want:         true,
		},
		{
			name:         "beyond tolerance",
			matchText:    "Fire killed 45 people",
			conflictText: "Fire killed 100 people",
			want:         false,
		},
		{
			name:         "both zero",
			matchText:    "0 injuries reported",
			conflictText: "There were 0 injuries",
			want:         true,
		},
		{
			name:         "thousands separators",
			matchText:    "Damage estimated at 1,000,000 dollars",
			conflictText: "Damage estimated at 1,100,000 dollars",
			want:         true,
		},
		{
			name:         "decimals",
			matchText:    "Magnitude 6.1 earthquake",
			conflictText: "Magnitude 6.3 earthquake",
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveFactClassification(tt.matchText, tt.conflictText); got != tt.want {
				t.Errorf("resolveFactClassification(%q, %q) = %v, want %v",
					tt.matchText, tt.conflictText, got, tt.want)
			}
		})
	}
}

func TestResolveFactClassificationAmbiguousQuantities(t *testing.T) {
	tests := []struct {
		name         string
		matchText    string
		conflictText string
		want         bool
	}{
		{
			name:         "many covers 45",
			matchText:    "many people attended",
			conflictText: "45 people attended",
			want:         true,
		},
		{
			name:         "many does not cover 500",
			matchText:    "many people attended",
			conflictText: "500 people attended",
			want:         false,
		},
		{
			name:         "few covers 12",
			matchText:    "a few cars were damaged",
			conflictText: "12 cars were damaged",
			want:         true,
		},
		{
			name:         "massive covers 350",
			matchText:    "a massive crowd gathered",
			conflictText: "350 protesters gathered",
			want:         true,
		},
		{
			name:         "keyword on conflict side",
			matchText:    "30 houses were flooded",
			conflictText: "various houses were flooded",
			want:         true,
		},
		{
			name:         "no numbers and no keywords defaults to conflict",
			matchText:    "the mayor resigned",
			conflictText: "the mayor was dismissed",
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveFactClassification(tt.matchText, tt.conflictText); got != tt.want {
				t.Errorf("resolveFactClassification(%q, %q) = %v, want %v",
					tt.matchText, tt.conflictText, got, tt.want)
			}
		})
	}
}

func TestReviewRemovesResolvedConflict(t *testing.T) {
	analyses := []common.Analysis{{
		MatchingFacts: []common.MatchingFact{
			{OriginalFact: "The fire killed 45 people", ComparisonFact: "The fire killed 60 people"},
		},
		ConflictingFacts: []common.ConflictingFact{
			{Original: "The fire killed 45 people", Comparison: "The fire killed 60 people", ConflictSeverity: "medium"},
		},
	}}

	result := ReviewAnalyses(analyses)

	if len(result[0].ConflictingFacts) != 0 {
		t.Errorf("expected resolved conflict to be removed, got %d conflicts", len(result[0].ConflictingFacts))
	}
	if len(result[0].MatchingFacts) != 1 {
		t.Errorf("expected matching fact to survive, got %d", len(result[0].MatchingFacts))
	}
	if result[0].AccuracyScore != 70.0 {
		t.Errorf("expected rescored accuracy 70.0, got %v", result[0].AccuracyScore)
	}
}

func TestReviewRemovesResolvedMatch(t *testing.T) {
	analyses := []common.Analysis{{
		MatchingFacts: []common.MatchingFact{
			{OriginalFact: "The protest drew 45 attendees", ComparisonFact: "The protest drew 500 attendees"},
		},
		ConflictingFacts: []common.ConflictingFact{
			{Original: "The protest drew 45 attendees", Comparison: "The protest drew 500 attendees", ConflictSeverity: "high"},
		},
	}}

	result := ReviewAnalyses(analyses)

	if len(result[0].MatchingFacts) != 0 {
		t.Errorf("expected dual-classified match to be removed, got %d matches", len(result[0].MatchingFacts))
	}
	if len(result[0].ConflictingFacts) != 1 {
		t.Errorf("expected conflicting fact to survive, got %d", len(result[0].ConflictingFacts))
	}
	if result[0].AccuracyScore != 0.0 {
		t.Errorf("expected rescored accuracy 0.0, got %v", result[0].AccuracyScore)
	}
}

func TestReviewMutualExclusivity(t *testing.T) {
	analyses := []common.Analysis{{
		MatchingFacts: []common.MatchingFact{
			{OriginalFact: "Flood displaced 1,200 residents in the valley"},
			{OriginalFact: "The governor declared a state of emergency"},
		},
		ConflictingFacts: []common.ConflictingFact{
			{Original: "Flood displaced 1,500 residents in the valley", Comparison: "Flood displaced 1,200 residents in the valley"},
			{Original: "Schools will remain closed for a week", Comparison: "Schools reopen on Monday"},
		},
	}}

	result := ReviewAnalyses(analyses)

	for _, m := range result[0].MatchingFacts {
		mTokens := normalizeTokens(m.OriginalFact)
		for _, c := range result[0].ConflictingFacts {
			if tokenOverlap(mTokens, normalizeTokens(c.Original)) > dualOverlapThreshold ||
				tokenOverlap(mTokens, normalizeTokens(c.Comparison)) > dualOverlapThreshold {
				t.Errorf("fact %q still dual-classified against %q/%q", m.OriginalFact, c.Original, c.Comparison)
			}
		}
	}
}

func TestReviewLeavesUnrelatedFactsAlone(t *testing.T) {
	analyses := []common.Analysis{{
		AccuracyScore: 50.0,
		MatchingFacts: []common.MatchingFact{
			{OriginalFact: "The summit takes place in Geneva"},
		},
		ConflictingFacts: []common.ConflictingFact{
			{Original: "Ticket prices doubled last year", Comparison: "Ticket prices stayed flat"},
		},
	}}

	result := ReviewAnalyses(analyses)

	if len(result[0].MatchingFacts) != 1 || len(result[0].ConflictingFacts) != 1 {
		t.Errorf("unrelated facts must not be touched: %d matches, %d conflicts",
			len(result[0].MatchingFacts), len(result[0].ConflictingFacts))
	}
	if result[0].AccuracyScore != 50.0 {
		t.Errorf("score must not change without resolutions, got %v", result[0].AccuracyScore)
	}
}

func TestExtractNumbers(t *testing.T) {
	nums := extractNumbers("Over 1,200 homes and 3.5 million dollars")
	if len(nums) != 2 || nums[0] != 1200 || nums[1] != 3.5 {
		t.Errorf("extractNumbers() = %v, want [1200 3.5]", nums)
	}
}
