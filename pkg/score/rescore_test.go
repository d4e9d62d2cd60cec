package score

import (
	"testing"

	"verifact/pkg/common"
)

func TestRescoreAnalysis(t *testing.T) {
	strong := common.MatchingFact{MatchStrength: "strong"}
	moderate := common.MatchingFact{MatchStrength: "moderate"}
	unlabeledMatch := common.MatchingFact{}
	high := common.ConflictingFact{ConflictSeverity: "high"}
	low := common.ConflictingFact{ConflictSeverity: "low"}
	unlabeledConflict := common.ConflictingFact{}

	tests := []struct {
		name        string
		matching    []common.MatchingFact
		conflicting []common.ConflictingFact
		want        float64
	}{
		{name: "empty is neutral", want: 50.0},
		{
			name:     "all strong matches",
			matching: []common.MatchingFact{strong, strong},
			// positive 20, 2 facts: 20/20*100
			want: 100.0,
		},
		{
			name:     "unlabeled match counts as moderate",
			matching: []common.MatchingFact{unlabeledMatch},
			want:     70.0,
		},
		{
			name:        "conflicts drag the balance down",
			matching:    []common.MatchingFact{strong, strong},
			conflicting: []common.ConflictingFact{high},
			// positive 20, negative 15, 3 facts: 5/30*100
			want: 16.666666666666664,
		},
		{
			name:        "negative balance clamps to zero",
			matching:    []common.MatchingFact{moderate},
			conflicting: []common.ConflictingFact{high, unlabeledConflict},
			want:        0.0,
		},
		{
			name:        "low severity conflicts",
			matching:    []common.MatchingFact{strong},
			conflicting: []common.ConflictingFact{low},
			// positive 10, negative 5, 2 facts: 5/20*100
			want: 25.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RescoreAnalysis(tt.matching, tt.conflicting)
			if got != tt.want {
				t.Errorf("RescoreAnalysis() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("RescoreAnalysis() = %v out of [0,100]", got)
			}
		})
	}
}

func TestReclassifyFactToMatching(t *testing.T) {
	a := &common.Analysis{
		ConflictingFacts: []common.ConflictingFact{
			{Original: "o", Comparison: "c", ConflictSeverity: "high", Category: "what"},
		},
	}

	if err := ReclassifyFact(a, ReclassifyToMatching, 0); err != nil {
		t.Fatalf("ReclassifyFact returned error: %v", err)
	}

	if len(a.ConflictingFacts) != 0 || len(a.MatchingFacts) != 1 {
		t.Fatalf("expected fact moved, got %d conflicts / %d matches",
			len(a.ConflictingFacts), len(a.MatchingFacts))
	}
	m := a.MatchingFacts[0]
	if m.OriginalFact != "o" || m.ComparisonFact != "c" || m.Category != "what" {
		t.Errorf("converted fact = %+v", m)
	}
	if m.MatchStrength != "moderate" {
		t.Errorf("MatchStrength = %q, want moderate", m.MatchStrength)
	}
	// single moderate match: 7/10*100
	if a.AccuracyScore != 70.0 {
		t.Errorf("AccuracyScore = %v, want 70.0", a.AccuracyScore)
	}
}

func TestReclassifyFactToConflicting(t *testing.T) {
	a := &common.Analysis{
		MatchingFacts: []common.MatchingFact{
			{OriginalFact: "o", ComparisonFact: "c", MatchStrength: "strong", Category: "claim"},
		},
	}

	if err := ReclassifyFact(a, ReclassifyToConflicting, 0); err != nil {
		t.Fatalf("ReclassifyFact returned error: %v", err)
	}

	if len(a.MatchingFacts) != 0 || len(a.ConflictingFacts) != 1 {
		t.Fatalf("expected fact moved, got %d matches / %d conflicts",
			len(a.MatchingFacts), len(a.ConflictingFacts))
	}
	c := a.ConflictingFacts[0]
	if c.Original != "o" || c.Comparison != "c" || c.Category != "claim" {
		t.Errorf("converted fact = %+v", c)
	}
	if c.ConflictSeverity != "medium" {
		t.Errorf("ConflictSeverity = %q, want medium", c.ConflictSeverity)
	}
	if a.AccuracyScore != 0.0 {
		t.Errorf("AccuracyScore = %v, want 0.0", a.AccuracyScore)
	}
}

func TestReclassifyFactRejectsBadInput(t *testing.T) {
	a := &common.Analysis{}

	if err := ReclassifyFact(a, ReclassifyToMatching, 0); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := ReclassifyFact(a, "sideways", 0); err == nil {
		t.Error("expected error for unknown direction")
	}
}
