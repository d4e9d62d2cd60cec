package facts

import (
	"context"
	"errors"
	"testing"

	"verifact/pkg/ai"
	"verifact/pkg/common"
)

type fakeAIClient struct {
	formatResponse     string
	formatErr          error
	formatCalls        int
	completionResponse string
	completionErr      error
	completionCalls    int
}

func (f *fakeAIClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	f.completionCalls++
	if f.completionErr != nil {
		return "", f.completionErr
	}
	return f.completionResponse, nil
}

func (f *fakeAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	f.formatCalls++
	if f.formatErr != nil {
		return f.formatErr
	}
	return ai.UnmarshalFlexible(f.formatResponse, out)
}

func (f *fakeAIClient) ResetMetrics()               {}
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestExtractMapsFactKinds(t *testing.T) {
	client := &fakeAIClient{
		formatResponse: `{
			"what_facts": [
				{"event": "A fire broke out in the harbor district", "related_who": ["fire department"], "related_where": ["Hamburg"], "related_when": ["Monday"], "importance": "high", "confidence": "high"},
				{"event": "Two warehouses were evacuated", "importance": "medium", "confidence": "medium"}
			],
			"claims": [
				{"claim": "Officials claim the fire was caused by faulty wiring", "related_who": ["officials"], "importance": "high", "confidence": "medium"}
			]
		}`,
	}

	set, err := NewExtractor(client).Extract(context.Background(), "Harbor fire", "body text")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if len(set.Facts) != 3 {
		t.Fatalf("expected 3 facts, got %d", len(set.Facts))
	}
	if got := len(set.WhatFacts()); got != 2 {
		t.Errorf("expected 2 what facts, got %d", got)
	}
	if got := len(set.Claims()); got != 1 {
		t.Errorf("expected 1 claim, got %d", got)
	}
	if set.Facts[0].Kind != common.FactWhat {
		t.Errorf("expected first fact to be a what fact, got %q", set.Facts[0].Kind)
	}
	if set.Facts[2].Text != "Officials claim the fire was caused by faulty wiring" {
		t.Errorf("unexpected claim text: %q", set.Facts[2].Text)
	}
}

func TestExtractDefaultsMissingLabels(t *testing.T) {
	client := &fakeAIClient{
		formatResponse: `{"what_facts": [{"event": "Something happened", "importance": "critical"}], "claims": []}`,
	}

	set, err := NewExtractor(client).Extract(context.Background(), "", "body")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if set.Facts[0].Importance != "medium" {
		t.Errorf("expected unknown importance to default to medium, got %q", set.Facts[0].Importance)
	}
	if set.Facts[0].Confidence != "medium" {
		t.Errorf("expected missing confidence to default to medium, got %q", set.Facts[0].Confidence)
	}
}

func TestExtractDropsEmptyEntries(t *testing.T) {
	client := &fakeAIClient{
		formatResponse: `{"what_facts": [{"event": ""}], "claims": [{"claim": "A real claim"}]}`,
	}

	set, err := NewExtractor(client).Extract(context.Background(), "", "body")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(set.Facts) != 1 {
		t.Fatalf("expected empty entries to be dropped, got %d facts", len(set.Facts))
	}
}

func TestExtractFailureSetsParseError(t *testing.T) {
	client := &fakeAIClient{formatErr: errors.New("model unavailable")}

	set, err := NewExtractor(client).Extract(context.Background(), "", "body")
	if err == nil {
		t.Fatal("expected error when AI call fails")
	}
	if set.ParseError == "" {
		t.Error("expected ParseError to carry the failure diagnostic")
	}
	if !set.IsEmpty() {
		t.Error("expected empty fact set on failure")
	}
}

func TestFallbackQuery(t *testing.T) {
	highWhat := common.FactRecord{
		Kind: common.FactWhat, Text: "Earthquake strikes coastal city. Aftershocks expected.", Importance: "high",
	}
	highClaim := common.FactRecord{
		Kind: common.FactClaim, Text: "Mayor claims no casualties. Hospitals disagree.", Importance: "high",
	}
	lowWhat := common.FactRecord{
		Kind: common.FactWhat, Text: "Traffic was rerouted", Importance: "low",
	}

	tests := []struct {
		name string
		set  common.FactSet
		want string
	}{
		{
			name: "event and claim joined",
			set:  common.FactSet{Facts: []common.FactRecord{highWhat, highClaim}},
			want: "Earthquake strikes coastal city Mayor claims no casualties",
		},
		{
			name: "claim only",
			set:  common.FactSet{Facts: []common.FactRecord{lowWhat, highClaim}},
			want: "Mayor claims no casualties",
		},
		{
			name: "no high importance facts",
			set:  common.FactSet{Facts: []common.FactRecord{lowWhat}},
			want: "news",
		},
		{
			name: "empty set",
			set:  common.FactSet{},
			want: "news",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackQuery(tt.set); got != tt.want {
				t.Errorf("FallbackQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptimizeFallsBackOnError(t *testing.T) {
	client := &fakeAIClient{
		formatErr:     errors.New("timeout"),
		completionErr: errors.New("timeout"),
	}
	set := common.FactSet{Facts: []common.FactRecord{
		{Kind: common.FactWhat, Text: "Dam failure floods valley", Importance: "high"},
	}}

	queries := NewQueryOptimizer(client).Optimize(context.Background(), set, 1)
	if queries.PrimaryQuery != "Dam failure floods valley" {
		t.Errorf("expected fallback query, got %q", queries.PrimaryQuery)
	}
}

func TestOptimizeRetriesAsFreeText(t *testing.T) {
	client := &fakeAIClient{
		formatErr: errors.New("format parameter not supported"),
		completionResponse: "```json\n" +
			`{"primary_query": "Dam failure floods valley in Norway", "alternative_queries": ["Norwegian dam collapse flooding"], "keywords": ["dam", "flood"]}` +
			"\n```",
	}
	set := common.FactSet{Facts: []common.FactRecord{
		{Kind: common.FactWhat, Text: "Dam failure floods valley", Importance: "high"},
	}}

	queries := NewQueryOptimizer(client).Optimize(context.Background(), set, 1)
	if client.completionCalls != 1 {
		t.Fatalf("expected one free-text completion call, got %d", client.completionCalls)
	}
	if queries.PrimaryQuery != "Dam failure floods valley in Norway" {
		t.Errorf("expected free-text queries to be used, got %q", queries.PrimaryQuery)
	}
	if len(queries.AlternativeQueries) != 1 {
		t.Errorf("expected alternative queries from free-text reply, got %v", queries.AlternativeQueries)
	}
}

func TestOptimizeFallsBackOnEmptyPrimary(t *testing.T) {
	client := &fakeAIClient{formatResponse: `{"primary_query": "  ", "alternative_queries": [], "keywords": []}`}
	set := common.FactSet{Facts: []common.FactRecord{
		{Kind: common.FactClaim, Text: "Officials deny involvement", Importance: "high"},
	}}

	queries := NewQueryOptimizer(client).Optimize(context.Background(), set, 2)
	if queries.PrimaryQuery != "Officials deny involvement" {
		t.Errorf("expected fallback query, got %q", queries.PrimaryQuery)
	}
}
