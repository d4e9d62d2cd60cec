package facts

import (
	"context"
	"fmt"
	"strings"

	"verifact/internal/util"
	"verifact/pkg/ai"
	"verifact/pkg/common"
	"verifact/pkg/logger"
)

// SearchQueries is the set of queries generated for one discovery attempt.
type SearchQueries struct {
	PrimaryQuery       string   `json:"primary_query"`
	AlternativeQueries []string `json:"alternative_queries"`
	Keywords           []string `json:"keywords"`
}

// QueryOptimizer turns a FactSet into search queries for source discovery.
// The phrasing is delegated to the AI client; when that fails the optimizer
// falls back to a deterministic query built from the highest-importance facts.
type QueryOptimizer struct {
	client ai.VerifyAIClient
}

// NewQueryOptimizer creates a QueryOptimizer backed by the given AI client.
func NewQueryOptimizer(client ai.VerifyAIClient) *QueryOptimizer {
	return &QueryOptimizer{client: client}
}

// Optimize generates search queries for the given facts. The attempt number
// widens the phrasing on retries; attempt 1 asks for the most specific
// queries. The primary query is never empty for a non-empty FactSet.
func (q *QueryOptimizer) Optimize(
	ctx context.Context,
	factSet common.FactSet,
	attempt int,
) SearchQueries {
	attemptBlock := ""
	if attempt > 1 {
		attemptBlock = fmt.Sprintf(
			"\nThis is retry attempt %d. Previous queries did not find enough relevant sources. Generate BROADER or alternatively phrased queries than before.\n",
			attempt,
		)
	}

	prompt := fmt.Sprintf(
		ai.OptimizeQueryPrompt,
		attemptBlock,
		util.ConvertStructToJson(factSet),
	)

	var queries SearchQueries
	err := q.client.GenerateCompletionWithFormat(
		ctx,
		"search_queries",
		"Search queries for finding corroborating news coverage",
		prompt,
		&queries,
	)
	if err != nil {
		// Not every backend supports schema-constrained output; retry as
		// free text and repair the JSON out of the reply.
		logger.Warn("[Facts] structured query optimization failed, retrying as free text", "err", err)
		queries, err = q.optimizeFreeText(ctx, prompt)
	}
	if err != nil || strings.TrimSpace(queries.PrimaryQuery) == "" {
		if err != nil {
			logger.Warn("[Facts] query optimization failed, using fallback", "err", err)
		}
		queries.PrimaryQuery = FallbackQuery(factSet)
	}

	return queries
}

func (q *QueryOptimizer) optimizeFreeText(ctx context.Context, prompt string) (SearchQueries, error) {
	raw, err := q.client.GenerateCompletion(ctx, prompt,
		ai.WithSystemPrompts("Return only a valid JSON object."),
		ai.WithTemperature(0.1),
	)
	if err != nil {
		return SearchQueries{}, err
	}

	var queries SearchQueries
	if err := ai.UnmarshalFlexible(raw, &queries); err != nil {
		return SearchQueries{}, err
	}
	return queries, nil
}

// FallbackQuery builds a deterministic search query from the first
// high-importance event and the first high-importance claim. When neither
// exists the generic query "news" is returned.
func FallbackQuery(factSet common.FactSet) string {
	parts := []string{}

	for _, wf := range factSet.WhatFacts() {
		if wf.Importance == "high" {
			parts = append(parts, util.FirstSentence(wf.Text))
			break
		}
	}
	for _, cl := range factSet.Claims() {
		if cl.Importance == "high" {
			parts = append(parts, util.FirstSentence(cl.Text))
			break
		}
	}

	query := strings.TrimSpace(strings.Join(parts, " "))
	if query == "" {
		return "news"
	}
	return query
}

// OfficialSourcesQuery narrows a query to government and academic domains.
// Used on later attempts when no official source has been found yet.
func OfficialSourcesQuery(query string) string {
	return query + " site:.gov OR site:.edu OR site:.org"
}
