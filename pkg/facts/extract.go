package facts

import (
	"context"
	"fmt"

	"verifact/pkg/ai"
	"verifact/pkg/common"
	"verifact/pkg/logger"
)

// maxContentTokens caps how much article text is handed to the extraction
// model. Articles longer than this are cut at a token boundary.
const maxContentTokens = 6000

// Extractor turns raw article text into a structured FactSet using the
// configured AI client.
type Extractor struct {
	client ai.VerifyAIClient
}

// NewExtractor creates an Extractor backed by the given AI client.
func NewExtractor(client ai.VerifyAIClient) *Extractor {
	return &Extractor{client: client}
}

type extractedWhatFact struct {
	Event        string   `json:"event"`
	RelatedWho   []string `json:"related_who"`
	RelatedWhere []string `json:"related_where"`
	RelatedWhen  []string `json:"related_when"`
	Importance   string   `json:"importance"`
	Confidence   string   `json:"confidence"`
}

type extractedClaim struct {
	Claim        string   `json:"claim"`
	RelatedWho   []string `json:"related_who"`
	RelatedWhere []string `json:"related_where"`
	RelatedWhen  []string `json:"related_when"`
	Importance   string   `json:"importance"`
	Confidence   string   `json:"confidence"`
}

type extractionResult struct {
	WhatFacts []extractedWhatFact `json:"what_facts"`
	Claims    []extractedClaim    `json:"claims"`
}

// Extract runs fact extraction over an article and returns the resulting
// FactSet. Malformed model output degrades to an empty set with ParseError
// set; the returned error is non-nil only when the AI call itself failed.
func (e *Extractor) Extract(
	ctx context.Context,
	title string,
	content string,
) (common.FactSet, error) {
	titleBlock := ""
	if title != "" {
		titleBlock = fmt.Sprintf("Title: %s\n", title)
	}

	prompt := fmt.Sprintf(
		ai.ExtractFactsPrompt,
		titleBlock,
		ai.TruncateToTokens(content, maxContentTokens),
	)

	var result extractionResult
	err := e.client.GenerateCompletionWithFormat(
		ctx,
		"extracted_facts",
		"Events and claims extracted from a news article",
		prompt,
		&result,
	)
	if err != nil {
		logger.Warn("[Facts] extraction failed", "err", err)
		return common.FactSet{ParseError: err.Error()}, err
	}

	return factSetFromResult(result), nil
}

func factSetFromResult(result extractionResult) common.FactSet {
	set := common.FactSet{
		Facts: make([]common.FactRecord, 0, len(result.WhatFacts)+len(result.Claims)),
	}

	for _, wf := range result.WhatFacts {
		if wf.Event == "" {
			continue
		}
		set.Facts = append(set.Facts, common.FactRecord{
			Kind:       common.FactWhat,
			Text:       wf.Event,
			Who:        wf.RelatedWho,
			Where:      wf.RelatedWhere,
			When:       wf.RelatedWhen,
			Importance: labelOrMedium(wf.Importance),
			Confidence: labelOrMedium(wf.Confidence),
		})
	}

	for _, cl := range result.Claims {
		if cl.Claim == "" {
			continue
		}
		set.Facts = append(set.Facts, common.FactRecord{
			Kind:       common.FactClaim,
			Text:       cl.Claim,
			Who:        cl.RelatedWho,
			Where:      cl.RelatedWhere,
			When:       cl.RelatedWhen,
			Importance: labelOrMedium(cl.Importance),
			Confidence: labelOrMedium(cl.Confidence),
		})
	}

	return set
}

func labelOrMedium(label string) string {
	switch label {
	case "high", "medium", "low":
		return label
	default:
		return "medium"
	}
}
