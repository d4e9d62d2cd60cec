package ai

// ExtractFactsPrompt instructs the model to pull events and claims out of an
// article, each with its who/where/when context. Formatted with the article
// title block and the article text.
const ExtractFactsPrompt = `
# Task Context
You are a fact-checking assistant. Analyze the following article and extract facts using a hierarchical structure where events and claims are primary, and people/places/times are related entities.

# Background Data
%s
Article:
%s

# Detailed Task Description & Rules
Extract facts in TWO PRIMARY CATEGORIES:

1. WHAT FACTS (events/actions/occurrences):
   - The main event or action described (2-3 sentences max)
   - related_who: entities involved (people, organizations)
   - related_where: locations where it occurred
   - related_when: timeframe or date when it occurred

2. CLAIMS (assertions/statements):
   - The main claim, statement, or assertion (2-3 sentences max)
   - related_who: who made the claim or who it is about
   - related_where: where it applies or was made
   - related_when: when it was made or applies

Importance guidelines:
- "high": core events/claims that define the article's main topic
- "medium": supporting details that add context
- "low": minor details or tangential information

Confidence levels: "high" (clearly stated), "medium" (implied), "low" (uncertain).

Include 3-7 WHAT facts and 2-5 CLAIMS; prioritize quality over quantity.

# Output Formatting
Return only a valid JSON object:
{
  "what_facts": [
    {
      "event": "Clear description of the main event or action",
      "related_who": ["Person or organization involved"],
      "related_where": ["Location"],
      "related_when": ["Timeframe or date"],
      "importance": "high",
      "confidence": "high"
    }
  ],
  "claims": [
    {
      "claim": "Specific claim or assertion made",
      "related_who": ["Who made it or who it is about"],
      "related_where": ["Where it applies"],
      "related_when": ["When it was made or applies"],
      "importance": "high",
      "confidence": "high"
    }
  ]
}
`

// CompareFactsPrompt instructs the model to classify fact pairs from two
// sources as matching, conflicting, or unique. Formatted with the original
// and comparison fact sets as JSON.
const CompareFactsPrompt = `
# Task Context
You are a fact-checking assistant. Compare facts from two sources using context-aware matching: facts match only when BOTH the event/claim AND its context (who/where/when) align. Do not match based on shared entities alone.

# Background Data
Original source facts:
%s

Comparison source facts:
%s

# Detailed Task Description & Rules
Matching rules:
1. WHAT facts match if: same event/action + similar who/where/when context.
2. CLAIMS match if: same assertion + similar context.
3. Partial matches (same event, different details) are CONFLICTS, not matches.
4. Shared entities without the same event context are NOT matches.

Number comparison rules:
- When comparing numerical values, calculate the percentage difference.
- Difference < 30%% of the larger number = MATCH, not conflict.
- Example: 45 vs 60 -> diff is 15/60 = 25%% -> MATCH with "moderate" strength.
- Only mark as conflict if the difference is >= 30%%.

Ambiguous expression rules (apply when comparing expressions with numbers):
- 0-20: "few", "some", "any"
- 20-50: "some", "various", "many"
- 50-200: "several", "many", "lot"
- 200+: "huge", "massive", "big"
Example: "many people" (20-200) matches "45 people" -> MATCH.

No dual classification:
- A fact must NEVER appear in both the matching AND conflicting lists.
- If unsure between match and conflict, classify as matching with "moderate" strength.

Conflict types:
- "contradiction": directly opposite information
- "partial_mismatch": same event but different details (dates, numbers, participants)
- "emphasis_difference": same event but different focus or interpretation
- "context_mismatch": same entity but different events

Relevance score (0.0-1.0):
- 0.8-1.0: highly relevant, covers the same core events
- 0.5-0.7: moderately relevant, some overlap
- 0.0-0.4: low relevance, different topics despite shared entities

# Output Formatting
Return only a valid JSON object:
{
  "matching": [
    {
      "original_fact": "Full fact from original with context",
      "comparison_fact": "Matching fact from comparison with context",
      "match_strength": "strong or moderate",
      "category": "what or claim",
      "confidence": "high, medium or low"
    }
  ],
  "conflicting": [
    {
      "original": "Fact from original",
      "comparison": "Conflicting fact from comparison",
      "conflict_type": "contradiction, partial_mismatch, emphasis_difference or context_mismatch",
      "conflict_severity": "high, medium or low",
      "category": "what or claim"
    }
  ],
  "unique_to_original": [
    {"fact": "Fact only in original", "category": "what or claim", "significance": "high, medium or low"}
  ],
  "unique_to_comparison": [
    {"fact": "Fact only in comparison", "category": "what or claim", "significance": "high, medium or low"}
  ],
  "relevance_score": 0.0,
  "analysis_notes": "Brief analysis of whether the sources cover the SAME events and claims"
}
`

// OptimizeQueryPrompt instructs the model to turn extracted facts into
// complete search queries. Formatted with the attempt context block and the
// fact set as JSON.
const OptimizeQueryPrompt = `
# Task Context
You are a search query optimization assistant. Given hierarchical facts from an article, create complete, effective search queries that will find news articles about the SAME events and claims.
%s
# Background Data
Facts from article:
%s

# Detailed Task Description & Rules
1. Use complete sentences with full context.
2. Include the main event + key entities + location/time if relevant.
3. Avoid incomplete fragments; each query must be self-contained and clear.
4. Focus on the high-importance WHAT facts and CLAIMS from the input.

Bad queries (do NOT produce):
- "launches new" (incomplete)
- "Elon Musk" (just a name)
- "San Francisco 2024" (no context)

Good queries:
- "Elon Musk launches new artificial intelligence company in San Francisco"
- "SpaceX CEO announces AI startup in California January 2024"

# Output Formatting
Return only a valid JSON object:
{
  "primary_query": "Main complete sentence describing the core event with entities",
  "alternative_queries": [
    "Alternative phrasing of the event",
    "Query focusing on a different aspect of the same event"
  ],
  "keywords": ["keyword1", "keyword2", "keyword3"]
}
`
