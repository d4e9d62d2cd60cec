package score

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"verifact/pkg/common"
	"verifact/pkg/logger"
)

// dualOverlapThreshold is the token-overlap ratio above which a matching
// fact and a conflicting fact are considered the same underlying fact.
const dualOverlapThreshold = 0.5

// numericTolerancePct is the percentage difference under which two numbers
// count as agreeing rather than conflicting.
const numericTolerancePct = 30.0

var (
	nonLetterRe = regexp.MustCompile(`[^a-z\s]+`)
	numberRe    = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// quantityRange maps an ambiguous quantity word to the numeric range it is
// taken to cover. Table order is significant: the first keyword found in
// either text wins.
type quantityRange struct {
	keyword string
	min     float64
	max     float64
}

var quantityRanges = []quantityRange{
	{"few", 0, 20},
	{"some", 5, 50},
	{"any", 0, 20},
	{"various", 20, 50},
	{"many", 20, 200},
	{"several", 50, 200},
	{"lot", 50, 200},
	{"lots", 50, 200},
	{"huge", 200, math.Inf(1)},
	{"massive", 200, math.Inf(1)},
	{"big", 200, math.Inf(1)},
}

// ReviewAnalyses resolves dual-classified facts in each Analysis so that no
// fact appears as both matching and conflicting. The input slice is modified
// in place and returned.
func ReviewAnalyses(analyses []common.Analysis) []common.Analysis {
	for i := range analyses {
		reviewAnalysis(&analyses[i])
	}
	return analyses
}

func reviewAnalysis(a *common.Analysis) {
	type resolvedPair struct {
		matchText    string
		conflictText string
		isMatch      bool
	}

	pairs := []resolvedPair{}
	for _, m := range a.MatchingFacts {
		for _, c := range a.ConflictingFacts {
			conflictText, dual := dualClassifiedSide(m.OriginalFact, c)
			if !dual {
				continue
			}
			isMatch := resolveFactClassification(m.OriginalFact, conflictText)
			pairs = append(pairs, resolvedPair{
				matchText:    m.OriginalFact,
				conflictText: conflictText,
				isMatch:      isMatch,
			})
		}
	}

	if len(pairs) == 0 {
		return
	}

	for _, p := range pairs {
		if p.isMatch {
			a.ConflictingFacts = removeConflictEntry(a.ConflictingFacts, p.conflictText)
		} else {
			a.MatchingFacts = removeMatchEntry(a.MatchingFacts, p.matchText)
		}
	}

	a.AccuracyScore = AccuracyScore(a.MatchingFacts, a.ConflictingFacts)

	logger.Debug(
		"[Score] resolved dual-classified facts",
		"analysis", a.ID,
		"pairs", len(pairs),
	)
}

// dualClassifiedSide reports whether matchText and the conflict describe the
// same underlying fact, returning the conflict side that tripped the overlap
// test.
func dualClassifiedSide(matchText string, c common.ConflictingFact) (string, bool) {
	matchTokens := normalizeTokens(matchText)
	if tokenOverlap(matchTokens, normalizeTokens(c.Original)) > dualOverlapThreshold {
		return c.Original, true
	}
	if tokenOverlap(matchTokens, normalizeTokens(c.Comparison)) > dualOverlapThreshold {
		return c.Comparison, true
	}
	return "", false
}

// resolveFactClassification decides whether two texts describing the same
// fact actually agree. Numbers are compared first; ambiguous quantity words
// are checked against the other side's number; anything undecidable stays a
// conflict.
func resolveFactClassification(matchText string, conflictText string) bool {
	matchNums := extractNumbers(matchText)
	conflictNums := extractNumbers(conflictText)

	if len(matchNums) > 0 && len(conflictNums) > 0 {
		return numbersAgree(matchNums[0], conflictNums[0])
	}

	matchTokens := tokenSet(normalizeTokens(matchText))
	conflictTokens := tokenSet(normalizeTokens(conflictText))
	for _, qr := range quantityRanges {
		if _, ok := matchTokens[qr.keyword]; ok && len(conflictNums) > 0 {
			return conflictNums[0] >= qr.min && conflictNums[0] <= qr.max
		}
		if _, ok := conflictTokens[qr.keyword]; ok && len(matchNums) > 0 {
			return matchNums[0] >= qr.min && matchNums[0] <= qr.max
		}
	}

	return false
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func numbersAgree(n1, n2 float64) bool {
	larger := math.Max(math.Abs(n1), math.Abs(n2))
	if larger == 0 {
		return true
	}
	percentDiff := math.Abs(n1-n2) / larger * 100
	return percentDiff < numericTolerancePct
}

func extractNumbers(text string) []float64 {
	raw := numberRe.FindAllString(text, -1)
	nums := make([]float64, 0, len(raw))
	for _, r := range raw {
		n, err := strconv.ParseFloat(strings.ReplaceAll(r, ",", ""), 64)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

func normalizeText(text string) string {
	return strings.Join(normalizeTokens(text), " ")
}

func normalizeTokens(text string) []string {
	cleaned := nonLetterRe.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(cleaned)
}

// tokenOverlap computes |A∩B| / max(|A|,|B|) over unique tokens.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)

	shared := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}

	larger := max(len(setA), len(setB))
	return float64(shared) / float64(larger)
}

func containsNormalized(a, b string) bool {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func removeConflictEntry(conflicts []common.ConflictingFact, conflictText string) []common.ConflictingFact {
	for i, c := range conflicts {
		if containsNormalized(conflictText, c.Original) || containsNormalized(conflictText, c.Comparison) {
			return append(conflicts[:i], conflicts[i+1:]...)
		}
	}
	return conflicts
}

func removeMatchEntry(matches []common.MatchingFact, matchText string) []common.MatchingFact {
	for i, m := range matches {
		if containsNormalized(matchText, m.OriginalFact) || containsNormalized(matchText, m.ComparisonFact) {
			return append(matches[:i], matches[i+1:]...)
		}
	}
	return matches
}
