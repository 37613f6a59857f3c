package match

import (
	"math"
	"strings"
)

// Name score rule constants. The rules form a priority ladder: the first one
// that applies wins, they are never summed.
const (
	scoreExact         = 100.0
	scoreCoreWords     = 95.0
	scoreQueryInside   = 90.0
	scoreCandidateIn   = 80.0
	scoreTokenOverlap  = 60.0
	substringLenWeight = 5.0
)

// NameScore rates how well a candidate's canonical name matches the query's
// canonical name, in [0, 100]:
//
//  1. identical strings
//  2. every core query word occurs inside the candidate (plus one point per
//     core word, rewarding specificity)
//  3. query is a substring of the candidate (longer overlap scores higher)
//  4. candidate is a substring of the query
//  5. proportional token-set overlap
//  6. nothing in common
func NameScore(query, candidate string) float64 {
	if query == candidate {
		return scoreExact
	}

	queryTokens := strings.Fields(query)
	candidateTokens := strings.Fields(candidate)

	core := coreWords(queryTokens)
	if len(core) > 0 && allInside(core, candidate) {
		return scoreCoreWords + float64(len(core))
	}

	if strings.Contains(candidate, query) {
		return scoreQueryInside + substringLenWeight*float64(len(query))/float64(len(candidate))
	}
	if strings.Contains(query, candidate) {
		return scoreCandidateIn + substringLenWeight*float64(len(candidate))/float64(len(query))
	}

	querySet := tokenSet(queryTokens)
	candidateSet := tokenSet(candidateTokens)
	common := 0
	for tok := range querySet {
		if _, ok := candidateSet[tok]; ok {
			common++
		}
	}
	if common > 0 {
		larger := len(querySet)
		if len(candidateSet) > larger {
			larger = len(candidateSet)
		}

		return scoreTokenOverlap * float64(common) / float64(larger)
	}

	return 0
}

func allInside(words []string, s string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}

	return true
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}

	return set
}

// Registration similarity constants.
const (
	similarityExact      = 1.0
	similarityDigitsOnly = 0.95
	similaritySubstring  = 0.9
)

// RegistrationSimilarity rates how likely two parsed identifiers denote the
// same register entry, in [0, 1]. Exact normalized equality scores 1.0, one
// being a substring of the other 0.9, identical digit bodies under different
// formatting 0.95. Anything else falls back to the better of two LCS ratios:
// over the full normalized strings and over the digit bodies. Either side
// being nil yields 0.
func RegistrationSimilarity(a, b *Identifier) float64 {
	if a == nil || b == nil {
		return 0
	}

	an, bn := a.String(), b.String()
	if an == bn {
		return similarityExact
	}
	if strings.Contains(an, bn) || strings.Contains(bn, an) {
		return similaritySubstring
	}
	if a.Number == b.Number {
		return similarityDigitsOnly
	}

	full := lcsRatio(an, bn)
	digits := lcsRatio(a.Number, b.Number)

	return math.Max(full, digits)
}

func lcsRatio(a, b string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 0
	}

	return float64(lcsLength(a, b)) / float64(longer)
}

// lcsLength computes the length of the longest common subsequence of a and b
// with the standard O(m*n) dynamic-programming recurrence. This is what keeps
// the ranking stable under formatting noise: "HRB123456" and "123-456" still
// share most of a subsequence. Inputs are normalized identifier strings, a
// dozen bytes at most, so the quadratic table is negligible.
func lcsLength(a, b string) int {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return 0
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	return dp[m][n]
}
