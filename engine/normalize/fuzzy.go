package normalize

import "strings"

// tokenize splits free text into lowercase terms plus adjacent bigrams, so
// multi-word nicknames ("mk4 supra") match alongside single tokens.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(fields)*2)
	for i, f := range fields {
		terms = append(terms, strings.Trim(f, ".,!?;:'\"()"))
		if i+1 < len(fields) {
			terms = append(terms, f+" "+fields[i+1])
		}
	}
	return terms
}

// editDistance is the Levenshtein distance between two strings, two-row DP.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// maxEditDistance is the furthest a term may drift from an alias and still
// count as a fuzzy match. Short terms get a tighter budget to avoid noise.
func maxEditDistance(term string) int {
	if len(term) <= 4 {
		return 1
	}
	return 2
}
