package diagnostics

import "sort"

// suggestion scoring mirrors the teacher's errors.FindBestSuggestions /
// levenshteinDistance (pkg/errors/suggestions.go, enhanced_errors.go),
// trimmed to the one use this domain has: did the program call an unknown
// function name that's at most three edits from a registered one.
const (
	maxSuggestions     = 3
	maxEditDistance    = 3
	minSimilarityScore = 0.5
)

type suggestion struct {
	name     string
	distance int
	score    float64
}

// SuggestFunctionName returns the closest registered function names to an
// unresolved call, best match first, or nil if nothing is close enough.
func SuggestFunctionName(name string, registered []string) []string {
	var candidates []suggestion
	for _, cand := range registered {
		if cand == name {
			continue
		}
		dist := levenshteinDistance(name, cand)
		score := similarityScore(name, cand, dist)
		if dist <= maxEditDistance && score >= minSimilarityScore {
			candidates = append(candidates, suggestion{name: cand, distance: dist, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

func similarityScore(s1, s2 string, distance int) float64 {
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	d := make([][]int, len(s1)+1)
	for i := range d {
		d[i] = make([]int, len(s2)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			d[i][j] = min3(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
		}
	}
	return d[len(s1)][len(s2)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
