// Package similarity provides the scalar string-similarity metrics used by
// the duplicate-candidate scorer. Each metric normalizes its inputs, is
// symmetric, and returns a value in [0, 1] (higher = more similar).
package similarity

import "github.com/pkmforge/conceptdb/internal/textutil"

// EditSimilarity returns 1 - editDistance(a, b)/max(len(a), len(b)) over
// the normalized inputs. Two empty strings are identical (similarity 1).
func EditSimilarity(a, b string) float64 {
	ra := []rune(textutil.Normalize(a))
	rb := []rune(textutil.Normalize(b))
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance computes the Levenshtein distance with a two-row table.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
