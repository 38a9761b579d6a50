package similarity

import "github.com/pkmforge/conceptdb/internal/textutil"

// Standard Jaro-Winkler parameters; no custom tuning.
const (
	winklerPrefixScale   = 0.1
	winklerBoostFloor    = 0.7
	winklerMaxPrefixSize = 4
)

// JaroWinkler returns the Jaro-Winkler similarity of the normalized
// inputs, rewarding shared prefixes over the base Jaro score.
func JaroWinkler(a, b string) float64 {
	ra := []rune(textutil.Normalize(a))
	rb := []rune(textutil.Normalize(b))

	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	jaro := jaroSimilarity(ra, rb)
	if jaro < winklerBoostFloor {
		return jaro
	}

	prefix := 0
	for prefix < len(ra) && prefix < len(rb) && prefix < winklerMaxPrefixSize {
		if ra[prefix] != rb[prefix] {
			break
		}
		prefix++
	}
	return jaro + float64(prefix)*winklerPrefixScale*(1-jaro)
}

func jaroSimilarity(a, b []rune) float64 {
	window := max2(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, len(a))
	matchedB := make([]bool, len(b))
	matches := 0

	for i := range a {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > len(b) {
			hi = len(b)
		}
		for j := lo; j < hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	// Transpositions: matched characters out of order, counted pairwise.
	transpositions := 0
	j := 0
	for i := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}
