package similarity

import (
	"math"
	"strings"

	"github.com/pkmforge/conceptdb/internal/textutil"
)

// TFIDFCosine returns the cosine similarity of TF-IDF term vectors built
// from the two inputs, treating them as the entire corpus (document
// frequency computed over exactly these two documents). Returns 0 if
// either input is empty or either vector has zero magnitude.
//
// The idf term is smoothed (1 + ln(N/df)) so that terms shared by both
// documents still carry weight; with the raw ln(N/df) formulation a pair
// of identical texts would produce zero vectors and score 0.
func TFIDFCosine(textA, textB string) float64 {
	termsA := strings.Fields(textutil.Normalize(textA))
	termsB := strings.Fields(textutil.Normalize(textB))
	if len(termsA) == 0 || len(termsB) == 0 {
		return 0
	}

	tfA := termFrequencies(termsA)
	tfB := termFrequencies(termsB)

	union := make(map[string]struct{}, len(tfA)+len(tfB))
	for term := range tfA {
		union[term] = struct{}{}
	}
	for term := range tfB {
		union[term] = struct{}{}
	}

	var dot, magA, magB float64
	for term := range union {
		df := 0.0
		if tfA[term] > 0 {
			df++
		}
		if tfB[term] > 0 {
			df++
		}
		idf := 1 + math.Log(2/df)

		wa := tfA[term] * idf
		wb := tfB[term] * idf
		dot += wa * wb
		magA += wa * wa
		magB += wb * wb
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func termFrequencies(terms []string) map[string]float64 {
	tf := make(map[string]float64, len(terms))
	for _, term := range terms {
		tf[term]++
	}
	total := float64(len(terms))
	for term := range tf {
		tf[term] /= total
	}
	return tf
}
